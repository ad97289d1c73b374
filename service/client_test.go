package service

import (
	"context"
	"testing"

	"autoservice/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateClient(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	year := 2019

	client, err := s.CreateClient(ctx, ClientInput{
		FullName:  "  Иван Петров ",
		Phone:     "+79990000001",
		CarModel:  "Lada Vesta",
		CarNumber: "А123ВС77",
		CarYear:   &year,
		VIN:       "XTA000000000001",
	})
	require.NoError(t, err)
	assert.NotZero(t, client.ID)
	assert.Equal(t, "Иван Петров", client.FullName)

	loaded, err := s.GetClient(ctx, client.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.CarYear)
	assert.Equal(t, 2019, *loaded.CarYear)
	assert.Equal(t, "XTA000000000001", loaded.VIN)
}

func TestCreateClient_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, in := range []ClientInput{
		{Phone: "+7999", CarModel: "Kia"},
		{FullName: "Анна", CarModel: "Kia"},
		{FullName: "Анна", Phone: "+7999"},
	} {
		_, err := s.CreateClient(ctx, in)
		assert.ErrorIs(t, err, ErrValidation)
	}
}

func TestCreateClient_DuplicatePhone(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustClient(t, s, "+79990000001")

	_, err := s.CreateClient(ctx, ClientInput{FullName: "Другой", Phone: "+79990000001", CarModel: "BMW"})
	assert.ErrorIs(t, err, ErrDuplicatePhone)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestListClients_Search(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustClient(t, s, "+79990000001")
	_, err := s.CreateClient(ctx, ClientInput{FullName: "Анна Смирнова", Phone: "+79990000002", CarModel: "Kia Rio", CarNumber: "Е777КХ99"})
	require.NoError(t, err)

	all, err := s.ListClients(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Анна Смирнова", all[0].FullName)

	for _, q := range []string{"Смирнова", "0002", "Rio", "Е777"} {
		found, err := s.ListClients(ctx, q)
		require.NoError(t, err)
		require.Len(t, found, 1, q)
		assert.Equal(t, "+79990000002", found[0].Phone)
	}

	none, err := s.ListClients(ctx, "Toyota")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateClient(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := mustClient(t, s, "+79990000001")
	other := mustClient(t, s, "+79990000002")

	updated, err := s.UpdateClient(ctx, client.ID, ClientPatch{
		CarModel: strPtr("Lada Granta"),
		Notes:    strPtr("постоянный клиент"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Lada Granta", updated.CarModel)
	assert.Equal(t, "постоянный клиент", updated.Notes)
	assert.Equal(t, client.Phone, updated.Phone)

	_, err = s.UpdateClient(ctx, client.ID, ClientPatch{Phone: strPtr(other.Phone)})
	assert.ErrorIs(t, err, ErrDuplicatePhone)

	_, err = s.UpdateClient(ctx, client.ID, ClientPatch{FullName: strPtr(" ")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.UpdateClient(ctx, client.ID, ClientPatch{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.UpdateClient(ctx, 999, ClientPatch{Notes: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteClient_Cascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := mustClient(t, s, "+79990000001")
	order := createSampleOrder(t, s, client.ID, nil)
	_, err := s.CompleteWorkOrder(ctx, order.ID)
	require.NoError(t, err)

	require.NoError(t, s.DeleteClient(ctx, client.ID))

	_, err = s.GetClient(ctx, client.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetWorkOrder(ctx, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var expenses int64
	require.NoError(t, s.DB().Model(&models.OrderExpense{}).Count(&expenses).Error)
	assert.Zero(t, expenses)

	// 流水保留，工单关联置空
	entries, err := s.ListCashFlow(ctx, CashFlowFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Nil(t, entries[0].OrderID)

	assert.ErrorIs(t, s.DeleteClient(ctx, client.ID), ErrNotFound)
}

func TestUpdateClient_StorageFailure(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := mustClient(t, s, "+79990000009")

	require.NoError(t, s.DB().Exec("DROP TABLE order_works").Error)
	require.NoError(t, s.DB().Exec("DROP TABLE order_expenses").Error)
	require.NoError(t, s.DB().Exec("DROP TABLE cash_flow").Error)
	require.NoError(t, s.DB().Exec("DROP TABLE salary_entries").Error)
	require.NoError(t, s.DB().Exec("DROP TABLE work_orders").Error)
	require.NoError(t, s.DB().Exec("DROP TABLE clients").Error)

	_, err := s.UpdateClient(ctx, client.ID, ClientPatch{Notes: strPtr("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "查询客户失败")
	assert.NotErrorIs(t, err, ErrNotFound)
}
