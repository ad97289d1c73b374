package service

import (
	"context"
	"testing"

	"autoservice/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteWorkOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := mustClient(t, s, "+79990000001")
	employee := mustEmployee(t, s, 10)
	order := createSampleOrder(t, s, client.ID, uintPtr(employee.ID))

	result, err := s.CompleteWorkOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, result.OrderNumber)
	assert.Equal(t, 2000.0, result.WorksTotal)
	assert.Equal(t, 100.0, result.MarkupTotal)
	assert.Equal(t, 200.0, result.SalaryAmount)
	assert.Len(t, result.CashFlowIDs, 2)
	require.NotNil(t, result.SalaryEntryID)

	loaded, err := s.GetWorkOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, loaded.Status)
	require.NotNil(t, loaded.CompletedAt)
	assert.True(t, loaded.CompletedAt.Equal(testNow))

	entries, err := s.ListCashFlow(ctx, CashFlowFilter{OrderID: uintPtr(order.ID)})
	require.NoError(t, err)
	byCategory := map[string]float64{}
	for _, e := range entries {
		assert.Equal(t, models.TransactionIncome, e.TransactionType)
		byCategory[e.Category] = e.Amount
	}
	assert.Equal(t, map[string]float64{
		models.CategoryOrderWork:   2000,
		models.CategoryOrderMarkup: 100,
	}, byCategory)

	// 提成只进员工台账，不产生支出流水
	expenses, err := s.ListCashFlow(ctx, CashFlowFilter{TransactionType: models.TransactionExpense})
	require.NoError(t, err)
	assert.Empty(t, expenses)

	salary, err := s.ListSalaryEntries(ctx, employee.ID)
	require.NoError(t, err)
	require.Len(t, salary, 1)
	assert.Equal(t, 200.0, salary[0].Amount)
	assert.Equal(t, 10.0, salary[0].CommissionRate)
	assert.Equal(t, 2000.0, salary[0].WorksTotal)
	require.NotNil(t, salary[0].OrderID)
	assert.Equal(t, order.ID, *salary[0].OrderID)
}

func TestCompleteWorkOrder_Twice(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := mustClient(t, s, "+79990000001")
	employee := mustEmployee(t, s, 10)
	order := createSampleOrder(t, s, client.ID, uintPtr(employee.ID))

	_, err := s.CompleteWorkOrder(ctx, order.ID)
	require.NoError(t, err)

	_, err = s.CompleteWorkOrder(ctx, order.ID)
	assert.ErrorIs(t, err, ErrOrderCompleted)
	assert.ErrorIs(t, err, ErrConflict)

	entries, err := s.ListCashFlow(ctx, CashFlowFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	salary, err := s.ListSalaryEntries(ctx, employee.ID)
	require.NoError(t, err)
	assert.Len(t, salary, 1)
}

func TestCompleteWorkOrder_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CompleteWorkOrder(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompleteWorkOrder_ZeroTotals(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := mustClient(t, s, "+79990000001")
	employee := mustEmployee(t, s, 10)

	order, err := s.CreateWorkOrder(ctx, WorkOrderInput{
		ClientID:    client.ID,
		EmployeeID:  uintPtr(employee.ID),
		Description: "Гарантийный осмотр",
		Expenses:    []ExpenseLineInput{{Name: "Жидкость", CostPerUnit: 0, MarkupPercent: 30}},
	})
	require.NoError(t, err)

	result, err := s.CompleteWorkOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Zero(t, result.WorksTotal)
	assert.Zero(t, result.MarkupTotal)
	assert.Empty(t, result.CashFlowIDs)
	assert.Nil(t, result.SalaryEntryID)

	entries, err := s.ListCashFlow(ctx, CashFlowFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)

	loaded, err := s.GetWorkOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, loaded.Status)
}

func TestCompleteWorkOrder_NoCommission(t *testing.T) {
	cases := []struct {
		name   string
		rate   float64
		active bool
	}{
		{"zero rate", 0, true},
		{"inactive employee", 10, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestStore(t)
			ctx := context.Background()
			client := mustClient(t, s, "+79990000001")
			employee, err := s.CreateEmployee(ctx, EmployeeInput{
				FullName:       "Олег",
				CommissionRate: tc.rate,
				IsActive:       boolPtr(tc.active),
			})
			require.NoError(t, err)
			order := createSampleOrder(t, s, client.ID, uintPtr(employee.ID))

			result, err := s.CompleteWorkOrder(ctx, order.ID)
			require.NoError(t, err)
			assert.Nil(t, result.SalaryEntryID)
			assert.Zero(t, result.SalaryAmount)
			assert.Len(t, result.CashFlowIDs, 2)

			salary, err := s.ListSalaryEntries(ctx, employee.ID)
			require.NoError(t, err)
			assert.Empty(t, salary)
		})
	}
}

func TestCompleteWorkOrder_UsesPersistedItems(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := mustClient(t, s, "+79990000001")
	order := createSampleOrder(t, s, client.ID, nil)

	// 直接改库中的单价，完成时应按库中明细重新计算
	require.NoError(t, s.DB().Model(&models.OrderWork{}).
		Where("order_id = ?", order.ID).
		Update("price_per_unit", 1500).Error)

	result, err := s.CompleteWorkOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 3000.0, result.WorksTotal)
	assert.Equal(t, 100.0, result.MarkupTotal)
}

func TestCompleteWorkOrder_RollsBackOnPostingFailure(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := mustClient(t, s, "+79990000007")
	employee := mustEmployee(t, s, 10)
	order := createSampleOrder(t, s, client.ID, uintPtr(employee.ID))

	// 提成入账失败时，状态与收入流水都必须回滚
	require.NoError(t, s.DB().Exec("DROP TABLE salary_entries").Error)

	_, err := s.CompleteWorkOrder(ctx, order.ID)
	require.Error(t, err)

	var loaded models.WorkOrder
	require.NoError(t, s.DB().First(&loaded, order.ID).Error)
	assert.Equal(t, models.OrderStatusNew, loaded.Status)
	assert.Nil(t, loaded.CompletedAt)

	var cashRows int64
	require.NoError(t, s.DB().Model(&models.CashFlowEntry{}).Count(&cashRows).Error)
	assert.Zero(t, cashRows)
}
