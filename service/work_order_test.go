package service

import (
	"context"
	"testing"

	"autoservice/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createSampleOrder 工时 2×1000，配件 500 加价 20%
func createSampleOrder(t *testing.T, s *Store, clientID uint, employeeID *uint) *models.WorkOrder {
	t.Helper()
	order, err := s.CreateWorkOrder(context.Background(), WorkOrderInput{
		ClientID:    clientID,
		EmployeeID:  employeeID,
		Description: "Замена тормозных колодок",
		Works:       []WorkLineInput{{Name: "Работа", Quantity: 2, PricePerUnit: 1000}},
		Expenses:    []ExpenseLineInput{{Name: "Колодки", Type: models.ExpenseTypePart, Quantity: 1, CostPerUnit: 500, MarkupPercent: 20}},
	})
	require.NoError(t, err)
	return order
}

func TestCreateWorkOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := mustClient(t, s, "+79990000001")

	order := createSampleOrder(t, s, client.ID, nil)
	assert.Equal(t, models.OrderStatusNew, order.Status)
	assert.Equal(t, "240315-001", order.OrderNumber)
	assert.Equal(t, 2600.0, order.TotalAmount)
	assert.Nil(t, order.CompletedAt)

	loaded, err := s.GetWorkOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Works, 1)
	require.Len(t, loaded.Expenses, 1)
	assert.Equal(t, 2000.0, loaded.Works[0].TotalPrice)
	assert.Equal(t, 500.0, loaded.Expenses[0].TotalCost)
	require.NotNil(t, loaded.Client)
	assert.Equal(t, client.Phone, loaded.Client.Phone)
}

func TestCreateWorkOrder_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := mustClient(t, s, "+79990000001")

	_, err := s.CreateWorkOrder(ctx, WorkOrderInput{ClientID: client.ID})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.CreateWorkOrder(ctx, WorkOrderInput{ClientID: 999, Description: "ТО"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.CreateWorkOrder(ctx, WorkOrderInput{ClientID: client.ID, EmployeeID: uintPtr(999), Description: "ТО"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.CreateWorkOrder(ctx, WorkOrderInput{
		ClientID:    client.ID,
		Description: "ТО",
		Works:       []WorkLineInput{{Name: "Работа", Quantity: -1, PricePerUnit: 100}},
	})
	assert.ErrorIs(t, err, ErrValidation)

	orders, err := s.ListWorkOrders(ctx, WorkOrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateWorkOrder_DuplicateNumber(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := mustClient(t, s, "+79990000001")

	_, err := s.CreateWorkOrder(ctx, WorkOrderInput{ClientID: client.ID, Description: "ТО", OrderNumber: "240301-005"})
	require.NoError(t, err)

	_, err = s.CreateWorkOrder(ctx, WorkOrderInput{ClientID: client.ID, Description: "ТО", OrderNumber: "240301-005"})
	assert.ErrorIs(t, err, ErrDuplicateOrderNumber)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestListWorkOrders_Filter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ivan := mustClient(t, s, "+79990000001")
	anna, err := s.CreateClient(ctx, ClientInput{FullName: "Анна Смирнова", Phone: "+79990000002", CarModel: "Kia Rio"})
	require.NoError(t, err)

	first := createSampleOrder(t, s, ivan.ID, nil)
	second := createSampleOrder(t, s, anna.ID, nil)
	_, err = s.UpdateWorkOrderStatus(ctx, second.ID, models.OrderStatusInProgress)
	require.NoError(t, err)

	all, err := s.ListWorkOrders(ctx, WorkOrderFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	byName, err := s.ListWorkOrders(ctx, WorkOrderFilter{Search: "Анна"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, second.ID, byName[0].ID)

	byNumber, err := s.ListWorkOrders(ctx, WorkOrderFilter{Search: first.OrderNumber})
	require.NoError(t, err)
	require.Len(t, byNumber, 1)
	assert.Equal(t, first.ID, byNumber[0].ID)

	byStatus, err := s.ListWorkOrders(ctx, WorkOrderFilter{Status: models.OrderStatusNew})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, first.ID, byStatus[0].ID)

	byClient, err := s.ListWorkOrders(ctx, WorkOrderFilter{ClientID: uintPtr(anna.ID)})
	require.NoError(t, err)
	require.Len(t, byClient, 1)
	assert.Equal(t, second.ID, byClient[0].ID)

	none, err := s.ListWorkOrders(ctx, WorkOrderFilter{ClientID: uintPtr(anna.ID), Status: models.OrderStatusNew})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAddAndDeleteOrderItems_RecalculateTotal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := mustClient(t, s, "+79990000001")
	order := createSampleOrder(t, s, client.ID, nil)

	work, err := s.AddOrderWork(ctx, order.ID, WorkLineInput{Name: "Диагностика", PricePerUnit: 500})
	require.NoError(t, err)
	assert.Equal(t, 1.0, work.Quantity)

	loaded, err := s.GetWorkOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 3100.0, loaded.TotalAmount)

	expense, err := s.AddOrderExpense(ctx, order.ID, ExpenseLineInput{Name: "Масло", Quantity: 4, CostPerUnit: 100, MarkupPercent: 50})
	require.NoError(t, err)
	assert.Equal(t, models.ExpenseTypeMaterial, expense.ExpenseType)

	loaded, err = s.GetWorkOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 3700.0, loaded.TotalAmount)

	require.NoError(t, s.DeleteOrderWork(ctx, order.ID, work.ID))
	require.NoError(t, s.DeleteOrderExpense(ctx, order.ID, expense.ID))
	loaded, err = s.GetWorkOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 2600.0, loaded.TotalAmount)

	assert.ErrorIs(t, s.DeleteOrderWork(ctx, order.ID, work.ID), ErrNotFound)
}

func TestUpdateWorkOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := mustClient(t, s, "+79990000001")
	employee := mustEmployee(t, s, 10)
	order := createSampleOrder(t, s, client.ID, nil)

	updated, err := s.UpdateWorkOrder(ctx, order.ID, WorkOrderPatch{
		Description: strPtr("Замена колодок и дисков"),
		EmployeeID:  uintPtr(employee.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, "Замена колодок и дисков", updated.Description)
	require.NotNil(t, updated.EmployeeID)
	assert.Equal(t, employee.ID, *updated.EmployeeID)

	updated, err = s.UpdateWorkOrder(ctx, order.ID, WorkOrderPatch{EmployeeID: uintPtr(0)})
	require.NoError(t, err)
	assert.Nil(t, updated.EmployeeID)

	_, err = s.UpdateWorkOrder(ctx, order.ID, WorkOrderPatch{EmployeeID: uintPtr(999)})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.UpdateWorkOrder(ctx, order.ID, WorkOrderPatch{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateWorkOrderStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := mustClient(t, s, "+79990000001")
	order := createSampleOrder(t, s, client.ID, nil)

	updated, err := s.UpdateWorkOrderStatus(ctx, order.ID, models.OrderStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusInProgress, updated.Status)
	assert.Nil(t, updated.CompletedAt)

	_, err = s.UpdateWorkOrderStatus(ctx, order.ID, "cancelled")
	assert.ErrorIs(t, err, ErrValidation)

	updated, err = s.UpdateWorkOrderStatus(ctx, order.ID, models.OrderStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)

	// 完成后为终态
	_, err = s.UpdateWorkOrderStatus(ctx, order.ID, models.OrderStatusNew)
	assert.ErrorIs(t, err, ErrOrderCompleted)
	_, err = s.UpdateWorkOrderStatus(ctx, order.ID, models.OrderStatusCompleted)
	assert.ErrorIs(t, err, ErrOrderCompleted)

	entries, err := s.ListCashFlow(ctx, CashFlowFilter{OrderID: uintPtr(order.ID)})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestCompletedOrderIsReadOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := mustClient(t, s, "+79990000001")
	order := createSampleOrder(t, s, client.ID, nil)
	_, err := s.CompleteWorkOrder(ctx, order.ID)
	require.NoError(t, err)

	_, err = s.AddOrderWork(ctx, order.ID, WorkLineInput{Name: "Мойка", PricePerUnit: 300})
	assert.ErrorIs(t, err, ErrOrderCompleted)
	_, err = s.AddOrderExpense(ctx, order.ID, ExpenseLineInput{Name: "Фильтр", CostPerUnit: 300})
	assert.ErrorIs(t, err, ErrOrderCompleted)
	_, err = s.UpdateWorkOrder(ctx, order.ID, WorkOrderPatch{Description: strPtr("x")})
	assert.ErrorIs(t, err, ErrOrderCompleted)

	loaded, err := s.GetWorkOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 2600.0, loaded.TotalAmount)
	assert.Len(t, loaded.Works, 1)
}

func TestDeleteWorkOrder_KeepsLedger(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	client := mustClient(t, s, "+79990000001")
	employee := mustEmployee(t, s, 10)
	order := createSampleOrder(t, s, client.ID, uintPtr(employee.ID))
	_, err := s.CompleteWorkOrder(ctx, order.ID)
	require.NoError(t, err)

	require.NoError(t, s.DeleteWorkOrder(ctx, order.ID))
	assert.ErrorIs(t, s.DeleteWorkOrder(ctx, order.ID), ErrNotFound)

	_, err = s.GetWorkOrder(ctx, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var works int64
	require.NoError(t, s.DB().Model(&models.OrderWork{}).Where("order_id = ?", order.ID).Count(&works).Error)
	assert.Zero(t, works)

	entries, err := s.ListCashFlow(ctx, CashFlowFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Nil(t, e.OrderID)
	}

	salary, err := s.ListSalaryEntries(ctx, employee.ID)
	require.NoError(t, err)
	require.Len(t, salary, 1)
	assert.Nil(t, salary[0].OrderID)
}
