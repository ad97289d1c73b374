package service

import (
	"context"
	"fmt"
	"strings"

	"autoservice/models"

	"gorm.io/gorm"
)

// 自动生成工单号时最多尝试的序号个数
const maxOrderNumberAttempts = 50

// WorkLineInput 工时项目参数
type WorkLineInput struct {
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	PricePerUnit float64 `json:"price"`
}

// ExpenseLineInput 配件/材料参数
type ExpenseLineInput struct {
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Quantity      float64 `json:"quantity"`
	CostPerUnit   float64 `json:"cost"`
	MarkupPercent float64 `json:"markup_percent"`
	Notes         string  `json:"notes"`
}

// WorkOrderInput 新建工单参数，OrderNumber 为空时自动生成
type WorkOrderInput struct {
	ClientID    uint
	EmployeeID  *uint
	Description string
	OrderNumber string
	Works       []WorkLineInput
	Expenses    []ExpenseLineInput
}

// WorkOrderPatch 工单可修改字段
// EmployeeID 指向 0 表示取消指派
type WorkOrderPatch struct {
	Description *string `json:"description"`
	EmployeeID  *uint   `json:"employee_id"`
}

// WorkOrderFilter 工单列表筛选
type WorkOrderFilter struct {
	Search   string
	Status   string
	ClientID *uint
}

func (in WorkLineInput) toModel() (models.OrderWork, error) {
	if strings.TrimSpace(in.Name) == "" {
		return models.OrderWork{}, validationError("工时项目名称不能为空")
	}
	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 0 || in.PricePerUnit < 0 {
		return models.OrderWork{}, validationError("工时项目 %s 的数量和单价不能为负数", in.Name)
	}
	return models.OrderWork{
		WorkName:     strings.TrimSpace(in.Name),
		Quantity:     qty,
		PricePerUnit: in.PricePerUnit,
		TotalPrice:   lineTotal(qty, in.PricePerUnit).Round(2).InexactFloat64(),
	}, nil
}

func (in ExpenseLineInput) toModel() (models.OrderExpense, error) {
	if strings.TrimSpace(in.Name) == "" {
		return models.OrderExpense{}, validationError("配件名称不能为空")
	}
	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 0 || in.MarkupPercent < 0 {
		return models.OrderExpense{}, validationError("配件 %s 的数量和加价率不能为负数", in.Name)
	}
	typ := in.Type
	switch typ {
	case "":
		typ = models.ExpenseTypeMaterial
	case models.ExpenseTypeMaterial, models.ExpenseTypePart, models.ExpenseTypeService:
	default:
		return models.OrderExpense{}, validationError("未知的配件类型: %s", typ)
	}
	return models.OrderExpense{
		ExpenseName:   strings.TrimSpace(in.Name),
		ExpenseType:   typ,
		Quantity:      qty,
		CostPerUnit:   in.CostPerUnit,
		MarkupPercent: in.MarkupPercent,
		TotalCost:     lineTotal(qty, in.CostPerUnit).Round(2).InexactFloat64(),
		Notes:         in.Notes,
	}, nil
}

// CreateWorkOrder 新建工单及其明细，状态为 new，总额按明细计算
func (s *Store) CreateWorkOrder(ctx context.Context, in WorkOrderInput) (*models.WorkOrder, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, validationError("工单描述不能为空")
	}

	works := make([]models.OrderWork, 0, len(in.Works))
	for _, w := range in.Works {
		m, err := w.toModel()
		if err != nil {
			return nil, err
		}
		works = append(works, m)
	}
	expenses := make([]models.OrderExpense, 0, len(in.Expenses))
	for _, e := range in.Expenses {
		m, err := e.toModel()
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, m)
	}
	totals := CalculateOrderTotals(works, expenses)

	order := models.WorkOrder{
		ClientID:    in.ClientID,
		Description: strings.TrimSpace(in.Description),
		Status:      models.OrderStatusNew,
		TotalAmount: totals.TotalAmount,
		Works:       works,
		Expenses:    expenses,
	}
	if in.EmployeeID != nil && *in.EmployeeID != 0 {
		order.EmployeeID = in.EmployeeID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &models.Client{}, in.ClientID, "客户"); err != nil {
			return err
		}
		if order.EmployeeID != nil {
			if err := ensureExists(tx, &models.Employee{}, *order.EmployeeID, "员工"); err != nil {
				return err
			}
		}

		number := strings.TrimSpace(in.OrderNumber)
		if number == "" {
			generated, err := s.generateOrderNumber(tx)
			if err != nil {
				return err
			}
			number = generated
		}
		order.OrderNumber = number

		if err := tx.Create(&order).Error; err != nil {
			if isDuplicate(err) {
				return ErrDuplicateOrderNumber
			}
			return fmt.Errorf("创建工单失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// generateOrderNumber 当日序号 = 当日已有工单数 + 1
// 序号已被占用（例如当日有工单被删除）时顺延，直到找到空闲序号
func (s *Store) generateOrderNumber(tx *gorm.DB) (string, error) {
	prefix := OrderNumberPrefix(s.now())
	count, err := countOrdersWithPrefix(tx, prefix)
	if err != nil {
		return "", fmt.Errorf("统计当日工单失败: %w", err)
	}

	for seq := int(count) + 1; seq <= int(count)+maxOrderNumberAttempts; seq++ {
		candidate := FormatOrderNumber(prefix, seq)
		var taken int64
		if err := tx.Model(&models.WorkOrder{}).Where("order_number = ?", candidate).Count(&taken).Error; err != nil {
			return "", fmt.Errorf("检查工单号失败: %w", err)
		}
		if taken == 0 {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: 无法为 %s 分配工单号", ErrConflict, prefix)
}

// GetWorkOrder 查询工单，包含客户、员工与明细
func (s *Store) GetWorkOrder(ctx context.Context, id uint) (*models.WorkOrder, error) {
	var order models.WorkOrder
	err := s.db.WithContext(ctx).
		Preload("Client").
		Preload("Employee").
		Preload("Works", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Expenses", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&order, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, notFound("工单", id)
		}
		return nil, fmt.Errorf("查询工单失败: %w", err)
	}
	return &order, nil
}

// ListWorkOrders 工单列表，search 按工单号、客户姓名、手机号模糊匹配，可按状态和客户筛选
func (s *Store) ListWorkOrders(ctx context.Context, filter WorkOrderFilter) ([]models.WorkOrder, error) {
	query := s.db.WithContext(ctx).Model(&models.WorkOrder{}).
		Select("work_orders.*").
		Joins("JOIN clients ON clients.id = work_orders.client_id").
		Preload("Client").
		Preload("Employee")

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("work_orders.order_number LIKE ? OR clients.full_name LIKE ? OR clients.phone LIKE ?",
			pattern, pattern, pattern)
	}
	if filter.Status != "" {
		query = query.Where("work_orders.status = ?", filter.Status)
	}
	if filter.ClientID != nil {
		query = query.Where("work_orders.client_id = ?", *filter.ClientID)
	}

	var orders []models.WorkOrder
	if err := query.Order("work_orders.created_at DESC").Order("work_orders.id DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("查询工单列表失败: %w", err)
	}
	return orders, nil
}

// UpdateWorkOrder 修改工单描述或指派员工，已完成的工单不可修改
func (s *Store) UpdateWorkOrder(ctx context.Context, id uint, patch WorkOrderPatch) (*models.WorkOrder, error) {
	updates := map[string]any{}
	if patch.Description != nil {
		if strings.TrimSpace(*patch.Description) == "" {
			return nil, validationError("工单描述不能为空")
		}
		updates["description"] = strings.TrimSpace(*patch.Description)
	}
	if patch.EmployeeID != nil {
		if *patch.EmployeeID == 0 {
			updates["employee_id"] = nil
		} else {
			updates["employee_id"] = *patch.EmployeeID
		}
	}
	if len(updates) == 0 {
		return nil, validationError("没有需要更新的字段")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadEditableOrder(tx, id)
		if err != nil {
			return err
		}
		if patch.EmployeeID != nil && *patch.EmployeeID != 0 {
			if err := ensureExists(tx, &models.Employee{}, *patch.EmployeeID, "员工"); err != nil {
				return err
			}
		}
		if err := tx.Model(order).Updates(updates).Error; err != nil {
			return fmt.Errorf("更新工单失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetWorkOrder(ctx, id)
}

// UpdateWorkOrderStatus 修改工单状态
// 改为 completed 时走完成流程（入账、计提提成）；completed 为终态，之后任何状态修改都被拒绝
func (s *Store) UpdateWorkOrderStatus(ctx context.Context, id uint, status string) (*models.WorkOrder, error) {
	switch status {
	case models.OrderStatusCompleted:
		if _, err := s.CompleteWorkOrder(ctx, id); err != nil {
			return nil, err
		}
		return s.GetWorkOrder(ctx, id)
	case models.OrderStatusNew, models.OrderStatusInProgress:
	default:
		return nil, validationError("未知的工单状态: %s", status)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := loadEditableOrder(tx, id)
		if err != nil {
			return err
		}
		return tx.Model(order).Updates(map[string]any{
			"status":       status,
			"completed_at": nil,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetWorkOrder(ctx, id)
}

// AddOrderWork 追加工时项目并重新计算工单总额
func (s *Store) AddOrderWork(ctx context.Context, orderID uint, in WorkLineInput) (*models.OrderWork, error) {
	work, err := in.toModel()
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadEditableOrder(tx, orderID); err != nil {
			return err
		}
		work.OrderID = orderID
		if err := tx.Create(&work).Error; err != nil {
			return fmt.Errorf("添加工时项目失败: %w", err)
		}
		_, err := recalcOrderTotal(tx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &work, nil
}

// AddOrderExpense 追加配件并重新计算工单总额
func (s *Store) AddOrderExpense(ctx context.Context, orderID uint, in ExpenseLineInput) (*models.OrderExpense, error) {
	expense, err := in.toModel()
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadEditableOrder(tx, orderID); err != nil {
			return err
		}
		expense.OrderID = orderID
		if err := tx.Create(&expense).Error; err != nil {
			return fmt.Errorf("添加配件失败: %w", err)
		}
		_, err := recalcOrderTotal(tx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// DeleteOrderWork 删除工时项目并重新计算工单总额
func (s *Store) DeleteOrderWork(ctx context.Context, orderID, workID uint) error {
	return s.deleteOrderItem(ctx, orderID, workID, &models.OrderWork{}, "工时项目")
}

// DeleteOrderExpense 删除配件并重新计算工单总额
func (s *Store) DeleteOrderExpense(ctx context.Context, orderID, expenseID uint) error {
	return s.deleteOrderItem(ctx, orderID, expenseID, &models.OrderExpense{}, "配件")
}

func (s *Store) deleteOrderItem(ctx context.Context, orderID, itemID uint, model any, entity string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadEditableOrder(tx, orderID); err != nil {
			return err
		}
		result := tx.Where("id = ? AND order_id = ?", itemID, orderID).Delete(model)
		if result.Error != nil {
			return fmt.Errorf("删除%s失败: %w", entity, result.Error)
		}
		if result.RowsAffected == 0 {
			return notFound(entity, itemID)
		}
		_, err := recalcOrderTotal(tx, orderID)
		return err
	})
}

// DeleteWorkOrder 删除工单，明细级联删除，已入账的流水与提成保留但解除关联
func (s *Store) DeleteWorkOrder(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.WorkOrder{}, id)
	if result.Error != nil {
		return fmt.Errorf("删除工单失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("工单", id)
	}
	return nil
}

// loadEditableOrder 读取工单并确认仍可修改
func loadEditableOrder(tx *gorm.DB, id uint) (*models.WorkOrder, error) {
	var order models.WorkOrder
	if err := tx.First(&order, id).Error; err != nil {
		if isNotFound(err) {
			return nil, notFound("工单", id)
		}
		return nil, fmt.Errorf("查询工单失败: %w", err)
	}
	if order.IsCompleted() {
		return nil, ErrOrderCompleted
	}
	return &order, nil
}

// loadOrderItems 读取工单已保存的明细
func loadOrderItems(tx *gorm.DB, orderID uint) ([]models.OrderWork, []models.OrderExpense, error) {
	var works []models.OrderWork
	if err := tx.Where("order_id = ?", orderID).Order("id").Find(&works).Error; err != nil {
		return nil, nil, fmt.Errorf("查询工时项目失败: %w", err)
	}
	var expenses []models.OrderExpense
	if err := tx.Where("order_id = ?", orderID).Order("id").Find(&expenses).Error; err != nil {
		return nil, nil, fmt.Errorf("查询配件失败: %w", err)
	}
	return works, expenses, nil
}

// recalcOrderTotal 按已保存的明细重算并写回工单总额
func recalcOrderTotal(tx *gorm.DB, orderID uint) (OrderTotals, error) {
	works, expenses, err := loadOrderItems(tx, orderID)
	if err != nil {
		return OrderTotals{}, err
	}
	totals := CalculateOrderTotals(works, expenses)
	if err := tx.Model(&models.WorkOrder{}).Where("id = ?", orderID).
		Update("total_amount", totals.TotalAmount).Error; err != nil {
		return OrderTotals{}, fmt.Errorf("更新工单总额失败: %w", err)
	}
	return totals, nil
}

// ensureExists 确认被引用的记录存在
func ensureExists(tx *gorm.DB, model any, id uint, entity string) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("查询%s失败: %w", entity, err)
	}
	if count == 0 {
		return notFound(entity, id)
	}
	return nil
}
