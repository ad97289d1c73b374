package models

import "time"

// 工单状态
const (
	OrderStatusNew        = "new"
	OrderStatusInProgress = "in_progress"
	OrderStatusCompleted  = "completed"
)

// OrderStatuses 所有合法的工单状态
func OrderStatuses() []string {
	return []string{OrderStatusNew, OrderStatusInProgress, OrderStatusCompleted}
}

// 配件/材料类型
const (
	ExpenseTypeMaterial = "material"
	ExpenseTypePart     = "part"
	ExpenseTypeService  = "service"
)

// WorkOrder 维修工单
// CompletedAt 仅在状态为 completed 时有值
type WorkOrder struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	ClientID    uint       `json:"client_id" gorm:"not null;index"`
	EmployeeID  *uint      `json:"employee_id" gorm:"index"`
	OrderNumber string     `json:"order_number" gorm:"size:20;uniqueIndex"`
	Description string     `json:"description" gorm:"type:text;not null"`
	Status      string     `json:"status" gorm:"size:20;not null;default:new;index"`
	TotalAmount float64    `json:"total_amount" gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
	CompletedAt *time.Time `json:"completed_at"`

	Client   *Client        `json:"client,omitempty" gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
	Employee *Employee      `json:"employee,omitempty" gorm:"foreignKey:EmployeeID;constraint:OnDelete:SET NULL"`
	Works    []OrderWork    `json:"works,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Expenses []OrderExpense `json:"expenses,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (WorkOrder) TableName() string {
	return "work_orders"
}

// IsCompleted 工单是否已完成（完成后不可再修改）
func (o *WorkOrder) IsCompleted() bool {
	return o.Status == OrderStatusCompleted
}

// OrderWork 工单中的工时/人工项目
type OrderWork struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	OrderID      uint    `json:"order_id" gorm:"not null;index"`
	WorkName     string  `json:"work_name" gorm:"size:200;not null"`
	Quantity     float64 `json:"quantity" gorm:"type:decimal(12,2);not null;default:1"`
	PricePerUnit float64 `json:"price_per_unit" gorm:"type:decimal(12,2);not null;default:0"`
	TotalPrice   float64 `json:"total_price" gorm:"type:decimal(12,2);not null;default:0"`
}

func (OrderWork) TableName() string {
	return "order_works"
}

// OrderExpense 工单中的配件/材料
// 售价 = 成本 × (1 + 加价率)，在计算时得出，不单独落库
type OrderExpense struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	OrderID       uint    `json:"order_id" gorm:"not null;index"`
	ExpenseName   string  `json:"expense_name" gorm:"size:200;not null"`
	ExpenseType   string  `json:"expense_type" gorm:"size:30;not null;default:material"`
	Quantity      float64 `json:"quantity" gorm:"type:decimal(12,2);not null;default:1"`
	CostPerUnit   float64 `json:"cost_per_unit" gorm:"type:decimal(12,2);not null;default:0"`
	MarkupPercent float64 `json:"markup_percent" gorm:"type:decimal(6,2);not null;default:0"`
	TotalCost     float64 `json:"total_cost" gorm:"type:decimal(12,2);not null;default:0"`
	Notes         string  `json:"notes" gorm:"type:text"`
}

func (OrderExpense) TableName() string {
	return "order_expenses"
}
