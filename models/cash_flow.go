package models

import "time"

// 收支方向
const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)

// 系统自动入账使用的类别，其余类别由用户自由填写（如 rent、utilities）
const (
	CategoryOrderWork   = "order_work"
	CategoryOrderMarkup = "order_markup"
	CategorySalary      = "salary"
)

// CashFlowEntry 收银台流水
// OrderID 为弱引用，工单删除后置空，流水保留
type CashFlowEntry struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	TransactionType string    `json:"transaction_type" gorm:"size:10;not null;index"`
	Category        string    `json:"category" gorm:"size:50;not null"`
	Amount          float64   `json:"amount" gorm:"type:decimal(12,2);not null"`
	Description     string    `json:"description" gorm:"size:255"`
	OrderID         *uint     `json:"order_id" gorm:"index"`
	Date            time.Time `json:"date" gorm:"not null;index"`
	CreatedAt       time.Time `json:"created_at"`

	Order *WorkOrder `json:"-" gorm:"foreignKey:OrderID;constraint:OnDelete:SET NULL"`
}

func (CashFlowEntry) TableName() string {
	return "cash_flow"
}
