package models

import "time"

// Employee 员工，按提成比例计薪
type Employee struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	FullName       string    `json:"full_name" gorm:"size:100;not null"`
	Position       string    `json:"position" gorm:"size:100"`
	CommissionRate float64   `json:"commission_rate" gorm:"type:decimal(5,2);not null;default:0"` // 百分比
	IsActive       bool      `json:"is_active" gorm:"not null"`
	HireDate       time.Time `json:"hire_date"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Employee) TableName() string {
	return "employees"
}

// SalaryEntry 工单完成时计提的员工提成
type SalaryEntry struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	EmployeeID     uint      `json:"employee_id" gorm:"not null;index"`
	OrderID        *uint     `json:"order_id" gorm:"index"`
	Amount         float64   `json:"amount" gorm:"type:decimal(12,2);not null"`
	CommissionRate float64   `json:"commission_rate" gorm:"type:decimal(5,2);not null"`
	WorksTotal     float64   `json:"works_total" gorm:"type:decimal(12,2);not null"`
	CreatedAt      time.Time `json:"created_at"`

	Employee *Employee  `json:"-" gorm:"foreignKey:EmployeeID;constraint:OnDelete:CASCADE"`
	Order    *WorkOrder `json:"-" gorm:"foreignKey:OrderID;constraint:OnDelete:SET NULL"`
}

func (SalaryEntry) TableName() string {
	return "salary_entries"
}

// SalaryPayment 工资发放记录
type SalaryPayment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	EmployeeID uint      `json:"employee_id" gorm:"not null;index"`
	Amount     float64   `json:"amount" gorm:"type:decimal(12,2);not null"`
	Note       string    `json:"note" gorm:"size:255"`
	PaidAt     time.Time `json:"paid_at" gorm:"not null"`

	Employee *Employee `json:"-" gorm:"foreignKey:EmployeeID;constraint:OnDelete:CASCADE"`
}

func (SalaryPayment) TableName() string {
	return "salary_payments"
}
