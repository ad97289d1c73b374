package service

import (
	"context"
	"fmt"
	"strings"

	"autoservice/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EmployeeBalance 员工工资台账：累计提成、已发放、待发放
type EmployeeBalance struct {
	EmployeeID uint    `json:"employee_id"`
	Earned     float64 `json:"earned"`
	Paid       float64 `json:"paid"`
	Pending    float64 `json:"pending"`
}

// SalaryPaymentResult 发放工资的结果
type SalaryPaymentResult struct {
	Payment    models.SalaryPayment `json:"payment"`
	CashFlowID uint                 `json:"cash_flow_id"`
	Balance    EmployeeBalance      `json:"balance"`
}

// EmployeeBalance 查询员工工资台账
func (s *Store) EmployeeBalance(ctx context.Context, employeeID uint) (*EmployeeBalance, error) {
	db := s.db.WithContext(ctx)
	if err := ensureExists(db, &models.Employee{}, employeeID, "员工"); err != nil {
		return nil, err
	}
	earned, paid, err := employeeTotals(db, employeeID)
	if err != nil {
		return nil, err
	}
	return newEmployeeBalance(employeeID, earned, paid), nil
}

// PaySalary 发放工资
// 金额必须大于 0 且不超过待发放金额；发放记录与 salary 支出流水在同一事务中写入
func (s *Store) PaySalary(ctx context.Context, employeeID uint, amount float64, note string) (*SalaryPaymentResult, error) {
	if amount <= 0 {
		return nil, validationError("发放金额必须大于 0")
	}
	pay := decimal.NewFromFloat(amount).Round(2)

	var result SalaryPaymentResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var employee models.Employee
		if err := tx.First(&employee, employeeID).Error; err != nil {
			if isNotFound(err) {
				return notFound("员工", employeeID)
			}
			return fmt.Errorf("查询员工失败: %w", err)
		}

		earned, paid, err := employeeTotals(tx, employeeID)
		if err != nil {
			return err
		}
		pending := earned.Sub(paid)
		if pay.GreaterThan(pending) {
			return validationError("发放金额 %s 超过待发放金额 %s", pay.StringFixed(2), pending.StringFixed(2))
		}

		now := s.now()
		payment := models.SalaryPayment{
			EmployeeID: employeeID,
			Amount:     pay.InexactFloat64(),
			Note:       strings.TrimSpace(note),
			PaidAt:     now,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("记录工资发放失败: %w", err)
		}

		description := fmt.Sprintf("工资发放: %s", employee.FullName)
		if payment.Note != "" {
			description += " (" + payment.Note + ")"
		}
		entry := models.CashFlowEntry{
			TransactionType: models.TransactionExpense,
			Category:        models.CategorySalary,
			Amount:          payment.Amount,
			Description:     description,
			Date:            now,
		}
		if err := postCashFlow(tx, &entry); err != nil {
			return err
		}

		result.Payment = payment
		result.CashFlowID = entry.ID
		result.Balance = *newEmployeeBalance(employeeID, earned, paid.Add(pay))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListSalaryEntries 员工提成记录，最新在前
func (s *Store) ListSalaryEntries(ctx context.Context, employeeID uint) ([]models.SalaryEntry, error) {
	var entries []models.SalaryEntry
	if err := s.db.WithContext(ctx).Where("employee_id = ?", employeeID).
		Order("created_at DESC").Order("id DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("查询提成记录失败: %w", err)
	}
	return entries, nil
}

// ListSalaryPayments 员工工资发放记录，最新在前
func (s *Store) ListSalaryPayments(ctx context.Context, employeeID uint) ([]models.SalaryPayment, error) {
	var payments []models.SalaryPayment
	if err := s.db.WithContext(ctx).Where("employee_id = ?", employeeID).
		Order("paid_at DESC").Order("id DESC").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("查询发放记录失败: %w", err)
	}
	return payments, nil
}

func employeeTotals(db *gorm.DB, employeeID uint) (earned, paid decimal.Decimal, err error) {
	var earnedSum, paidSum float64
	if err = db.Model(&models.SalaryEntry{}).Where("employee_id = ?", employeeID).
		Select("COALESCE(SUM(amount), 0)").Scan(&earnedSum).Error; err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("汇总提成失败: %w", err)
	}
	if err = db.Model(&models.SalaryPayment{}).Where("employee_id = ?", employeeID).
		Select("COALESCE(SUM(amount), 0)").Scan(&paidSum).Error; err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("汇总工资发放失败: %w", err)
	}
	return decimal.NewFromFloat(earnedSum).Round(2), decimal.NewFromFloat(paidSum).Round(2), nil
}

func newEmployeeBalance(employeeID uint, earned, paid decimal.Decimal) *EmployeeBalance {
	return &EmployeeBalance{
		EmployeeID: employeeID,
		Earned:     earned.Round(2).InexactFloat64(),
		Paid:       paid.Round(2).InexactFloat64(),
		Pending:    earned.Sub(paid).Round(2).InexactFloat64(),
	}
}
