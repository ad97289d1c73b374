package service

import (
	"context"
	"fmt"

	"autoservice/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CompletionResult 工单完成时的入账结果
type CompletionResult struct {
	OrderID       uint    `json:"order_id"`
	OrderNumber   string  `json:"order_number"`
	WorksTotal    float64 `json:"works_total"`
	MarkupTotal   float64 `json:"markup_total"`
	SalaryAmount  float64 `json:"salary_amount"`
	CashFlowIDs   []uint  `json:"cash_flow_ids"`
	SalaryEntryID *uint   `json:"salary_entry_id,omitempty"`
}

// CompleteWorkOrder 完成工单
//
// 在同一个事务中：把状态置为 completed 并记录完成时间；按已保存的明细重算工时合计与配件加价；
// 工时合计 > 0 记一笔 order_work 收入，加价 > 0 记一笔 order_markup 收入；
// 工单指派了在职且提成比例 > 0 的员工时按工时合计计提提成（只记员工台账，发放时才记支出）。
// 任一步失败整体回滚。已完成的工单返回 ErrOrderCompleted，不会重复入账。
func (s *Store) CompleteWorkOrder(ctx context.Context, id uint) (*CompletionResult, error) {
	var result CompletionResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.WorkOrder
		if err := tx.First(&order, id).Error; err != nil {
			if isNotFound(err) {
				return notFound("工单", id)
			}
			return fmt.Errorf("查询工单失败: %w", err)
		}

		now := s.now()
		updated := tx.Model(&models.WorkOrder{}).
			Where("id = ? AND status <> ?", id, models.OrderStatusCompleted).
			Updates(map[string]any{
				"status":       models.OrderStatusCompleted,
				"completed_at": now,
			})
		if updated.Error != nil {
			return fmt.Errorf("更新工单状态失败: %w", updated.Error)
		}
		if updated.RowsAffected == 0 {
			return ErrOrderCompleted
		}

		works, expenses, err := loadOrderItems(tx, id)
		if err != nil {
			return err
		}
		worksTotal := sumWorks(works)
		_, markupTotal := sumExpenses(expenses)

		result.OrderID = order.ID
		result.OrderNumber = order.OrderNumber
		result.WorksTotal = worksTotal.InexactFloat64()
		result.MarkupTotal = markupTotal.InexactFloat64()

		orderID := order.ID
		if worksTotal.IsPositive() {
			entry := models.CashFlowEntry{
				TransactionType: models.TransactionIncome,
				Category:        models.CategoryOrderWork,
				Amount:          result.WorksTotal,
				Description:     fmt.Sprintf("工单 %s 工时收入", order.OrderNumber),
				OrderID:         &orderID,
				Date:            now,
			}
			if err := postCashFlow(tx, &entry); err != nil {
				return err
			}
			result.CashFlowIDs = append(result.CashFlowIDs, entry.ID)
		}
		if markupTotal.IsPositive() {
			entry := models.CashFlowEntry{
				TransactionType: models.TransactionIncome,
				Category:        models.CategoryOrderMarkup,
				Amount:          result.MarkupTotal,
				Description:     fmt.Sprintf("工单 %s 配件加价收入", order.OrderNumber),
				OrderID:         &orderID,
				Date:            now,
			}
			if err := postCashFlow(tx, &entry); err != nil {
				return err
			}
			result.CashFlowIDs = append(result.CashFlowIDs, entry.ID)
		}

		if order.EmployeeID == nil {
			return nil
		}
		entry, err := accrueCommission(tx, *order.EmployeeID, orderID, worksTotal)
		if err != nil || entry == nil {
			return err
		}
		result.SalaryAmount = entry.Amount
		result.SalaryEntryID = &entry.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// accrueCommission 为员工计提工单提成
// 员工不存在、已离职、提成比例为 0 或金额为 0 时不计提，返回 nil
func accrueCommission(tx *gorm.DB, employeeID, orderID uint, worksTotal decimal.Decimal) (*models.SalaryEntry, error) {
	var employee models.Employee
	if err := tx.First(&employee, employeeID).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询员工失败: %w", err)
	}
	if !employee.IsActive || employee.CommissionRate <= 0 {
		return nil, nil
	}

	amount := commission(worksTotal.InexactFloat64(), employee.CommissionRate)
	if !amount.IsPositive() {
		return nil, nil
	}

	entry := models.SalaryEntry{
		EmployeeID:     employee.ID,
		OrderID:        &orderID,
		Amount:         amount.InexactFloat64(),
		CommissionRate: employee.CommissionRate,
		WorksTotal:     worksTotal.InexactFloat64(),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("记录员工提成失败: %w", err)
	}
	return &entry, nil
}
