package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"autoservice/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CashFlowInput 手工记账参数
type CashFlowInput struct {
	TransactionType string     `json:"transaction_type"`
	Category        string     `json:"category"`
	Amount          float64    `json:"amount"`
	Description     string     `json:"description"`
	OrderID         *uint      `json:"order_id"`
	Date            *time.Time `json:"date"`
}

// CashFlowFilter 流水查询条件，零值字段不参与过滤
type CashFlowFilter struct {
	Start           *time.Time
	End             *time.Time
	TransactionType string
	OrderID         *uint
}

// AddCashFlow 手工记一笔收入或支出
func (s *Store) AddCashFlow(ctx context.Context, in CashFlowInput) (*models.CashFlowEntry, error) {
	if in.TransactionType != models.TransactionIncome && in.TransactionType != models.TransactionExpense {
		return nil, validationError("收支类型必须是 income 或 expense")
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return nil, validationError("类别不能为空")
	}
	if in.Amount <= 0 {
		return nil, validationError("金额必须大于 0")
	}

	entry := models.CashFlowEntry{
		TransactionType: in.TransactionType,
		Category:        category,
		Amount:          round2(in.Amount),
		Description:     in.Description,
		OrderID:         in.OrderID,
		Date:            s.now(),
	}
	if in.Date != nil {
		entry.Date = *in.Date
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if entry.OrderID != nil {
			if err := ensureExists(tx, &models.WorkOrder{}, *entry.OrderID, "工单"); err != nil {
				return err
			}
		}
		return postCashFlow(tx, &entry)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// postCashFlow 在调用方的事务中写入一笔流水
func postCashFlow(tx *gorm.DB, entry *models.CashFlowEntry) error {
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("记录%s流水失败: %w", entry.Category, err)
	}
	return nil
}

// ListCashFlow 查询流水，按日期倒序
func (s *Store) ListCashFlow(ctx context.Context, filter CashFlowFilter) ([]models.CashFlowEntry, error) {
	query := s.db.WithContext(ctx).Model(&models.CashFlowEntry{})
	if filter.Start != nil {
		query = query.Where("date >= ?", *filter.Start)
	}
	if filter.End != nil {
		query = query.Where("date <= ?", *filter.End)
	}
	if filter.TransactionType != "" {
		query = query.Where("transaction_type = ?", filter.TransactionType)
	}
	if filter.OrderID != nil {
		query = query.Where("order_id = ?", *filter.OrderID)
	}

	var entries []models.CashFlowEntry
	if err := query.Order("date DESC").Order("id DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("查询流水失败: %w", err)
	}
	return entries, nil
}

// DeleteCashFlow 删除一笔流水
func (s *Store) DeleteCashFlow(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.CashFlowEntry{}, id)
	if result.Error != nil {
		return fmt.Errorf("删除流水失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("流水", id)
	}
	return nil
}

// TotalBalance 全部收入减全部支出
func (s *Store) TotalBalance(ctx context.Context) (float64, error) {
	income, err := sumCashFlow(s.db.WithContext(ctx), models.TransactionIncome, nil, nil)
	if err != nil {
		return 0, err
	}
	expense, err := sumCashFlow(s.db.WithContext(ctx), models.TransactionExpense, nil, nil)
	if err != nil {
		return 0, err
	}
	return income.Sub(expense).Round(2).InexactFloat64(), nil
}

// sumCashFlow 指定方向、时间范围内的流水合计
func sumCashFlow(db *gorm.DB, txType string, start, end *time.Time) (decimal.Decimal, error) {
	query := db.Model(&models.CashFlowEntry{}).Where("transaction_type = ?", txType)
	if start != nil {
		query = query.Where("date >= ?", *start)
	}
	if end != nil {
		query = query.Where("date <= ?", *end)
	}
	var total float64
	if err := query.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		return decimal.Zero, fmt.Errorf("汇总流水失败: %w", err)
	}
	return decimal.NewFromFloat(total), nil
}
