package service

import (
	"context"
	"fmt"
	"time"

	"autoservice/models"

	"github.com/shopspring/decimal"
)

// 统计周期
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// FinancialStats 周期财务汇总
type FinancialStats struct {
	Period             string             `json:"period"`
	Start              time.Time          `json:"start"`
	End                time.Time          `json:"end"`
	TotalIncome        float64            `json:"total_income"`
	TotalExpenses      float64            `json:"total_expenses"`
	NetProfit          float64            `json:"net_profit"`
	IncomeByCategory   map[string]float64 `json:"income_by_category"`
	ExpensesByCategory map[string]float64 `json:"expenses_by_category"`
}

// DashboardStats 首页概览
type DashboardStats struct {
	Clients        int64            `json:"clients"`
	OrdersByStatus map[string]int64 `json:"orders_by_status"`
	ActiveOrders   int64            `json:"active_orders"`
	Revenue        float64          `json:"revenue"` // 已完成工单总额
	TasksByStatus  map[string]int64 `json:"tasks_by_status"`
	PendingTasks   int64            `json:"pending_tasks"`
	Balance        float64          `json:"balance"`
	Period         *FinancialStats  `json:"period"`
}

// PeriodWindow 计算统计区间 [start, now]
// day 今天零点；week 本周一零点；month 本月 1 日；year 今年 1 月 1 日；其他取 30 天前零点
func PeriodWindow(period string, now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	loc := now.Location()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)

	switch period {
	case PeriodDay:
		return today, now
	case PeriodWeek:
		offset := (int(now.Weekday()) + 6) % 7
		return today.AddDate(0, 0, -offset), now
	case PeriodMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc), now
	case PeriodYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc), now
	default:
		return today.AddDate(0, 0, -30), now
	}
}

// FinancialStats 统计周期内的收入、支出与分类合计
func (s *Store) FinancialStats(ctx context.Context, period string) (*FinancialStats, error) {
	start, end := PeriodWindow(period, s.now())

	var rows []struct {
		TransactionType string
		Category        string
		Total           float64
	}
	err := s.db.WithContext(ctx).Model(&models.CashFlowEntry{}).
		Select("transaction_type, category, COALESCE(SUM(amount), 0) AS total").
		Where("date >= ? AND date <= ?", start, end).
		Group("transaction_type, category").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("统计流水失败: %w", err)
	}

	stats := &FinancialStats{
		Period:             period,
		Start:              start,
		End:                end,
		IncomeByCategory:   map[string]float64{},
		ExpensesByCategory: map[string]float64{},
	}
	income, expenses := decimal.Zero, decimal.Zero
	for _, r := range rows {
		amount := decimal.NewFromFloat(r.Total)
		switch r.TransactionType {
		case models.TransactionIncome:
			income = income.Add(amount)
			stats.IncomeByCategory[r.Category] = amount.Round(2).InexactFloat64()
		case models.TransactionExpense:
			expenses = expenses.Add(amount)
			stats.ExpensesByCategory[r.Category] = amount.Round(2).InexactFloat64()
		}
	}
	stats.TotalIncome = income.Round(2).InexactFloat64()
	stats.TotalExpenses = expenses.Round(2).InexactFloat64()
	stats.NetProfit = income.Sub(expenses).Round(2).InexactFloat64()
	return stats, nil
}

// DashboardStats 首页概览，period 为空时读取 dashboard_period 设置
func (s *Store) DashboardStats(ctx context.Context, period string) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)

	if period == "" {
		p, err := s.GetSetting(ctx, models.SettingDashboardPeriod, PeriodMonth)
		if err != nil {
			return nil, err
		}
		period = p
	}

	var dash DashboardStats
	if err := db.Model(&models.Client{}).Count(&dash.Clients).Error; err != nil {
		return nil, fmt.Errorf("统计客户失败: %w", err)
	}

	orders, err := countByStatus(db, &models.WorkOrder{}, "status")
	if err != nil {
		return nil, err
	}
	dash.OrdersByStatus = orders
	dash.ActiveOrders = orders[models.OrderStatusNew] + orders[models.OrderStatusInProgress]

	var revenue float64
	if err := db.Model(&models.WorkOrder{}).
		Where("status = ?", models.OrderStatusCompleted).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&revenue).Error; err != nil {
		return nil, fmt.Errorf("统计营业额失败: %w", err)
	}
	dash.Revenue = round2(revenue)

	tasks, err := s.CountTasksByStatus(ctx)
	if err != nil {
		return nil, err
	}
	dash.TasksByStatus = tasks
	dash.PendingTasks = tasks[models.TaskStatusPending] + tasks[models.TaskStatusInProgress]

	if dash.Balance, err = s.TotalBalance(ctx); err != nil {
		return nil, err
	}
	if dash.Period, err = s.FinancialStats(ctx, period); err != nil {
		return nil, err
	}
	return &dash, nil
}
