package service

import (
	"strings"
	"testing"
	"time"

	"autoservice/config"

	"github.com/stretchr/testify/assert"
)

func newTestEmailService() *EmailService {
	return NewEmailService(&config.EmailConfig{})
}

func sampleStats() *FinancialStats {
	return &FinancialStats{
		Period:             PeriodDay,
		Start:              time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local),
		End:                time.Date(2024, 3, 15, 21, 0, 0, 0, time.Local),
		TotalIncome:        2100,
		TotalExpenses:      150,
		NetProfit:          1950,
		IncomeByCategory:   map[string]float64{"order_work": 2000, "order_markup": 100},
		ExpensesByCategory: map[string]float64{"salary": 150},
	}
}

func TestGenerateReportBody(t *testing.T) {
	s := newTestEmailService()
	body := s.generateReportBody("Автосервис <Север>", sampleStats())

	assert.Contains(t, body, "Автосервис &lt;Север&gt;")
	assert.Contains(t, body, "2024-03-15 00:00 ~ 2024-03-15 21:00")
	assert.Contains(t, body, "2100.00")
	assert.Contains(t, body, "1950.00")
	assert.Contains(t, body, "#059669;\">1950.00")
	assert.Contains(t, body, "order_markup")
	assert.Contains(t, body, "<td>salary</td>")
	assert.NotContains(t, body, "%!")
}

func TestGenerateReportBodyLoss(t *testing.T) {
	s := newTestEmailService()
	stats := sampleStats()
	stats.NetProfit = -10
	stats.ExpensesByCategory = nil

	body := s.generateReportBody("A", stats)
	assert.Contains(t, body, "#dc2626;\">-10.00")
	assert.Contains(t, body, "<td>无</td>")
}

func TestCategoryRowsSorted(t *testing.T) {
	rows := categoryRows(map[string]float64{"rent": 500, "parts": 20.5})
	assert.Less(t, strings.Index(rows, "parts"), strings.Index(rows, "rent"))
	assert.Contains(t, rows, "20.50")
}

func TestSendFinancialReportDisabled(t *testing.T) {
	s := newTestEmailService()
	assert.False(t, s.Enabled())
	err := s.SendFinancialReport([]string{"owner@example.com"}, "A", sampleStats())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "未启用")
}

func TestSendFinancialReportNoRecipients(t *testing.T) {
	s := NewEmailService(&config.EmailConfig{Enabled: true})
	err := s.SendFinancialReport(nil, "A", sampleStats())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "收件人")
}

