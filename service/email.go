package service

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"autoservice/config"

	"gopkg.in/gomail.v2"
)

// EmailService 邮件服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// Enabled 邮件服务是否已启用
func (s *EmailService) Enabled() bool {
	return s.cfg != nil && s.cfg.Enabled
}

// SendFinancialReport 发送周期财务报表
func (s *EmailService) SendFinancialReport(to []string, companyName string, stats *FinancialStats) error {
	if !s.Enabled() {
		return fmt.Errorf("邮件服务未启用，请配置 AUTOSERVICE_EMAIL_ENABLED=true")
	}
	if len(to) == 0 {
		return fmt.Errorf("未配置报表收件人")
	}
	if stats == nil {
		return fmt.Errorf("报表数据为空")
	}

	subject := fmt.Sprintf("【%s】财务报表 %s ~ %s", companyName,
		stats.Start.Format("2006-01-02"), stats.End.Format("2006-01-02"))
	body := s.generateReportBody(companyName, stats)

	return s.sendEmail(to, subject, body)
}

// generateReportBody 生成报表邮件内容
func (s *EmailService) generateReportBody(companyName string, stats *FinancialStats) string {
	profitColor := "#059669"
	if stats.NetProfit < 0 {
		profitColor = "#dc2626"
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #2563eb, #1d4ed8); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .header p { margin: 8px 0 0; opacity: 0.9; }
        .content { padding: 30px; }
        .summary td { padding: 8px 0; font-size: 16px; }
        .summary td.amount { text-align: right; font-weight: bold; }
        h3 { margin: 24px 0 8px; color: #333; }
        table.detail { width: 100%%; border-collapse: collapse; }
        table.detail td { padding: 6px 0; border-bottom: 1px solid #eee; color: #555; }
        table.detail td.amount { text-align: right; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>%s</h1>
            <p>%s ~ %s</p>
        </div>
        <div class="content">
            <table class="summary" width="100%%">
                <tr><td>收入</td><td class="amount" style="color: #059669;">%.2f</td></tr>
                <tr><td>支出</td><td class="amount" style="color: #dc2626;">%.2f</td></tr>
                <tr><td>净利润</td><td class="amount" style="color: %s;">%.2f</td></tr>
            </table>
            <h3>收入明细</h3>
            <table class="detail">%s</table>
            <h3>支出明细</h3>
            <table class="detail">%s</table>
        </div>
        <div class="footer">
            <p>此邮件由系统自动发送，请勿回复</p>
        </div>
    </div>
</body>
</html>
`,
		html.EscapeString(companyName),
		stats.Start.Format("2006-01-02 15:04"), stats.End.Format("2006-01-02 15:04"),
		stats.TotalIncome, stats.TotalExpenses, profitColor, stats.NetProfit,
		categoryRows(stats.IncomeByCategory), categoryRows(stats.ExpensesByCategory))
}

// categoryRows 按类别名排序输出表格行
func categoryRows(byCategory map[string]float64) string {
	if len(byCategory) == 0 {
		return `<tr><td>无</td><td class="amount">0.00</td></tr>`
	}
	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, `<tr><td>%s</td><td class="amount">%.2f</td></tr>`, html.EscapeString(name), byCategory[name])
	}
	return b.String()
}

// sendEmail 发送邮件
func (s *EmailService) sendEmail(to []string, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	return nil
}
