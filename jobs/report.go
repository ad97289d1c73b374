package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"autoservice/config"
	"autoservice/models"
	"autoservice/service"

	"github.com/robfig/cron/v3"
)

// 单次报表任务的超时时间
const reportTimeout = time.Minute

// StatsSource 报表数据来源
type StatsSource interface {
	FinancialStats(ctx context.Context, period string) (*service.FinancialStats, error)
	GetSetting(ctx context.Context, key, defaultValue string) (string, error)
}

// ReportMailer 报表发送方
type ReportMailer interface {
	SendFinancialReport(to []string, companyName string, stats *service.FinancialStats) error
}

// SendReport 统计指定周期的财务数据并发送给收件人
func SendReport(ctx context.Context, source StatsSource, mailer ReportMailer, period string, recipients []string) (*service.FinancialStats, error) {
	if len(recipients) == 0 {
		return nil, fmt.Errorf("未配置报表收件人")
	}
	stats, err := source.FinancialStats(ctx, period)
	if err != nil {
		return nil, err
	}
	company, err := source.GetSetting(ctx, models.SettingCompanyName, "Автосервис")
	if err != nil {
		return nil, err
	}
	if err := mailer.SendFinancialReport(recipients, company, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// ReportScheduler 定时发送财务报表
type ReportScheduler struct {
	cronScheduler *cron.Cron
	cfg           config.ReportConfig
	source        StatsSource
	mailer        ReportMailer
	jobID         cron.EntryID
}

// NewReportScheduler 创建报表定时任务
func NewReportScheduler(cfg config.ReportConfig, source StatsSource, mailer ReportMailer) *ReportScheduler {
	return &ReportScheduler{
		cronScheduler: cron.New(cron.WithSeconds()),
		cfg:           cfg,
		source:        source,
		mailer:        mailer,
	}
}

// Start 注册并启动定时任务
// cron 表达式带秒，如 "0 0 21 * * *" 表示每天 21:00:00
func (r *ReportScheduler) Start() error {
	var err error
	r.jobID, err = r.cronScheduler.AddFunc(r.cfg.Cron, func() {
		log.Printf("开始发送定时财务报表 (%s)", r.cfg.Period)
		if err := r.RunOnce(context.Background()); err != nil {
			log.Printf("定时财务报表发送失败: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("注册报表定时任务失败: %w", err)
	}

	r.cronScheduler.Start()
	log.Printf("报表定时任务已启动: %s", r.cfg.Cron)
	return nil
}

// Stop 停止定时任务，等待正在执行的任务结束
func (r *ReportScheduler) Stop() {
	if r.cronScheduler != nil {
		<-r.cronScheduler.Stop().Done()
		log.Println("报表定时任务已停止")
	}
}

// NextRun 下一次执行时间，未启动时为零值
func (r *ReportScheduler) NextRun() time.Time {
	return r.cronScheduler.Entry(r.jobID).Next
}

// RunOnce 立即执行一次
func (r *ReportScheduler) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, reportTimeout)
	defer cancel()

	stats, err := SendReport(ctx, r.source, r.mailer, r.cfg.Period, r.cfg.Recipients)
	if err != nil {
		return err
	}
	log.Printf("财务报表已发送给 %d 位收件人，净利润 %.2f", len(r.cfg.Recipients), stats.NetProfit)
	return nil
}
