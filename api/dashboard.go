package api

import (
	"autoservice/config"
	"autoservice/jobs"
	"autoservice/service"

	"github.com/gin-gonic/gin"
)

// DashboardHandler 首页与报表处理器
type DashboardHandler struct {
	store  *service.Store
	mailer jobs.ReportMailer
	report config.ReportConfig
}

// NewDashboardHandler 创建首页处理器
func NewDashboardHandler(store *service.Store, mailer jobs.ReportMailer, report config.ReportConfig) *DashboardHandler {
	return &DashboardHandler{store: store, mailer: mailer, report: report}
}

type ReportEmailRequest struct {
	Period     string   `json:"period" binding:"omitempty,period" example:"day"`
	Recipients []string `json:"recipients" binding:"omitempty,dive,email" example:"owner@example.com"`
}

// Dashboard 首页概览
// @Summary 首页概览
// @Description 客户数、各状态工单数、营业额、任务数、余额与周期收支；period 为空时读取 dashboard_period 设置
// @Tags 首页
// @Produce json
// @Param period query string false "day / week / month / year"
// @Success 200 {object} Response{data=service.DashboardStats} "获取成功"
// @Router /api/dashboard [get]
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	var req PeriodRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	stats, err := h.store.DashboardStats(c.Request.Context(), req.Period)
	if err != nil {
		respondError(c, err, "统计失败")
		return
	}
	Success(c, stats)
}

// SendReport 立即发送财务报表邮件
// @Summary 发送财务报表邮件
// @Description 未指定时使用配置中的周期与收件人
// @Tags 首页
// @Accept json
// @Produce json
// @Param request body ReportEmailRequest false "周期与收件人"
// @Success 200 {object} Response{data=service.FinancialStats} "发送成功"
// @Failure 400 {object} Response "未配置收件人"
// @Failure 500 {object} Response "邮件服务未启用或发送失败"
// @Router /api/reports/email [post]
func (h *DashboardHandler) SendReport(c *gin.Context) {
	var req ReportEmailRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, "参数错误: "+err.Error())
			return
		}
	}
	period := req.Period
	if period == "" {
		period = h.report.Period
	}
	recipients := req.Recipients
	if len(recipients) == 0 {
		recipients = h.report.Recipients
	}
	if len(recipients) == 0 {
		BadRequest(c, "未配置报表收件人")
		return
	}

	stats, err := jobs.SendReport(c.Request.Context(), h.store, h.mailer, period, recipients)
	if err != nil {
		respondError(c, err, "发送报表失败")
		return
	}
	SuccessWithMessage(c, "发送成功", stats)
}
