package api

import (
	"autoservice/service"

	"github.com/gin-gonic/gin"
)

// CashFlowHandler 收银台处理器
type CashFlowHandler struct {
	store *service.Store
}

// NewCashFlowHandler 创建收银台处理器
func NewCashFlowHandler(store *service.Store) *CashFlowHandler {
	return &CashFlowHandler{store: store}
}

type CreateCashFlowRequest struct {
	TransactionType string  `json:"transaction_type" binding:"required,txtype" example:"expense"`
	Category        string  `json:"category" binding:"required,max=50" example:"rent"`
	Amount          float64 `json:"amount" binding:"required,gt=0" example:"30000"`
	Description     string  `json:"description" binding:"omitempty,max=255" example:"Аренда за март"`
	OrderID         *uint   `json:"order_id"`
	Date            string  `json:"date" example:"2024-03-15 10:00:00"`
}

type CashFlowListRequest struct {
	StartTime       string `form:"start_time" example:"2024-03-01"`
	EndTime         string `form:"end_time" example:"2024-03-31"`
	TransactionType string `form:"type" binding:"omitempty,txtype"`
	OrderID         *uint  `form:"order_id"`
}

// PeriodRequest 统计周期，未知取值按最近 30 天统计
type PeriodRequest struct {
	Period string `form:"period" example:"month"`
}

// List 流水列表
// @Summary 流水列表
// @Description 按时间范围、收支方向、工单筛选，最新在前
// @Tags 收银台
// @Produce json
// @Param start_time query string false "开始时间 (2024-03-01)"
// @Param end_time query string false "结束时间 (2024-03-31)"
// @Param type query string false "income / expense"
// @Param order_id query int false "工单ID"
// @Success 200 {object} Response{data=ListResponse{list=[]models.CashFlowEntry}} "获取成功"
// @Router /api/cash [get]
func (h *CashFlowHandler) List(c *gin.Context) {
	var req CashFlowListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	filter := service.CashFlowFilter{
		TransactionType: req.TransactionType,
		OrderID:         req.OrderID,
	}
	start, err := parseOptionalTime(req.StartTime)
	if err != nil {
		BadRequest(c, "开始"+err.Error())
		return
	}
	filter.Start = start
	end, err := parseOptionalTime(req.EndTime)
	if err != nil {
		BadRequest(c, "结束"+err.Error())
		return
	}
	if end != nil {
		e := endOfDay(req.EndTime, *end)
		filter.End = &e
	}

	entries, err := h.store.ListCashFlow(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "查询流水失败")
		return
	}
	Success(c, ListResponse{Total: len(entries), List: entries})
}

// Create 手工记账
// @Summary 手工记账
// @Tags 收银台
// @Accept json
// @Produce json
// @Param request body CreateCashFlowRequest true "流水信息"
// @Success 200 {object} Response{data=models.CashFlowEntry} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "工单不存在"
// @Router /api/cash [post]
func (h *CashFlowHandler) Create(c *gin.Context) {
	var req CreateCashFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	date, err := parseOptionalTime(req.Date)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	entry, err := h.store.AddCashFlow(c.Request.Context(), service.CashFlowInput{
		TransactionType: req.TransactionType,
		Category:        req.Category,
		Amount:          req.Amount,
		Description:     req.Description,
		OrderID:         req.OrderID,
		Date:            date,
	})
	if err != nil {
		respondError(c, err, "记账失败")
		return
	}
	SuccessWithMessage(c, "创建成功", entry)
}

// Delete 删除流水
// @Summary 删除流水
// @Tags 收银台
// @Produce json
// @Param id path int true "流水ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/cash/{id} [delete]
func (h *CashFlowHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteCashFlow(c.Request.Context(), id); err != nil {
		respondError(c, err, "删除流水失败")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}

// Stats 周期财务统计
// @Summary 周期财务统计
// @Description day 今天；week 本周；month 本月；year 今年；为空时取最近 30 天
// @Tags 收银台
// @Produce json
// @Param period query string false "day / week / month / year"
// @Success 200 {object} Response{data=service.FinancialStats} "获取成功"
// @Router /api/cash/stats [get]
func (h *CashFlowHandler) Stats(c *gin.Context) {
	var req PeriodRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	stats, err := h.store.FinancialStats(c.Request.Context(), req.Period)
	if err != nil {
		respondError(c, err, "统计失败")
		return
	}
	Success(c, stats)
}

// Balance 总余额
// @Summary 总余额
// @Description 全部收入减全部支出
// @Tags 收银台
// @Produce json
// @Success 200 {object} Response{data=map[string]float64} "获取成功"
// @Router /api/cash/balance [get]
func (h *CashFlowHandler) Balance(c *gin.Context) {
	balance, err := h.store.TotalBalance(c.Request.Context())
	if err != nil {
		respondError(c, err, "统计余额失败")
		return
	}
	Success(c, gin.H{"balance": balance})
}
