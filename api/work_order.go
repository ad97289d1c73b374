package api

import (
	"autoservice/service"

	"github.com/gin-gonic/gin"
)

// WorkOrderHandler 工单处理器
type WorkOrderHandler struct {
	store *service.Store
}

// NewWorkOrderHandler 创建工单处理器
func NewWorkOrderHandler(store *service.Store) *WorkOrderHandler {
	return &WorkOrderHandler{store: store}
}

type CreateWorkOrderRequest struct {
	ClientID    uint                       `json:"client_id" binding:"required" example:"1"`
	EmployeeID  *uint                      `json:"employee_id" example:"2"`
	Description string                     `json:"description" binding:"required" example:"Замена тормозных колодок"`
	OrderNumber string                     `json:"order_number" binding:"omitempty,max=20" example:"240315-001"`
	Works       []service.WorkLineInput    `json:"works"`
	Expenses    []service.ExpenseLineInput `json:"expenses"`
}

type WorkOrderListRequest struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,orderstatus"`
	ClientID *uint  `form:"client_id"`
}

type NextNumberRequest struct {
	Date string `form:"date" binding:"omitempty,len=6,numeric" example:"240315"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,orderstatus" example:"in_progress"`
}

// List 工单列表
// @Summary 工单列表
// @Description 按工单号、客户姓名、手机号搜索，可按状态和客户筛选
// @Tags 工单
// @Produce json
// @Param search query string false "搜索关键字"
// @Param status query string false "状态 new / in_progress / completed"
// @Param client_id query int false "客户ID"
// @Success 200 {object} Response{data=ListResponse{list=[]models.WorkOrder}} "获取成功"
// @Router /api/work-orders [get]
func (h *WorkOrderHandler) List(c *gin.Context) {
	var req WorkOrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	orders, err := h.store.ListWorkOrders(c.Request.Context(), service.WorkOrderFilter{
		Search:   req.Search,
		Status:   req.Status,
		ClientID: req.ClientID,
	})
	if err != nil {
		respondError(c, err, "查询工单失败")
		return
	}
	Success(c, ListResponse{Total: len(orders), List: orders})
}

// Create 新建工单
// @Summary 新建工单
// @Description 工单号为空时按当日序号自动生成，总额按明细计算
// @Tags 工单
// @Accept json
// @Produce json
// @Param request body CreateWorkOrderRequest true "工单信息"
// @Success 200 {object} Response{data=models.WorkOrder} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "客户或员工不存在"
// @Failure 409 {object} Response "工单号已存在"
// @Router /api/work-orders [post]
func (h *WorkOrderHandler) Create(c *gin.Context) {
	var req CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	order, err := h.store.CreateWorkOrder(c.Request.Context(), service.WorkOrderInput{
		ClientID:    req.ClientID,
		EmployeeID:  req.EmployeeID,
		Description: req.Description,
		OrderNumber: req.OrderNumber,
		Works:       req.Works,
		Expenses:    req.Expenses,
	})
	if err != nil {
		respondError(c, err, "创建工单失败")
		return
	}
	SuccessWithMessage(c, "创建成功", order)
}

// NextNumber 预览下一个工单号
// @Summary 预览下一个工单号
// @Tags 工单
// @Produce json
// @Param date query string false "日期前缀 YYMMDD，默认取最近一张工单"
// @Success 200 {object} Response{data=map[string]string} "获取成功"
// @Router /api/work-orders/next-number [get]
func (h *WorkOrderHandler) NextNumber(c *gin.Context) {
	var req NextNumberRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	number, err := h.store.NextOrderNumber(c.Request.Context(), req.Date)
	if err != nil {
		respondError(c, err, "生成工单号失败")
		return
	}
	Success(c, gin.H{"order_number": number})
}

// Get 工单详情
// @Summary 工单详情
// @Description 包含客户、员工、工时项目与配件
// @Tags 工单
// @Produce json
// @Param id path int true "工单ID"
// @Success 200 {object} Response{data=models.WorkOrder} "获取成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/work-orders/{id} [get]
func (h *WorkOrderHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.store.GetWorkOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "查询工单失败")
		return
	}
	Success(c, gin.H{
		"order":  order,
		"totals": service.CalculateOrderTotals(order.Works, order.Expenses),
	})
}

// Update 修改工单
// @Summary 修改工单
// @Description 修改描述或指派员工，employee_id 为 0 取消指派；已完成的工单不可修改
// @Tags 工单
// @Accept json
// @Produce json
// @Param id path int true "工单ID"
// @Param request body service.WorkOrderPatch true "需要修改的字段"
// @Success 200 {object} Response{data=models.WorkOrder} "更新成功"
// @Failure 409 {object} Response "工单已完成"
// @Router /api/work-orders/{id} [put]
func (h *WorkOrderHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var patch service.WorkOrderPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	order, err := h.store.UpdateWorkOrder(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err, "更新工单失败")
		return
	}
	SuccessWithMessage(c, "更新成功", order)
}

// UpdateStatus 修改工单状态
// @Summary 修改工单状态
// @Description 改为 completed 时入账并计提提成；已完成的工单不可再修改状态
// @Tags 工单
// @Accept json
// @Produce json
// @Param id path int true "工单ID"
// @Param request body UpdateStatusRequest true "目标状态"
// @Success 200 {object} Response{data=models.WorkOrder} "更新成功"
// @Failure 409 {object} Response "工单已完成"
// @Router /api/work-orders/{id}/status [put]
func (h *WorkOrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	order, err := h.store.UpdateWorkOrderStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err, "更新工单状态失败")
		return
	}
	SuccessWithMessage(c, "更新成功", order)
}

// Complete 完成工单
// @Summary 完成工单
// @Description 记录工时收入与配件加价收入，为指派的员工计提提成
// @Tags 工单
// @Produce json
// @Param id path int true "工单ID"
// @Success 200 {object} Response{data=service.CompletionResult} "工单已完成"
// @Failure 404 {object} Response "记录不存在"
// @Failure 409 {object} Response "工单已完成"
// @Router /api/work-orders/{id}/complete [post]
func (h *WorkOrderHandler) Complete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	result, err := h.store.CompleteWorkOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "完成工单失败")
		return
	}
	SuccessWithMessage(c, "工单已完成", result)
}

// AddWork 追加工时项目
// @Summary 追加工时项目
// @Tags 工单
// @Accept json
// @Produce json
// @Param id path int true "工单ID"
// @Param request body service.WorkLineInput true "工时项目"
// @Success 200 {object} Response{data=models.OrderWork} "添加成功"
// @Failure 409 {object} Response "工单已完成"
// @Router /api/work-orders/{id}/works [post]
func (h *WorkOrderHandler) AddWork(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.WorkLineInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	work, err := h.store.AddOrderWork(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "添加工时项目失败")
		return
	}
	SuccessWithMessage(c, "添加成功", work)
}

// DeleteWork 删除工时项目
// @Summary 删除工时项目
// @Tags 工单
// @Produce json
// @Param id path int true "工单ID"
// @Param itemId path int true "工时项目ID"
// @Success 200 {object} Response "删除成功"
// @Failure 409 {object} Response "工单已完成"
// @Router /api/work-orders/{id}/works/{itemId} [delete]
func (h *WorkOrderHandler) DeleteWork(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseID(c, "itemId")
	if !ok {
		return
	}
	if err := h.store.DeleteOrderWork(c.Request.Context(), id, itemID); err != nil {
		respondError(c, err, "删除工时项目失败")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}

// AddExpense 追加配件
// @Summary 追加配件
// @Tags 工单
// @Accept json
// @Produce json
// @Param id path int true "工单ID"
// @Param request body service.ExpenseLineInput true "配件"
// @Success 200 {object} Response{data=models.OrderExpense} "添加成功"
// @Failure 409 {object} Response "工单已完成"
// @Router /api/work-orders/{id}/expenses [post]
func (h *WorkOrderHandler) AddExpense(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.ExpenseLineInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	expense, err := h.store.AddOrderExpense(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "添加配件失败")
		return
	}
	SuccessWithMessage(c, "添加成功", expense)
}

// DeleteExpense 删除配件
// @Summary 删除配件
// @Tags 工单
// @Produce json
// @Param id path int true "工单ID"
// @Param itemId path int true "配件ID"
// @Success 200 {object} Response "删除成功"
// @Failure 409 {object} Response "工单已完成"
// @Router /api/work-orders/{id}/expenses/{itemId} [delete]
func (h *WorkOrderHandler) DeleteExpense(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseID(c, "itemId")
	if !ok {
		return
	}
	if err := h.store.DeleteOrderExpense(c.Request.Context(), id, itemID); err != nil {
		respondError(c, err, "删除配件失败")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}

// Delete 删除工单
// @Summary 删除工单
// @Description 明细一并删除，已入账的流水与提成保留
// @Tags 工单
// @Produce json
// @Param id path int true "工单ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/work-orders/{id} [delete]
func (h *WorkOrderHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteWorkOrder(c.Request.Context(), id); err != nil {
		respondError(c, err, "删除工单失败")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}
