package api

import (
	"autoservice/service"

	"github.com/gin-gonic/gin"
)

// ClientHandler 客户处理器
type ClientHandler struct {
	store *service.Store
}

// NewClientHandler 创建客户处理器
func NewClientHandler(store *service.Store) *ClientHandler {
	return &ClientHandler{store: store}
}

type CreateClientRequest struct {
	FullName  string `json:"full_name" binding:"required" example:"Иван Петров"`
	Phone     string `json:"phone" binding:"required" example:"+79990000001"`
	CarModel  string `json:"car_model" binding:"required" example:"Lada Vesta"`
	CarNumber string `json:"car_number" example:"А123ВС77"`
	CarYear   *int   `json:"car_year" binding:"omitempty,gte=1900,lte=2100" example:"2019"`
	VIN       string `json:"vin" binding:"omitempty,max=17"`
	Notes     string `json:"notes"`
}

// List 客户列表
// @Summary 客户列表
// @Description 按姓名、手机号、车型、车牌模糊搜索，最新创建的在前
// @Tags 客户
// @Produce json
// @Param search query string false "搜索关键字"
// @Success 200 {object} Response{data=ListResponse{list=[]models.Client}} "获取成功"
// @Router /api/clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	clients, err := h.store.ListClients(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err, "查询客户失败")
		return
	}
	Success(c, ListResponse{Total: len(clients), List: clients})
}

// Create 新建客户
// @Summary 新建客户
// @Tags 客户
// @Accept json
// @Produce json
// @Param request body CreateClientRequest true "客户信息"
// @Success 200 {object} Response{data=models.Client} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 409 {object} Response "手机号已存在"
// @Router /api/clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	client, err := h.store.CreateClient(c.Request.Context(), service.ClientInput{
		FullName:  req.FullName,
		Phone:     req.Phone,
		CarModel:  req.CarModel,
		CarNumber: req.CarNumber,
		CarYear:   req.CarYear,
		VIN:       req.VIN,
		Notes:     req.Notes,
	})
	if err != nil {
		respondError(c, err, "创建客户失败")
		return
	}
	SuccessWithMessage(c, "创建成功", client)
}

// Get 客户详情
// @Summary 客户详情
// @Tags 客户
// @Produce json
// @Param id path int true "客户ID"
// @Success 200 {object} Response{data=models.Client} "获取成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/clients/{id} [get]
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	client, err := h.store.GetClient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "查询客户失败")
		return
	}
	Success(c, client)
}

// Update 修改客户
// @Summary 修改客户
// @Description 只修改请求中出现的字段
// @Tags 客户
// @Accept json
// @Produce json
// @Param id path int true "客户ID"
// @Param request body service.ClientPatch true "需要修改的字段"
// @Success 200 {object} Response{data=models.Client} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "记录不存在"
// @Failure 409 {object} Response "手机号已存在"
// @Router /api/clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var patch service.ClientPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	client, err := h.store.UpdateClient(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err, "更新客户失败")
		return
	}
	SuccessWithMessage(c, "更新成功", client)
}

// Delete 删除客户
// @Summary 删除客户
// @Description 客户的工单及明细一并删除，已入账的流水保留
// @Tags 客户
// @Produce json
// @Param id path int true "客户ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteClient(c.Request.Context(), id); err != nil {
		respondError(c, err, "删除客户失败")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}
