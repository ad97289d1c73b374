package api

import (
	"autoservice/service"

	"github.com/gin-gonic/gin"
)

// EmployeeHandler 员工与工资处理器
type EmployeeHandler struct {
	store *service.Store
}

// NewEmployeeHandler 创建员工处理器
func NewEmployeeHandler(store *service.Store) *EmployeeHandler {
	return &EmployeeHandler{store: store}
}

type CreateEmployeeRequest struct {
	FullName       string  `json:"full_name" binding:"required,max=100" example:"Сергей Механик"`
	Position       string  `json:"position" binding:"omitempty,max=100" example:"механик"`
	CommissionRate float64 `json:"commission_rate" binding:"gte=0,lte=100" example:"10"`
	IsActive       *bool   `json:"is_active"`
	HireDate       string  `json:"hire_date" example:"2024-01-10"`
}

type UpdateEmployeeRequest struct {
	FullName       *string  `json:"full_name" binding:"omitempty,max=100"`
	Position       *string  `json:"position" binding:"omitempty,max=100"`
	CommissionRate *float64 `json:"commission_rate" binding:"omitempty,gte=0,lte=100"`
	IsActive       *bool    `json:"is_active"`
}

type EmployeeListRequest struct {
	Active bool `form:"active"`
}

type PaySalaryRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0" example:"150"`
	Note   string  `json:"note" binding:"omitempty,max=255" example:"аванс"`
}

// List 员工列表
// @Summary 员工列表
// @Tags 员工
// @Produce json
// @Param active query bool false "只返回在职员工"
// @Success 200 {object} Response{data=ListResponse{list=[]models.Employee}} "获取成功"
// @Router /api/employees [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	var req EmployeeListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	employees, err := h.store.ListEmployees(c.Request.Context(), req.Active)
	if err != nil {
		respondError(c, err, "查询员工失败")
		return
	}
	Success(c, ListResponse{Total: len(employees), List: employees})
}

// Create 新建员工
// @Summary 新建员工
// @Description 默认在职，入职日期默认今天
// @Tags 员工
// @Accept json
// @Produce json
// @Param request body CreateEmployeeRequest true "员工信息"
// @Success 200 {object} Response{data=models.Employee} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/employees [post]
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	hireDate, err := parseOptionalTime(req.HireDate)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	employee, err := h.store.CreateEmployee(c.Request.Context(), service.EmployeeInput{
		FullName:       req.FullName,
		Position:       req.Position,
		CommissionRate: req.CommissionRate,
		IsActive:       req.IsActive,
		HireDate:       hireDate,
	})
	if err != nil {
		respondError(c, err, "创建员工失败")
		return
	}
	SuccessWithMessage(c, "创建成功", employee)
}

// Get 员工详情
// @Summary 员工详情
// @Tags 员工
// @Produce json
// @Param id path int true "员工ID"
// @Success 200 {object} Response{data=models.Employee} "获取成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/employees/{id} [get]
func (h *EmployeeHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	employee, err := h.store.GetEmployee(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "查询员工失败")
		return
	}
	Success(c, employee)
}

// Update 修改员工
// @Summary 修改员工
// @Tags 员工
// @Accept json
// @Produce json
// @Param id path int true "员工ID"
// @Param request body UpdateEmployeeRequest true "需要修改的字段"
// @Success 200 {object} Response{data=models.Employee} "更新成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/employees/{id} [put]
func (h *EmployeeHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	employee, err := h.store.UpdateEmployee(c.Request.Context(), id, service.EmployeePatch{
		FullName:       req.FullName,
		Position:       req.Position,
		CommissionRate: req.CommissionRate,
		IsActive:       req.IsActive,
	})
	if err != nil {
		respondError(c, err, "更新员工失败")
		return
	}
	SuccessWithMessage(c, "更新成功", employee)
}

// Delete 删除员工
// @Summary 删除员工
// @Description 提成与发放记录一并删除，工单上的指派置空
// @Tags 员工
// @Produce json
// @Param id path int true "员工ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/employees/{id} [delete]
func (h *EmployeeHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteEmployee(c.Request.Context(), id); err != nil {
		respondError(c, err, "删除员工失败")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}

// Balance 工资台账
// @Summary 工资台账
// @Description 累计提成、已发放、待发放
// @Tags 员工
// @Produce json
// @Param id path int true "员工ID"
// @Success 200 {object} Response{data=service.EmployeeBalance} "获取成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/employees/{id}/balance [get]
func (h *EmployeeHandler) Balance(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	balance, err := h.store.EmployeeBalance(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "查询工资台账失败")
		return
	}
	Success(c, balance)
}

// Salary 提成与发放明细
// @Summary 提成与发放明细
// @Tags 员工
// @Produce json
// @Param id path int true "员工ID"
// @Success 200 {object} Response "获取成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/employees/{id}/salary [get]
func (h *EmployeeHandler) Salary(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	balance, err := h.store.EmployeeBalance(ctx, id)
	if err != nil {
		respondError(c, err, "查询工资台账失败")
		return
	}
	entries, err := h.store.ListSalaryEntries(ctx, id)
	if err != nil {
		respondError(c, err, "查询提成记录失败")
		return
	}
	payments, err := h.store.ListSalaryPayments(ctx, id)
	if err != nil {
		respondError(c, err, "查询发放记录失败")
		return
	}
	Success(c, gin.H{
		"balance":  balance,
		"entries":  entries,
		"payments": payments,
	})
}

// Pay 发放工资
// @Summary 发放工资
// @Description 金额不能超过待发放金额，同时记一笔 salary 支出
// @Tags 员工
// @Accept json
// @Produce json
// @Param id path int true "员工ID"
// @Param request body PaySalaryRequest true "发放信息"
// @Success 200 {object} Response{data=service.SalaryPaymentResult} "发放成功"
// @Failure 400 {object} Response "金额超过待发放金额"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/employees/{id}/pay [post]
func (h *EmployeeHandler) Pay(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req PaySalaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	result, err := h.store.PaySalary(c.Request.Context(), id, req.Amount, req.Note)
	if err != nil {
		respondError(c, err, "发放工资失败")
		return
	}
	SuccessWithMessage(c, "发放成功", result)
}
