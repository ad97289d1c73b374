package api

import (
	"autoservice/service"

	"github.com/gin-gonic/gin"
)

// TaskHandler 任务处理器
type TaskHandler struct {
	store *service.Store
}

// NewTaskHandler 创建任务处理器
func NewTaskHandler(store *service.Store) *TaskHandler {
	return &TaskHandler{store: store}
}

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required,max=200" example:"Заказать колодки"`
	Description string `json:"description"`
	Priority    string `json:"priority" binding:"omitempty,taskpriority" example:"high"`
	AssignedTo  string `json:"assigned_to" binding:"omitempty,max=100"`
	DueDate     string `json:"due_date" example:"2024-03-20"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=200"`
	Description *string `json:"description"`
	Priority    *string `json:"priority" binding:"omitempty,taskpriority"`
	Status      *string `json:"status" binding:"omitempty,taskstatus"`
	AssignedTo  *string `json:"assigned_to" binding:"omitempty,max=100"`
	DueDate     *string `json:"due_date" example:"2024-03-20"`
}

type TaskListRequest struct {
	Status string `form:"status" binding:"omitempty,taskstatus"`
}

// List 任务列表
// @Summary 任务列表
// @Description 高优先级在前，同优先级按截止日期升序
// @Tags 任务
// @Produce json
// @Param status query string false "状态 pending / in_progress / completed"
// @Success 200 {object} Response{data=ListResponse{list=[]models.Task}} "获取成功"
// @Router /api/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	var req TaskListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	tasks, err := h.store.ListTasks(c.Request.Context(), req.Status)
	if err != nil {
		respondError(c, err, "查询任务失败")
		return
	}
	Success(c, ListResponse{Total: len(tasks), List: tasks})
}

// Create 新建任务
// @Summary 新建任务
// @Tags 任务
// @Accept json
// @Produce json
// @Param request body CreateTaskRequest true "任务信息"
// @Success 200 {object} Response{data=models.Task} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	due, err := parseOptionalTime(req.DueDate)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	task, err := h.store.CreateTask(c.Request.Context(), service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		AssignedTo:  req.AssignedTo,
		DueDate:     due,
	})
	if err != nil {
		respondError(c, err, "创建任务失败")
		return
	}
	SuccessWithMessage(c, "创建成功", task)
}

// Get 任务详情
// @Summary 任务详情
// @Tags 任务
// @Produce json
// @Param id path int true "任务ID"
// @Success 200 {object} Response{data=models.Task} "获取成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/tasks/{id} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	task, err := h.store.GetTask(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "查询任务失败")
		return
	}
	Success(c, task)
}

// Update 修改任务
// @Summary 修改任务
// @Description 状态改为 completed 时记录完成时间
// @Tags 任务
// @Accept json
// @Produce json
// @Param id path int true "任务ID"
// @Param request body UpdateTaskRequest true "需要修改的字段"
// @Success 200 {object} Response{data=models.Task} "更新成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	patch := service.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		AssignedTo:  req.AssignedTo,
	}
	if req.DueDate != nil {
		due, err := parseTime(*req.DueDate)
		if err != nil {
			BadRequest(c, err.Error())
			return
		}
		patch.DueDate = &due
	}
	task, err := h.store.UpdateTask(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err, "更新任务失败")
		return
	}
	SuccessWithMessage(c, "更新成功", task)
}

// Delete 删除任务
// @Summary 删除任务
// @Tags 任务
// @Produce json
// @Param id path int true "任务ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteTask(c.Request.Context(), id); err != nil {
		respondError(c, err, "删除任务失败")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}
