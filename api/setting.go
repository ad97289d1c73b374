package api

import (
	"autoservice/service"

	"github.com/gin-gonic/gin"
)

// SettingHandler 系统设置处理器
type SettingHandler struct {
	store *service.Store
}

// NewSettingHandler 创建设置处理器
func NewSettingHandler(store *service.Store) *SettingHandler {
	return &SettingHandler{store: store}
}

type UpsertSettingRequest struct {
	Key   string `json:"key" binding:"required,max=100" example:"tax_rate"`
	Value string `json:"value" example:"20"`
}

type BulkSettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required"`
}

// List 全部设置
// @Summary 全部设置
// @Description 按分组返回：分组 -> 键 -> 值
// @Tags 设置
// @Produce json
// @Success 200 {object} Response{data=map[string]map[string]string} "获取成功"
// @Router /api/settings [get]
func (h *SettingHandler) List(c *gin.Context) {
	settings, err := h.store.AllSettings(c.Request.Context())
	if err != nil {
		respondError(c, err, "读取设置失败")
		return
	}
	Success(c, settings)
}

// Upsert 写入单个设置
// @Summary 写入单个设置
// @Description 已存在的键保留原分组
// @Tags 设置
// @Accept json
// @Produce json
// @Param request body UpsertSettingRequest true "设置项"
// @Success 200 {object} Response{data=models.Setting} "保存成功"
// @Router /api/settings [post]
func (h *SettingHandler) Upsert(c *gin.Context) {
	var req UpsertSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	setting, err := h.store.UpsertSetting(c.Request.Context(), req.Key, req.Value)
	if err != nil {
		respondError(c, err, "保存设置失败")
		return
	}
	SuccessWithMessage(c, "保存成功", setting)
}

// Bulk 批量写入设置
// @Summary 批量写入设置
// @Description 在一个事务中写入，任一失败全部回滚
// @Tags 设置
// @Accept json
// @Produce json
// @Param request body BulkSettingsRequest true "设置项"
// @Success 200 {object} Response{data=map[string]int} "保存成功"
// @Router /api/settings/bulk [post]
func (h *SettingHandler) Bulk(c *gin.Context) {
	var req BulkSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	n, err := h.store.BulkUpsertSettings(c.Request.Context(), req.Settings)
	if err != nil {
		respondError(c, err, "保存设置失败")
		return
	}
	SuccessWithMessage(c, "保存成功", gin.H{"updated": n})
}
