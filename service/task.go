package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"autoservice/models"

	"gorm.io/gorm"
)

// TaskInput 新建任务参数
type TaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	AssignedTo  string     `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
}

// TaskPatch 任务可修改字段，nil 表示不修改
type TaskPatch struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority"`
	Status      *string    `json:"status"`
	AssignedTo  *string    `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
}

func validTaskPriority(p string) bool {
	switch p {
	case models.TaskPriorityHigh, models.TaskPriorityMedium, models.TaskPriorityLow:
		return true
	}
	return false
}

func validTaskStatus(st string) bool {
	switch st {
	case models.TaskStatusPending, models.TaskStatusInProgress, models.TaskStatusCompleted:
		return true
	}
	return false
}

// CreateTask 新建任务，优先级默认 medium，状态为 pending
func (s *Store) CreateTask(ctx context.Context, in TaskInput) (*models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, validationError("任务标题不能为空")
	}
	priority := in.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !validTaskPriority(priority) {
		return nil, validationError("未知的优先级: %s", priority)
	}

	task := models.Task{
		Title:       title,
		Description: in.Description,
		Priority:    priority,
		Status:      models.TaskStatusPending,
		AssignedTo:  in.AssignedTo,
		DueDate:     in.DueDate,
	}
	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, fmt.Errorf("创建任务失败: %w", err)
	}
	return &task, nil
}

// GetTask 查询任务
func (s *Store) GetTask(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	if err := s.db.WithContext(ctx).First(&task, id).Error; err != nil {
		if isNotFound(err) {
			return nil, notFound("任务", id)
		}
		return nil, fmt.Errorf("查询任务失败: %w", err)
	}
	return &task, nil
}

// ListTasks 任务列表：高优先级在前，同优先级按截止日期升序（无截止日期排后），再按创建时间倒序
func (s *Store) ListTasks(ctx context.Context, status string) ([]models.Task, error) {
	query := s.db.WithContext(ctx).Model(&models.Task{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var tasks []models.Task
	err := query.
		Order("CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END").
		Order("CASE WHEN due_date IS NULL THEN 1 ELSE 0 END").
		Order("due_date ASC").
		Order("created_at DESC").
		Order("id DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("查询任务列表失败: %w", err)
	}
	return tasks, nil
}

// UpdateTask 修改任务
// 状态改为 completed 时记录完成时间，离开 completed 时清空
func (s *Store) UpdateTask(ctx context.Context, id uint, patch TaskPatch) (*models.Task, error) {
	updates := map[string]any{}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, validationError("任务标题不能为空")
		}
		updates["title"] = title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Priority != nil {
		if !validTaskPriority(*patch.Priority) {
			return nil, validationError("未知的优先级: %s", *patch.Priority)
		}
		updates["priority"] = *patch.Priority
	}
	if patch.AssignedTo != nil {
		updates["assigned_to"] = *patch.AssignedTo
	}
	if patch.DueDate != nil {
		updates["due_date"] = *patch.DueDate
	}
	if patch.Status != nil {
		if !validTaskStatus(*patch.Status) {
			return nil, validationError("未知的任务状态: %s", *patch.Status)
		}
		updates["status"] = *patch.Status
	}
	if len(updates) == 0 {
		return nil, validationError("没有需要更新的字段")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, id).Error; err != nil {
			if isNotFound(err) {
				return notFound("任务", id)
			}
			return fmt.Errorf("查询任务失败: %w", err)
		}
		if patch.Status != nil {
			switch {
			case *patch.Status == models.TaskStatusCompleted && task.Status != models.TaskStatusCompleted:
				updates["completed_at"] = s.now()
			case *patch.Status != models.TaskStatusCompleted:
				updates["completed_at"] = nil
			}
		}
		if err := tx.Model(&task).Updates(updates).Error; err != nil {
			return fmt.Errorf("更新任务失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetTask(ctx, id)
}

// DeleteTask 删除任务
func (s *Store) DeleteTask(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Task{}, id)
	if result.Error != nil {
		return fmt.Errorf("删除任务失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("任务", id)
	}
	return nil
}

// CountTasksByStatus 按状态统计任务数
func (s *Store) CountTasksByStatus(ctx context.Context) (map[string]int64, error) {
	return countByStatus(s.db.WithContext(ctx), &models.Task{}, "status")
}

// countByStatus 按列分组计数
func countByStatus(db *gorm.DB, model any, column string) (map[string]int64, error) {
	var rows []struct {
		Name  string
		Count int64
	}
	if err := db.Model(model).
		Select(column + " AS name, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("分组统计失败: %w", err)
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Name] = r.Count
	}
	return counts, nil
}
