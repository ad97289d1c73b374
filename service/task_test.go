package service

import (
	"context"
	"testing"
	"time"

	"autoservice/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTask(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, TaskInput{Title: "Заказать масло"})
	require.NoError(t, err)
	assert.Equal(t, models.TaskPriorityMedium, task.Priority)
	assert.Equal(t, models.TaskStatusPending, task.Status)
	assert.Nil(t, task.CompletedAt)

	_, err = s.CreateTask(ctx, TaskInput{Title: " "})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.CreateTask(ctx, TaskInput{Title: "x", Priority: "urgent"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListTasks_Ordering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	soon := time.Date(2024, 3, 16, 0, 0, 0, 0, time.Local)
	later := time.Date(2024, 3, 20, 0, 0, 0, 0, time.Local)

	inputs := []TaskInput{
		{Title: "low", Priority: models.TaskPriorityLow},
		{Title: "high-later", Priority: models.TaskPriorityHigh, DueDate: &later},
		{Title: "medium", Priority: models.TaskPriorityMedium},
		{Title: "high-soon", Priority: models.TaskPriorityHigh, DueDate: &soon},
		{Title: "high-no-date", Priority: models.TaskPriorityHigh},
	}
	for _, in := range inputs {
		_, err := s.CreateTask(ctx, in)
		require.NoError(t, err)
	}

	tasks, err := s.ListTasks(ctx, "")
	require.NoError(t, err)
	var titles []string
	for _, task := range tasks {
		titles = append(titles, task.Title)
	}
	assert.Equal(t, []string{"high-soon", "high-later", "high-no-date", "medium", "low"}, titles)
}

func TestUpdateTask_CompletionStamp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	task, err := s.CreateTask(ctx, TaskInput{Title: "Позвонить клиенту"})
	require.NoError(t, err)

	updated, err := s.UpdateTask(ctx, task.ID, TaskPatch{Status: strPtr(models.TaskStatusCompleted)})
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedAt)
	assert.True(t, updated.CompletedAt.Equal(testNow))

	done, err := s.ListTasks(ctx, models.TaskStatusCompleted)
	require.NoError(t, err)
	assert.Len(t, done, 1)

	updated, err = s.UpdateTask(ctx, task.ID, TaskPatch{Status: strPtr(models.TaskStatusInProgress)})
	require.NoError(t, err)
	assert.Nil(t, updated.CompletedAt)

	updated, err = s.UpdateTask(ctx, task.ID, TaskPatch{Title: strPtr("Перезвонить"), Priority: strPtr(models.TaskPriorityHigh)})
	require.NoError(t, err)
	assert.Equal(t, "Перезвонить", updated.Title)
	assert.Equal(t, models.TaskPriorityHigh, updated.Priority)
	assert.Equal(t, models.TaskStatusInProgress, updated.Status)

	_, err = s.UpdateTask(ctx, task.ID, TaskPatch{Status: strPtr("archived")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.UpdateTask(ctx, 999, TaskPatch{Title: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteTask(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	task, err := s.CreateTask(ctx, TaskInput{Title: "x"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteTask(ctx, task.ID))
	assert.ErrorIs(t, s.DeleteTask(ctx, task.ID), ErrNotFound)
	_, err = s.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
