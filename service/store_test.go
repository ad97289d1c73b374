package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"autoservice/config"
	"autoservice/database"
	"autoservice/models"

	"github.com/stretchr/testify/require"
)

// 测试固定时间：2024-03-15（周五）14:30
var testNow = time.Date(2024, 3, 15, 14, 30, 0, 0, time.Local)

// newTestStore 每个测试独立的内存数据库
func newTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(&config.DatabaseConfig{
		Driver:   "sqlite",
		Path:     "file:" + name + "?mode=memory&cache=shared",
		LogLevel: "silent",
	})
	require.NoError(t, err)

	store := NewStore(db)
	store.now = func() time.Time { return testNow }
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func mustClient(t *testing.T, s *Store, phone string) *models.Client {
	t.Helper()
	c, err := s.CreateClient(context.Background(), ClientInput{
		FullName: "Иван Петров",
		Phone:    phone,
		CarModel: "Lada Vesta",
	})
	require.NoError(t, err)
	return c
}

func mustEmployee(t *testing.T, s *Store, rate float64) *models.Employee {
	t.Helper()
	e, err := s.CreateEmployee(context.Background(), EmployeeInput{
		FullName:       "Сергей Механик",
		Position:       "механик",
		CommissionRate: rate,
	})
	require.NoError(t, err)
	return e
}

func uintPtr(v uint) *uint { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool { return &v }
func floatPtr(v float64) *float64 { return &v }
