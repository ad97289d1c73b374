package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"autoservice/config"
	"autoservice/database"
	"autoservice/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
}

// setupTestStore 每个测试使用独立的内存 sqlite 库
func setupTestStore(t *testing.T) *service.Store {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(&config.DatabaseConfig{
		Driver:   "sqlite",
		Path:     "file:api_" + name + "?mode=memory&cache=shared",
		LogLevel: "silent",
	})
	require.NoError(t, err)

	store := service.NewStore(db)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// setupMockStore 基于 sqlmock 的 mysql 连接，用于模拟数据库故障
func setupMockStore(t *testing.T) (sqlmock.Sqlmock, *service.Store) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return mock, service.NewStore(gormDB)
}

func newTestRouter(store *service.Store) *gin.Engine {
	r := gin.New()

	clients := NewClientHandler(store)
	r.GET("/clients", clients.List)
	r.POST("/clients", clients.Create)
	r.GET("/clients/:id", clients.Get)
	r.PUT("/clients/:id", clients.Update)
	r.DELETE("/clients/:id", clients.Delete)

	orders := NewWorkOrderHandler(store)
	r.GET("/work-orders", orders.List)
	r.POST("/work-orders", orders.Create)
	r.GET("/work-orders/:id", orders.Get)
	r.PUT("/work-orders/:id/status", orders.UpdateStatus)
	r.POST("/work-orders/:id/complete", orders.Complete)
	r.POST("/work-orders/:id/works", orders.AddWork)

	employees := NewEmployeeHandler(store)
	r.POST("/employees", employees.Create)
	r.GET("/employees/:id/balance", employees.Balance)
	r.POST("/employees/:id/pay", employees.Pay)

	settings := NewSettingHandler(store)
	r.GET("/settings", settings.List)
	r.POST("/settings/bulk", settings.Bulk)

	cash := NewCashFlowHandler(store)
	r.POST("/cash", cash.Create)
	r.GET("/cash/balance", cash.Balance)

	export := NewExportHandler(store)
	r.GET("/cash/export/csv", export.ExportCSV)
	r.GET("/cash/export/excel", export.ExportExcel)

	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

// dataField 取出响应 data 中的字段
func dataField(t *testing.T, resp map[string]interface{}, key string) interface{} {
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "响应缺少 data: %v", resp)
	return data[key]
}
