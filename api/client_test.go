package api

import (
	"errors"
	"fmt"
	"testing"

	"autoservice/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientHandler_Create(t *testing.T) {
	r := newTestRouter(setupTestStore(t))

	body := `{"full_name":"Иван Петров","phone":"+79990000001","car_model":"Lada Vesta","car_year":2019}`
	w, resp := doJSON(t, r, "POST", "/clients", body)
	require.Equal(t, 200, w.Code, w.Body.String())
	assert.Equal(t, "创建成功", resp["message"])
	assert.Equal(t, "+79990000001", dataField(t, resp, "phone"))

	// 手机号重复
	w, resp = doJSON(t, r, "POST", "/clients", body)
	assert.Equal(t, 409, w.Code)
	assert.Equal(t, float64(409), resp["code"])
}

func TestClientHandler_Create_Invalid(t *testing.T) {
	r := newTestRouter(setupTestStore(t))

	tests := []struct {
		name string
		body string
	}{
		{"缺少手机号", `{"full_name":"Иван","car_model":"Lada"}`},
		{"年份越界", `{"full_name":"Иван","phone":"1","car_model":"Lada","car_year":1800}`},
		{"非法JSON", `{"full_name":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := doJSON(t, r, "POST", "/clients", tt.body)
			assert.Equal(t, 400, w.Code)
		})
	}
}

func TestClientHandler_GetUpdateDelete(t *testing.T) {
	r := newTestRouter(setupTestStore(t))

	_, resp := doJSON(t, r, "POST", "/clients", `{"full_name":"Анна","phone":"+79990000002","car_model":"Kia Rio"}`)
	id := int(dataField(t, resp, "id").(float64))
	path := fmt.Sprintf("/clients/%d", id)

	w, resp := doJSON(t, r, "PUT", path, `{"notes":"постоянный клиент"}`)
	require.Equal(t, 200, w.Code, w.Body.String())
	assert.Equal(t, "постоянный клиент", dataField(t, resp, "notes"))
	assert.Equal(t, "Kia Rio", dataField(t, resp, "car_model"))

	w, _ = doJSON(t, r, "DELETE", path, "")
	assert.Equal(t, 200, w.Code)

	w, _ = doJSON(t, r, "GET", path, "")
	assert.Equal(t, 404, w.Code)

	w, _ = doJSON(t, r, "GET", "/clients/abc", "")
	assert.Equal(t, 400, w.Code)
}

func TestClientHandler_List_DatabaseError(t *testing.T) {
	mock, store := setupMockStore(t)

	mock.ExpectQuery("SELECT .* FROM `clients`").
		WillReturnError(errors.New("connection reset"))

	w, resp := doJSON(t, newTestRouter(store), "GET", "/clients", "")
	assert.Equal(t, 500, w.Code)
	assert.Equal(t, float64(500), resp["code"])
	assert.Contains(t, resp["message"], "connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClientHandler_List_DatabaseErrorReleaseMode(t *testing.T) {
	mock, store := setupMockStore(t)
	config.GlobalConfig = &config.Config{Server: config.ServerConfig{Mode: "release"}}
	defer func() { config.GlobalConfig = nil }()

	mock.ExpectQuery("SELECT .* FROM `clients`").
		WillReturnError(errors.New("connection reset"))

	w, resp := doJSON(t, newTestRouter(store), "GET", "/clients", "")
	assert.Equal(t, 500, w.Code)
	// release 模式只返回兜底文案
	assert.Equal(t, "查询客户失败", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClientHandler_Get_NotFoundMock(t *testing.T) {
	mock, store := setupMockStore(t)

	mock.ExpectQuery("SELECT .* FROM `clients`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "phone", "car_model"}))

	w, _ := doJSON(t, newTestRouter(store), "GET", "/clients/42", "")
	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
