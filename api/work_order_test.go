package api

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkOrderHandler_CompleteFlow(t *testing.T) {
	r := newTestRouter(setupTestStore(t))

	_, resp := doJSON(t, r, "POST", "/clients", `{"full_name":"Олег","phone":"+79990000003","car_model":"Ford Focus"}`)
	clientID := int(dataField(t, resp, "id").(float64))

	_, resp = doJSON(t, r, "POST", "/employees", `{"full_name":"Сергей","commission_rate":10}`)
	employeeID := int(dataField(t, resp, "id").(float64))

	body := fmt.Sprintf(`{
		"client_id": %d,
		"employee_id": %d,
		"description": "Замена колодок",
		"works": [{"name":"Замена колодок","quantity":2,"price":1000}],
		"expenses": [{"name":"Колодки","type":"part","quantity":1,"cost":500,"markup_percent":20}]
	}`, clientID, employeeID)
	w, resp := doJSON(t, r, "POST", "/work-orders", body)
	require.Equal(t, 200, w.Code, w.Body.String())
	orderID := int(dataField(t, resp, "id").(float64))
	assert.Equal(t, 2600.0, dataField(t, resp, "total_amount"))
	assert.NotEmpty(t, dataField(t, resp, "order_number"))

	w, resp = doJSON(t, r, "GET", fmt.Sprintf("/work-orders/%d", orderID), "")
	require.Equal(t, 200, w.Code)
	totals := dataField(t, resp, "totals").(map[string]interface{})
	assert.Equal(t, 2000.0, totals["works_total"])
	assert.Equal(t, 100.0, totals["markup_total"])

	completePath := fmt.Sprintf("/work-orders/%d/complete", orderID)
	w, resp = doJSON(t, r, "POST", completePath, "")
	require.Equal(t, 200, w.Code, w.Body.String())
	assert.Equal(t, 200.0, dataField(t, resp, "salary_amount"))

	// 重复完成
	w, _ = doJSON(t, r, "POST", completePath, "")
	assert.Equal(t, 409, w.Code)

	// 已完成的工单不能追加项目
	w, _ = doJSON(t, r, "POST", fmt.Sprintf("/work-orders/%d/works", orderID), `{"name":"Диагностика","quantity":1,"price":500}`)
	assert.Equal(t, 409, w.Code)

	w, resp = doJSON(t, r, "GET", "/cash/balance", "")
	require.Equal(t, 200, w.Code)
	assert.Equal(t, 2100.0, dataField(t, resp, "balance"))
}

func TestWorkOrderHandler_Create_Invalid(t *testing.T) {
	r := newTestRouter(setupTestStore(t))

	// 客户不存在
	w, _ := doJSON(t, r, "POST", "/work-orders", `{"client_id":99,"description":"ТО"}`)
	assert.Equal(t, 404, w.Code)

	// 缺少描述
	w, _ = doJSON(t, r, "POST", "/work-orders", `{"client_id":1}`)
	assert.Equal(t, 400, w.Code)

	w, _ = doJSON(t, r, "POST", "/work-orders/99/complete", "")
	assert.Equal(t, 404, w.Code)
}

func TestWorkOrderHandler_UpdateStatus(t *testing.T) {
	r := newTestRouter(setupTestStore(t))

	_, resp := doJSON(t, r, "POST", "/clients", `{"full_name":"Олег","phone":"+79990000004","car_model":"Ford Focus"}`)
	clientID := int(dataField(t, resp, "id").(float64))
	_, resp = doJSON(t, r, "POST", "/work-orders", fmt.Sprintf(`{"client_id":%d,"description":"ТО"}`, clientID))
	path := fmt.Sprintf("/work-orders/%d/status", int(dataField(t, resp, "id").(float64)))

	w, resp := doJSON(t, r, "PUT", path, `{"status":"in_progress"}`)
	require.Equal(t, 200, w.Code, w.Body.String())
	assert.Equal(t, "in_progress", dataField(t, resp, "status"))

	w, _ = doJSON(t, r, "PUT", path, `{"status":"archived"}`)
	assert.Equal(t, 400, w.Code)
}

func TestWorkOrderHandler_List_ByClient(t *testing.T) {
	r := newTestRouter(setupTestStore(t))

	var clientIDs []int
	for _, phone := range []string{"+79990000011", "+79990000012"} {
		_, resp := doJSON(t, r, "POST", "/clients", fmt.Sprintf(`{"full_name":"Олег","phone":"%s","car_model":"Ford Focus"}`, phone))
		clientID := int(dataField(t, resp, "id").(float64))
		clientIDs = append(clientIDs, clientID)
		w, _ := doJSON(t, r, "POST", "/work-orders", fmt.Sprintf(`{"client_id":%d,"description":"ТО"}`, clientID))
		require.Equal(t, 200, w.Code, w.Body.String())
	}

	w, resp := doJSON(t, r, "GET", fmt.Sprintf("/work-orders?client_id=%d", clientIDs[1]), "")
	require.Equal(t, 200, w.Code, w.Body.String())
	assert.Equal(t, 1.0, dataField(t, resp, "total"))
	list := dataField(t, resp, "list").([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, float64(clientIDs[1]), list[0].(map[string]interface{})["client_id"])

	w, _ = doJSON(t, r, "GET", "/work-orders?status=archived", "")
	assert.Equal(t, 400, w.Code)
}
