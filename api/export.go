package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"autoservice/config"
	"autoservice/models"
	"autoservice/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 导出处理器
type ExportHandler struct {
	store *service.Store
}

// NewExportHandler 创建导出处理器
func NewExportHandler(store *service.Store) *ExportHandler {
	return &ExportHandler{store: store}
}

var exportHeaders = []string{"ID", "日期", "收支", "类别", "金额", "描述", "工单ID"}

// ledger 导出的流水与汇总
type ledger struct {
	start, end time.Time
	entries    []models.CashFlowEntry
	income     float64
	expenses   float64
	net        float64
}

func (h *ExportHandler) loadLedger(c *gin.Context) (*ledger, bool) {
	var req PeriodRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return nil, false
	}
	start, end := service.PeriodWindow(req.Period, time.Now())

	entries, err := h.store.ListCashFlow(c.Request.Context(), service.CashFlowFilter{Start: &start, End: &end})
	if err != nil {
		respondError(c, err, "查询数据失败")
		return nil, false
	}

	income, expenses := decimal.Zero, decimal.Zero
	for _, e := range entries {
		if e.TransactionType == models.TransactionIncome {
			income = income.Add(decimal.NewFromFloat(e.Amount))
		} else {
			expenses = expenses.Add(decimal.NewFromFloat(e.Amount))
		}
	}
	return &ledger{
		start:    start,
		end:      end,
		entries:  entries,
		income:   income.Round(2).InexactFloat64(),
		expenses: expenses.Round(2).InexactFloat64(),
		net:      income.Sub(expenses).Round(2).InexactFloat64(),
	}, true
}

func (l *ledger) filename(ext string) string {
	return fmt.Sprintf("cash_%s_%s.%s", l.start.Format("20060102"), l.end.Format("20060102"), ext)
}

func entryRow(e models.CashFlowEntry) []string {
	orderID := ""
	if e.OrderID != nil {
		orderID = fmt.Sprintf("%d", *e.OrderID)
	}
	return []string{
		fmt.Sprintf("%d", e.ID),
		e.Date.Format(dateTimeLayout),
		e.TransactionType,
		e.Category,
		fmt.Sprintf("%.2f", e.Amount),
		e.Description,
		orderID,
	}
}

// ExportCSV 导出流水为 CSV
// @Summary 导出流水为 CSV
// @Tags 导出
// @Produce text/csv
// @Param period query string false "day / week / month / year，默认最近 30 天"
// @Success 200 {file} file "CSV 文件"
// @Router /api/cash/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	l, ok := h.loadLedger(c)
	if !ok {
		return
	}

	buf := new(bytes.Buffer)
	// 添加 BOM 以便 Excel 正确识别 UTF-8
	buf.WriteString("\xEF\xBB\xBF")
	writer := csv.NewWriter(buf)

	rows := [][]string{exportHeaders}
	for _, e := range l.entries {
		rows = append(rows, entryRow(e))
	}
	rows = append(rows,
		[]string{"", "", "", "收入合计", fmt.Sprintf("%.2f", l.income), "", ""},
		[]string{"", "", "", "支出合计", fmt.Sprintf("%.2f", l.expenses), "", ""},
		[]string{"", "", "", "净利润", fmt.Sprintf("%.2f", l.net), "", ""},
	)
	if err := writer.WriteAll(rows); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", l.filename("csv")))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportExcel 导出流水为 Excel
// @Summary 导出流水为 Excel
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param period query string false "day / week / month / year，默认最近 30 天"
// @Success 200 {file} file "Excel 文件"
// @Router /api/cash/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	l, ok := h.loadLedger(c)
	if !ok {
		return
	}

	f, err := buildLedgerWorkbook(l)
	if err != nil {
		InternalError(c, config.SafeErrorMessage(err, "生成 Excel 失败"))
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(l.filename("xlsx"))))
	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "生成 Excel 失败")
		return
	}
}

func buildLedgerWorkbook(l *ledger) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := fillLedgerSheet(f, l); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func fillLedgerSheet(f *excelize.File, l *ledger) error {
	sheetName := "流水"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return err
	}
	dataStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return err
	}
	summaryStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return err
	}

	widths := map[string]float64{"A": 8, "B": 20, "C": 10, "D": 15, "E": 14, "F": 36, "G": 10}
	for col, w := range widths {
		if err := f.SetColWidth(sheetName, col, col, w); err != nil {
			return err
		}
	}

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		_ = f.SetCellValue(sheetName, cell, header)
	}
	_ = f.SetCellStyle(sheetName, "A1", "G1", headerStyle)

	for i, e := range l.entries {
		row := i + 2
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), e.ID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), e.Date.Format(dateTimeLayout))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), e.TransactionType)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), e.Category)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), e.Amount)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), e.Description)
		if e.OrderID != nil {
			_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), *e.OrderID)
		}
		_ = f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("G%d", row), dataStyle)
	}

	summary := []struct {
		label string
		value float64
	}{
		{"收入合计", l.income},
		{"支出合计", l.expenses},
		{"净利润", l.net},
	}
	for i, s := range summary {
		row := len(l.entries) + 2 + i
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), s.label)
		_ = f.MergeCell(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), s.value)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), fmt.Sprintf("共 %d 条记录", len(l.entries)))
		_ = f.MergeCell(sheetName, fmt.Sprintf("F%d", row), fmt.Sprintf("G%d", row))
		_ = f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("G%d", row), summaryStyle)
	}
	return nil
}
