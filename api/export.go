package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"smartexpense/models"
	"smartexpense/service"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Expenses"

var exportHeaders = []string{"Date", "Amount", "Category", "Description"}

// ExportHandler 消费记录导出处理器
type ExportHandler struct {
	store *service.ExpenseStore
	stats *service.StatsService
}

// NewExportHandler 创建导出处理器
func NewExportHandler(store *service.ExpenseStore, stats *service.StatsService) *ExportHandler {
	return &ExportHandler{store: store, stats: stats}
}

// Export 按筛选条件导出 CSV 或 XLSX
// @Summary Export expenses
// @Description Flat table dump (Date, Amount, Category, Description) of the filtered list
// @Tags expenses
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv (default) or xlsx"
// @Param category query string false "Category, or all"
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Success 200 {file} file "Export file"
// @Failure 400 {object} ErrorResponse
// @Router /api/expenses/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		BadRequest(c, "Format must be csv or xlsx")
		return
	}

	filter, err := parseExpenseFilter(c.Query("category"), c.Query("startDate"), c.Query("endDate"), h.stats.Location())
	if err != nil {
		RespondError(c, err)
		return
	}
	expenses, err := h.store.Find(c.Request.Context(), filter)
	if err != nil {
		RespondError(c, err)
		return
	}

	filename := "expenses_" + h.stats.Now().Format("2006-01-02") + "." + format
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	if format == "xlsx" {
		h.writeXLSX(c, expenses)
		return
	}
	h.writeCSV(c, expenses)
}

func (h *ExportHandler) writeCSV(c *gin.Context, expenses []models.Expense) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	if err := writer.Write(exportHeaders); err != nil {
		InternalError(c, err)
		return
	}
	for _, e := range expenses {
		row := []string{
			e.Date.In(h.stats.Location()).Format(dateLayout),
			strconv.FormatFloat(e.Amount, 'f', 2, 64),
			e.Category.String(),
			e.Description,
		}
		if err := writer.Write(row); err != nil {
			InternalError(c, err)
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *ExportHandler) writeXLSX(c *gin.Context, expenses []models.Expense) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		InternalError(c, err)
		return
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	dataStyle, _ := f.NewStyle(&excelize.Style{Border: border})
	totalStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 11},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Border: border,
	})

	f.SetColWidth(exportSheet, "A", "A", 14)
	f.SetColWidth(exportSheet, "B", "B", 12)
	f.SetColWidth(exportSheet, "C", "C", 12)
	f.SetColWidth(exportSheet, "D", "D", 40)

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(exportSheet, cell, header)
		f.SetCellStyle(exportSheet, cell, cell, headerStyle)
	}

	var total float64
	for i, e := range expenses {
		row := i + 2
		f.SetCellValue(exportSheet, fmt.Sprintf("A%d", row), e.Date.In(h.stats.Location()).Format(dateLayout))
		f.SetCellValue(exportSheet, fmt.Sprintf("B%d", row), e.Amount)
		f.SetCellValue(exportSheet, fmt.Sprintf("C%d", row), e.Category.String())
		f.SetCellValue(exportSheet, fmt.Sprintf("D%d", row), e.Description)
		f.SetCellStyle(exportSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), dataStyle)
		total += e.Amount
	}

	totalRow := len(expenses) + 2
	f.SetCellValue(exportSheet, fmt.Sprintf("A%d", totalRow), "Total")
	f.SetCellValue(exportSheet, fmt.Sprintf("B%d", totalRow), service.RoundCents(total))
	f.SetCellValue(exportSheet, fmt.Sprintf("C%d", totalRow), fmt.Sprintf("%d records", len(expenses)))
	f.MergeCell(exportSheet, fmt.Sprintf("C%d", totalRow), fmt.Sprintf("D%d", totalRow))
	f.SetCellStyle(exportSheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("D%d", totalRow), totalStyle)

	buf, err := f.WriteToBuffer()
	if err != nil {
		InternalError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
