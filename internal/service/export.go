package service

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"scentstore/internal/util"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
)

var reportColumns = []string{"Period", "Orders", "Revenue", "Avg Revenue"}

// RenderPDF renders the report rows as a PDF table
func RenderPDF(title string, rows []ReportRow) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	widths := []float64{60, 30, 50, 50}

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, col := range reportColumns {
		pdf.CellFormat(widths[i], 8, col, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, row := range rows {
		if row.Bucket == "TOTAL" {
			pdf.SetFont("Arial", "B", 10)
		}
		pdf.CellFormat(widths[0], 7, row.Bucket, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, strconv.Itoa(row.OrderCount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, util.FormatRupiah(row.Revenue), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, util.FormatRupiah(row.AvgRevenue), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderXLSX renders the report rows as a spreadsheet
func RenderXLSX(title string, rows []ReportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sales Report"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}

	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	for i, col := range reportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return nil, fmt.Errorf("render xlsx: %w", err)
		}
	}

	for r, row := range rows {
		values := []interface{}{row.Bucket, row.OrderCount, row.Revenue, row.AvgRevenue}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+4)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("render xlsx: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"rupiah": util.FormatRupiah,
}).Parse(`<table>
<caption>{{.Title}}</caption>
<thead><tr><th>Period</th><th>Orders</th><th>Revenue</th><th>Avg Revenue</th></tr></thead>
<tbody>
{{- range .Rows}}
<tr><td>{{.Bucket}}</td><td>{{.OrderCount}}</td><td>{{rupiah .Revenue}}</td><td>{{rupiah .AvgRevenue}}</td></tr>
{{- end}}
</tbody>
</table>
`))

// RenderHTML renders the report rows as an HTML table fragment
func RenderHTML(title string, rows []ReportRow) ([]byte, error) {
	var buf bytes.Buffer
	err := reportTemplate.Execute(&buf, struct {
		Title string
		Rows  []ReportRow
	}{Title: title, Rows: rows})
	if err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}
