package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport() []ReportRow {
	return []ReportRow{
		{Bucket: "08-12-2025", OrderCount: 1, Revenue: 250000, AvgRevenue: 250000},
		{Bucket: "10-12-2025", OrderCount: 2, Revenue: 1000000, AvgRevenue: 500000},
		{Bucket: "TOTAL", OrderCount: 3, Revenue: 1250000, AvgRevenue: 416667},
	}
}

func TestRenderPDFProducesDocument(t *testing.T) {
	out, err := RenderPDF("Sales Report", sampleReport())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}

func TestRenderXLSXRoundTripsValues(t *testing.T) {
	out, err := RenderXLSX("Sales Report", sampleReport())
	require.NoError(t, err)

	f, err := excelize.OpenReader(strings.NewReader(string(out)))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Sales Report", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Sales Report", title)

	bucket, err := f.GetCellValue("Sales Report", "A5")
	require.NoError(t, err)
	assert.Equal(t, "10-12-2025", bucket)

	revenue, err := f.GetCellValue("Sales Report", "C6")
	require.NoError(t, err)
	assert.Equal(t, "1250000", revenue)
}

func TestRenderHTMLContainsFormattedAmounts(t *testing.T) {
	out, err := RenderHTML("Sales Report", sampleReport())
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "Rp1.000.000")
	assert.Contains(t, html, "Rp416.667")
	assert.Contains(t, html, "<td>TOTAL</td>")
}
