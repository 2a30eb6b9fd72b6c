package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatRupiah(t *testing.T) {
	assert.Equal(t, "Rp884.000", FormatRupiah(884000))
	assert.Equal(t, "Rp0", FormatRupiah(0))
	assert.Equal(t, "Rp999", FormatRupiah(999))
	assert.Equal(t, "Rp1.000", FormatRupiah(1000))
	assert.Equal(t, "Rp12.345.678", FormatRupiah(12345678))
	assert.Equal(t, "Rp1.250.000.000", FormatRupiah(1250000000))
	assert.Equal(t, "-Rp50.000", FormatRupiah(-50000))
}

func TestOrderCode(t *testing.T) {
	created := time.Date(2025, time.December, 10, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "#ORD-10-12-2025-025", OrderCode(25, created))
	assert.Equal(t, "#ORD-10-12-2025-007", OrderCode(7, created))
	assert.Equal(t, "#ORD-10-12-2025-1234", OrderCode(1234, created))
}

func TestReportFilename(t *testing.T) {
	date := time.Date(2025, time.December, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "SALES-REPORT-DATA-10-12-2025.pdf", ReportFilename(date, "pdf"))
	assert.Equal(t, "SALES-REPORT-DATA-10-12-2025.xlsx", ReportFilename(date, "xlsx"))
}
