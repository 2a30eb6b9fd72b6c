package util

import (
	"fmt"
	"strconv"
	"time"
)

// FormatRupiah renders an amount as Indonesian Rupiah: no decimals,
// dot-separated thousands, "Rp" prefix. 884000 -> "Rp884.000".
func FormatRupiah(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, d)
	}

	if neg {
		return "-Rp" + string(out)
	}
	return "Rp" + string(out)
}

// OrderCode renders the display code for an order,
// e.g. id 25 created 2025-12-10 -> "#ORD-10-12-2025-025".
func OrderCode(orderID int64, createdAt time.Time) string {
	return fmt.Sprintf("#ORD-%s-%03d", createdAt.Format("02-01-2006"), orderID)
}

// ReportFilename builds the export attachment name for a given date
// and extension, e.g. "SALES-REPORT-DATA-10-12-2025.xlsx".
func ReportFilename(date time.Time, ext string) string {
	return fmt.Sprintf("SALES-REPORT-DATA-%s.%s", date.Format("02-01-2006"), ext)
}
