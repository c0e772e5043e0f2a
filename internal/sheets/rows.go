package sheets

import (
	"strings"
	"time"

	"paycall_backend/platform/phone"
)

// PendingPayment is one unpaid invoice row read from a client sheet, along
// with its physical location for later write-back.
type PendingPayment struct {
	ClientName    string
	CompanyName   string
	ContactNumber string
	InvoiceNumber string
	AmountDue     float64
	DueDate       *time.Time
	RowNumber     int // 1-indexed sheet row
	SheetID       string
}

// Layout describes where payment data lives in a client sheet. Rows and
// columns are 0-indexed; client sheets share a fixed template so the offsets
// come from configuration rather than header sniffing.
type Layout struct {
	HeaderRow  int
	DateCol    int
	InvoiceCol int
	PendingCol int
	DueDateCol int
}

// summaryKeywords mark aggregate rows under the invoice table that must not
// be treated as invoices.
var summaryKeywords = []string{"outstanding", "total", "amount", "contact", "sum"}

func isSummaryCell(value string) bool {
	lowered := strings.ToLower(value)
	for _, keyword := range summaryKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

// extractPending walks the raw cell grid and returns every row that still
// carries a pending amount. Rows that fail to parse are skipped one by one;
// a malformed row never fails the batch.
func extractPending(values [][]string, layout Layout, sheetID string) []PendingPayment {
	if layout.HeaderRow >= len(values) {
		return nil
	}

	clientName := extractClientName(values)
	contactNumber := extractContactNumber(values)

	var pending []PendingPayment
	for idx := layout.HeaderRow + 1; idx < len(values); idx++ {
		row := values[idx]
		if !anyCell(row) {
			continue
		}

		invoiceNumber := strings.TrimSpace(cell(row, layout.InvoiceCol))
		if invoiceNumber == "" || isSummaryCell(invoiceNumber) {
			continue
		}

		amount := ParseAmount(cell(row, layout.PendingCol))
		if amount <= 0 {
			continue
		}

		dueDate := ParseDate(cell(row, layout.DueDateCol))
		if dueDate == nil {
			dueDate = ParseDate(cell(row, layout.DateCol))
		}

		if contactNumber == "" {
			continue
		}

		pending = append(pending, PendingPayment{
			ClientName:    clientName,
			CompanyName:   clientName,
			ContactNumber: contactNumber,
			InvoiceNumber: invoiceNumber,
			AmountDue:     amount,
			DueDate:       dueDate,
			RowNumber:     idx + 1,
			SheetID:       sheetID,
		})
	}

	return pending
}

// extractClientName scans the sheet header block for the client's display
// name. Client sheets carry the name prominently above the invoice table.
func extractClientName(values [][]string) string {
	limit := len(values)
	if limit > 15 {
		limit = 15
	}

	for _, row := range values[:limit] {
		text := strings.TrimSpace(strings.Join(nonEmptyCells(row), " "))
		if text == "" || len(text) < 6 || len(text) >= 100 {
			continue
		}

		upper := strings.ToUpper(text)
		if strings.Contains(upper, "PVT LTD") {
			continue
		}

		lowered := strings.ToLower(text)
		if strings.Contains(lowered, "bill") || strings.Contains(lowered, "details") ||
			strings.Contains(lowered, "pending") || strings.Contains(lowered, "date") ||
			strings.Contains(lowered, "invoice") {
			continue
		}

		return text
	}

	return "Client"
}

// extractContactNumber finds the mobile number in the sheet's contact
// section: first next to a "Mobile No." label, then any dialable cell.
func extractContactNumber(values [][]string) string {
	for rowIdx, row := range values {
		for colIdx, value := range row {
			lowered := strings.ToLower(value)
			if !strings.Contains(lowered, "mobile") || !strings.Contains(lowered, "no") {
				continue
			}

			if candidate := cell(row, colIdx+1); phone.IsDialable(candidate) {
				return phone.NormalizeE164(candidate)
			}
			if rowIdx+1 < len(values) {
				if candidate := cell(values[rowIdx+1], colIdx); phone.IsDialable(candidate) {
					return phone.NormalizeE164(candidate)
				}
			}
		}
	}

	for _, row := range values {
		for _, value := range row {
			if phone.IsDialable(value) {
				return phone.NormalizeE164(value)
			}
		}
	}

	return ""
}

// findInvoiceRow locates the sheet row for an invoice number, scanning data
// rows under the header and stopping at the summary section.
func findInvoiceRow(values [][]string, layout Layout, invoiceNumber string) int {
	for idx := layout.HeaderRow + 1; idx < len(values); idx++ {
		value := strings.TrimSpace(cell(values[idx], layout.InvoiceCol))
		if isSummaryCell(value) {
			break
		}
		if value == invoiceNumber {
			return idx + 1
		}
	}
	return 0
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

func anyCell(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return true
		}
	}
	return false
}

func nonEmptyCells(row []string) []string {
	var cells []string
	for _, value := range row {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			cells = append(cells, trimmed)
		}
	}
	return cells
}
