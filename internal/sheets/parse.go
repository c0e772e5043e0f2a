package sheets

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in priority order. Formats seen in client sheets:
// 25-Apr-25, 25-Apr-2025, 25/04/2025, 2025-04-25.
var dateLayouts = []string{
	"2-Jan-06",
	"2-Jan-2006",
	"2/1/2006",
	"2006-01-02",
}

// ParseDate parses a spreadsheet date cell, trying each known layout in
// order. Returns nil for empty or unparsable input rather than an error;
// a bad date degrades the row, it does not fail the batch.
func ParseDate(raw string) *time.Time {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return &parsed
		}
	}

	return nil
}

// ParseAmount parses a currency cell, tolerating currency symbols, thousands
// separators, and stray whitespace ("₹55,696.00", "Rs 55,696", " 55696 ").
// Empty or unparsable input parses to 0.
func ParseAmount(raw string) float64 {
	cleaned := strings.NewReplacer("₹", "", "Rs", "", ",", "", " ", "").Replace(raw)
	cleaned = strings.TrimSpace(cleaned)

	var b strings.Builder
	for _, r := range cleaned {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		return 0
	}

	amount, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return amount
}

// parseCallCount reads the running call-count tracking cell. Anything
// non-numeric counts as zero.
func parseCallCount(raw string) int {
	count, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || count < 0 {
		return 0
	}
	return count
}
