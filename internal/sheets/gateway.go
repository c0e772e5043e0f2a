// Package sheets is the spreadsheet gateway: it reads pending-invoice rows
// from client Google Sheets and writes call-tracking columns back. The
// relational store stays authoritative; everything written here is a
// best-effort projection for business users.
package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"paycall_backend/platform/config"
	"paycall_backend/platform/logger"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Tracking columns J-Q, in order: last call date, call status, promise date,
// next follow-up, truncated summary, running call count, sentiment,
// recording reference.
const (
	trackingFirstCol = "J"
	trackingLastCol  = "Q"
	callCountCol     = "O"

	summaryMaxLen = 200
)

// StatusUpdate carries the call outcome fields written back to one sheet row.
type StatusUpdate struct {
	SheetID            string
	RowNumber          int
	CallMadeOn         time.Time
	CallStatusText     string
	PaymentPromiseDate *time.Time
	NextFollowUpDate   *time.Time
	Summary            string
	Sentiment          string
	RecordingURL       string
}

// Gateway reads and writes client payment sheets through the Sheets API.
// Worksheet titles are cached per spreadsheet id so repeated batch runs and
// webhook write-backs don't re-fetch spreadsheet metadata.
type Gateway struct {
	svc            *sheets.Service
	defaultSheetID string
	layout         Layout
	log            *logger.Logger

	mu     sync.Mutex
	titles map[string]string
}

// NewGateway builds a Gateway from a service-account credentials file.
func NewGateway(ctx context.Context, cfg config.SheetsConfig, log *logger.Logger) (*Gateway, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(cfg.GetSheetsCredentialsFile()),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Gateway{
		svc:            svc,
		defaultSheetID: cfg.GetDefaultSheetID(),
		layout: Layout{
			HeaderRow:  cfg.GetSheetHeaderRow(),
			DateCol:    cfg.GetSheetDateCol(),
			InvoiceCol: cfg.GetSheetInvoiceCol(),
			PendingCol: cfg.GetSheetPendingCol(),
			DueDateCol: cfg.GetSheetDueDateCol(),
		},
		log:    log,
		titles: make(map[string]string),
	}, nil
}

// GetPendingPayments reads all rows with a pending amount from the sheet.
// An empty sheetID targets the configured default sheet.
func (g *Gateway) GetPendingPayments(ctx context.Context, sheetID string) ([]PendingPayment, error) {
	sheetID = g.resolve(sheetID)

	values, err := g.readAll(ctx, sheetID)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheetID, err)
	}

	pending := extractPending(values, g.layout, sheetID)
	g.log.SheetEvent("pending_payments_read", sheetID, len(pending))
	return pending, nil
}

// FindInvoiceRow locates the 1-indexed row holding the given invoice number,
// or 0 when the sheet doesn't carry it.
func (g *Gateway) FindInvoiceRow(ctx context.Context, sheetID, invoiceNumber string) (int, error) {
	sheetID = g.resolve(sheetID)

	values, err := g.readAll(ctx, sheetID)
	if err != nil {
		return 0, fmt.Errorf("read sheet %s: %w", sheetID, err)
	}

	return findInvoiceRow(values, g.layout, invoiceNumber), nil
}

// UpdatePaymentStatus writes the call-tracking columns for one row and bumps
// the running call count. The count is read-then-write; the batch dispatches
// sequentially, so concurrent writers for a single row do not occur in
// practice.
func (g *Gateway) UpdatePaymentStatus(ctx context.Context, update StatusUpdate) error {
	sheetID := g.resolve(update.SheetID)
	if update.RowNumber < 1 {
		return fmt.Errorf("update sheet %s: invalid row %d", sheetID, update.RowNumber)
	}

	title, err := g.worksheetTitle(ctx, sheetID)
	if err != nil {
		return fmt.Errorf("update sheet %s: %w", sheetID, err)
	}

	callCount, err := g.readCallCount(ctx, sheetID, title, update.RowNumber)
	if err != nil {
		g.log.Warn("could not read call count, assuming zero", "sheet_id", sheetID, "row", update.RowNumber, "error", err)
		callCount = 0
	}

	summary := truncateSummary(update.Summary)
	recording := update.RecordingURL
	if recording == "" {
		recording = "See Database"
	}

	rowRange := fmt.Sprintf("%s!%s%d:%s%d", title, trackingFirstCol, update.RowNumber, trackingLastCol, update.RowNumber)
	valueRange := &sheets.ValueRange{
		Range: rowRange,
		Values: [][]interface{}{{
			update.CallMadeOn.Format("2006-01-02 15:04:05"),
			update.CallStatusText,
			formatDate(update.PaymentPromiseDate),
			formatDate(update.NextFollowUpDate),
			summary,
			callCount + 1,
			titleCase(update.Sentiment),
			recording,
		}},
	}

	_, err = g.svc.Spreadsheets.Values.BatchUpdate(sheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "USER_ENTERED",
		Data:             []*sheets.ValueRange{valueRange},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update sheet %s row %d: %w", sheetID, update.RowNumber, err)
	}

	g.log.SheetEvent("tracking_columns_written", sheetID, 1)
	return nil
}

// truncateSummary caps the summary cell at summaryMaxLen characters. Counting
// runes keeps multi-byte text (transcripts are often Hindi) intact.
func truncateSummary(summary string) string {
	runes := []rune(summary)
	if len(runes) <= summaryMaxLen {
		return summary
	}
	return string(runes[:summaryMaxLen])
}

func (g *Gateway) resolve(sheetID string) string {
	if sheetID == "" {
		return g.defaultSheetID
	}
	return sheetID
}

func (g *Gateway) readAll(ctx context.Context, sheetID string) ([][]string, error) {
	title, err := g.worksheetTitle(ctx, sheetID)
	if err != nil {
		return nil, err
	}

	resp, err := g.svc.Spreadsheets.Values.Get(sheetID, title).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	values := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		values[i] = cells
	}
	return values, nil
}

func (g *Gateway) readCallCount(ctx context.Context, sheetID, title string, rowNumber int) (int, error) {
	cellRange := fmt.Sprintf("%s!%s%d", title, callCountCol, rowNumber)
	resp, err := g.svc.Spreadsheets.Values.Get(sheetID, cellRange).Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		return 0, nil
	}
	return parseCallCount(fmt.Sprint(resp.Values[0][0])), nil
}

// worksheetTitle resolves (and caches) the first worksheet's title, needed
// to build A1 ranges.
func (g *Gateway) worksheetTitle(ctx context.Context, sheetID string) (string, error) {
	g.mu.Lock()
	if title, ok := g.titles[sheetID]; ok {
		g.mu.Unlock()
		return title, nil
	}
	g.mu.Unlock()

	spreadsheet, err := g.svc.Spreadsheets.Get(sheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if len(spreadsheet.Sheets) == 0 {
		return "", fmt.Errorf("spreadsheet %s has no worksheets", sheetID)
	}

	title := spreadsheet.Sheets[0].Properties.Title

	g.mu.Lock()
	g.titles[sheetID] = title
	g.mu.Unlock()

	return title, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func titleCase(s string) string {
	if s == "" {
		return "Neutral"
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
