package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"paycall_backend/platform/apperr"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const callLogColumns = `
	id, invoice_id, provider_call_id, call_made_on, call_duration, call_status,
	transcript, summary, recording_url,
	payment_promised, payment_promise_date, needs_invoice_resend,
	customer_disputed, dispute_reason, next_follow_up_date,
	language_detected, customer_sentiment, call_outcome, cost, created_at`

// UpsertClient creates or refreshes a client keyed by contact number.
// Name, company, and sheet id follow the most recent sheet read.
func (r *Repository) UpsertClient(ctx context.Context, params UpsertClientParams) (Client, error) {
	var client Client
	err := r.pool.QueryRow(ctx, `
		INSERT INTO clients (client_name, company_name, contact_number, google_sheet_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (contact_number) DO UPDATE SET
			client_name = EXCLUDED.client_name,
			company_name = EXCLUDED.company_name,
			google_sheet_id = EXCLUDED.google_sheet_id,
			updated_at = NOW()
		RETURNING id, client_name, company_name, contact_number, email,
			google_sheet_id, preferred_language, created_at, updated_at
	`, params.ClientName, params.CompanyName, params.ContactNumber, params.GoogleSheetID).Scan(
		&client.ID, &client.ClientName, &client.CompanyName, &client.ContactNumber,
		&client.Email, &client.GoogleSheetID, &client.PreferredLanguage,
		&client.CreatedAt, &client.UpdatedAt,
	)
	if err != nil {
		return Client{}, fmt.Errorf("upserting client: %w", err)
	}
	return client, nil
}

// UpsertInvoice creates the invoice if its number is new and refreshes the
// amount and due date otherwise. Payment status is never downgraded here;
// an invoice already marked paid stays paid.
func (r *Repository) UpsertInvoice(ctx context.Context, params UpsertInvoiceParams) (Invoice, error) {
	var inv Invoice
	err := r.pool.QueryRow(ctx, `
		INSERT INTO invoices (client_id, invoice_number, amount_due, due_date)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (invoice_number) DO UPDATE SET
			amount_due = EXCLUDED.amount_due,
			due_date = EXCLUDED.due_date,
			updated_at = NOW()
		RETURNING id, client_id, invoice_number, amount_due, due_date,
			payment_status, remarks, created_at, updated_at
	`, params.ClientID, params.InvoiceNumber, params.AmountDue, params.DueDate).Scan(
		&inv.ID, &inv.ClientID, &inv.InvoiceNumber, &inv.AmountDue, &inv.DueDate,
		&inv.PaymentStatus, &inv.Remarks, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return Invoice{}, fmt.Errorf("upserting invoice %s: %w", params.InvoiceNumber, err)
	}
	return inv, nil
}

func (r *Repository) GetClientByID(ctx context.Context, id uuid.UUID) (Client, error) {
	var client Client
	err := r.pool.QueryRow(ctx, `
		SELECT id, client_name, company_name, contact_number, email,
			google_sheet_id, preferred_language, created_at, updated_at
		FROM clients
		WHERE id = $1
	`, id).Scan(
		&client.ID, &client.ClientName, &client.CompanyName, &client.ContactNumber,
		&client.Email, &client.GoogleSheetID, &client.PreferredLanguage,
		&client.CreatedAt, &client.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, apperr.NotFound("client not found")
	}
	if err != nil {
		return Client{}, fmt.Errorf("fetching client: %w", err)
	}
	return client, nil
}

func (r *Repository) GetInvoiceByID(ctx context.Context, id uuid.UUID) (Invoice, error) {
	var inv Invoice
	err := r.pool.QueryRow(ctx, `
		SELECT id, client_id, invoice_number, amount_due, due_date,
			payment_status, remarks, created_at, updated_at
		FROM invoices
		WHERE id = $1
	`, id).Scan(
		&inv.ID, &inv.ClientID, &inv.InvoiceNumber, &inv.AmountDue, &inv.DueDate,
		&inv.PaymentStatus, &inv.Remarks, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, apperr.NotFound("invoice not found")
	}
	if err != nil {
		return Invoice{}, fmt.Errorf("fetching invoice: %w", err)
	}
	return inv, nil
}

func (r *Repository) GetInvoiceByNumber(ctx context.Context, invoiceNumber string) (Invoice, error) {
	var inv Invoice
	err := r.pool.QueryRow(ctx, `
		SELECT id, client_id, invoice_number, amount_due, due_date,
			payment_status, remarks, created_at, updated_at
		FROM invoices
		WHERE invoice_number = $1
	`, invoiceNumber).Scan(
		&inv.ID, &inv.ClientID, &inv.InvoiceNumber, &inv.AmountDue, &inv.DueDate,
		&inv.PaymentStatus, &inv.Remarks, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, apperr.NotFound(fmt.Sprintf("invoice %s not found", invoiceNumber))
	}
	if err != nil {
		return Invoice{}, fmt.Errorf("fetching invoice %s: %w", invoiceNumber, err)
	}
	return inv, nil
}

func (r *Repository) MarkInvoicePaid(ctx context.Context, invoiceID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE invoices
		SET payment_status = 'paid', updated_at = NOW()
		WHERE id = $1
	`, invoiceID)
	if err != nil {
		return fmt.Errorf("marking invoice paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("invoice not found")
	}
	return nil
}

// CreateCallLog records a freshly dispatched call. The provider call id is
// the reconciliation key for every webhook that follows.
func (r *Repository) CreateCallLog(ctx context.Context, params CreateCallLogParams) (CallLog, error) {
	var log CallLog
	err := r.pool.QueryRow(ctx, `
		INSERT INTO call_logs (invoice_id, provider_call_id)
		VALUES ($1, $2)
		RETURNING `+callLogColumns+`
	`, params.InvoiceID, params.ProviderCallID).Scan(scanTargets(&log)...)
	if err != nil {
		return CallLog{}, fmt.Errorf("creating call log: %w", err)
	}
	return log, nil
}

func (r *Repository) GetCallLogByProviderID(ctx context.Context, providerCallID string) (CallLog, error) {
	var log CallLog
	err := r.pool.QueryRow(ctx, `
		SELECT `+callLogColumns+`
		FROM call_logs
		WHERE provider_call_id = $1
	`, providerCallID).Scan(scanTargets(&log)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return CallLog{}, apperr.NotFound("call log not found for provider call id")
	}
	if err != nil {
		return CallLog{}, fmt.Errorf("fetching call log by provider id: %w", err)
	}
	return log, nil
}

func (r *Repository) UpdateCallStatus(ctx context.Context, providerCallID, status string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE call_logs
		SET call_status = $2
		WHERE provider_call_id = $1
	`, providerCallID, status)
	if err != nil {
		return fmt.Errorf("updating call status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("call log not found for provider call id")
	}
	return nil
}

// RecordCallOutcome writes the full end-of-call report. The update is a
// plain overwrite so replayed webhooks converge on the same row state.
func (r *Repository) RecordCallOutcome(ctx context.Context, providerCallID string, params CallOutcomeParams) (CallLog, error) {
	var log CallLog
	err := r.pool.QueryRow(ctx, `
		UPDATE call_logs SET
			call_status = $2,
			call_duration = $3,
			transcript = $4,
			summary = $5,
			recording_url = NULLIF($6, ''),
			cost = $7,
			payment_promised = $8,
			payment_promise_date = $9,
			needs_invoice_resend = $10,
			customer_disputed = $11,
			dispute_reason = NULLIF($12, ''),
			next_follow_up_date = $13,
			language_detected = $14,
			customer_sentiment = $15,
			call_outcome = $16
		WHERE provider_call_id = $1
		RETURNING `+callLogColumns+`
	`, providerCallID,
		params.CallStatus, params.CallDuration, params.Transcript, params.Summary,
		params.RecordingURL, params.Cost,
		params.PaymentPromised, params.PaymentPromiseDate, params.NeedsInvoiceResend,
		params.CustomerDisputed, params.DisputeReason, params.NextFollowUpDate,
		params.LanguageDetected, params.CustomerSentiment, params.CallOutcome,
	).Scan(scanTargets(&log)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return CallLog{}, apperr.NotFound("call log not found for provider call id")
	}
	if err != nil {
		return CallLog{}, fmt.Errorf("recording call outcome: %w", err)
	}
	return log, nil
}

func (r *Repository) GetCallLog(ctx context.Context, id uuid.UUID) (CallLog, error) {
	var log CallLog
	err := r.pool.QueryRow(ctx, `
		SELECT `+callLogColumns+`
		FROM call_logs
		WHERE id = $1
	`, id).Scan(scanTargets(&log)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return CallLog{}, apperr.NotFound("call log not found")
	}
	if err != nil {
		return CallLog{}, fmt.Errorf("fetching call log: %w", err)
	}
	return log, nil
}

func (r *Repository) ListCallLogs(ctx context.Context, params ListCallLogsParams) ([]CallLog, int, error) {
	limit := params.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	where := ""
	args := []any{limit, params.Offset}
	if params.Status != nil {
		where = "WHERE call_status = $3"
		args = append(args, *params.Status)
	}

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total
		FROM call_logs
		%s
		ORDER BY call_made_on DESC
		LIMIT $1 OFFSET $2
	`, callLogColumns, where), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing call logs: %w", err)
	}
	defer rows.Close()

	var total int
	logs := make([]CallLog, 0)
	for rows.Next() {
		var log CallLog
		targets := append(scanTargets(&log), &total)
		if err := rows.Scan(targets...); err != nil {
			return nil, 0, fmt.Errorf("scanning call log: %w", err)
		}
		logs = append(logs, log)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return logs, total, nil
}

func scanTargets(log *CallLog) []any {
	return []any{
		&log.ID, &log.InvoiceID, &log.ProviderCallID, &log.CallMadeOn,
		&log.CallDuration, &log.CallStatus,
		&log.Transcript, &log.Summary, &log.RecordingURL,
		&log.PaymentPromised, &log.PaymentPromiseDate, &log.NeedsInvoiceResend,
		&log.CustomerDisputed, &log.DisputeReason, &log.NextFollowUpDate,
		&log.LanguageDetected, &log.CustomerSentiment, &log.CallOutcome,
		&log.Cost, &log.CreatedAt,
	}
}
