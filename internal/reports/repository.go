package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"paycall_backend/platform/apperr"
)

// DailyReport is the aggregate row for one calendar date.
type DailyReport struct {
	ID         uuid.UUID `json:"id"`
	ReportDate time.Time `json:"reportDate"`

	TotalCalls      int `json:"totalCalls"`
	SuccessfulCalls int `json:"successfulCalls"`
	FailedCalls     int `json:"failedCalls"`
	NoAnswerCalls   int `json:"noAnswerCalls"`

	PaymentsPromised int `json:"paymentsPromised"`
	InvoicesResent   int `json:"invoicesResent"`
	DisputesRaised   int `json:"disputesRaised"`

	TotalCost float64 `json:"totalCost"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DailyDelta is one increment applied to a date's aggregates.
type DailyDelta struct {
	TotalCalls       int
	SuccessfulCalls  int
	FailedCalls      int
	NoAnswerCalls    int
	PaymentsPromised int
	InvoicesResent   int
	DisputesRaised   int
	Cost             float64
}

// PendingBucket is one ageing category of unpaid invoices.
type PendingBucket struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// PendingSummary aggregates unpaid invoices by days overdue.
type PendingSummary struct {
	TotalInvoices int                      `json:"totalPendingInvoices"`
	TotalAmount   float64                  `json:"totalAmountPending"`
	Categories    map[string]PendingBucket `json:"categories"`
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ApplyDelta upserts the date's aggregate row and adds the delta to it.
func (r *Repository) ApplyDelta(ctx context.Context, date time.Time, delta DailyDelta) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO daily_reports (
			report_date, total_calls, successful_calls, failed_calls, no_answer_calls,
			payments_promised, invoices_resent, disputes_raised, total_cost
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (report_date) DO UPDATE SET
			total_calls = daily_reports.total_calls + EXCLUDED.total_calls,
			successful_calls = daily_reports.successful_calls + EXCLUDED.successful_calls,
			failed_calls = daily_reports.failed_calls + EXCLUDED.failed_calls,
			no_answer_calls = daily_reports.no_answer_calls + EXCLUDED.no_answer_calls,
			payments_promised = daily_reports.payments_promised + EXCLUDED.payments_promised,
			invoices_resent = daily_reports.invoices_resent + EXCLUDED.invoices_resent,
			disputes_raised = daily_reports.disputes_raised + EXCLUDED.disputes_raised,
			total_cost = daily_reports.total_cost + EXCLUDED.total_cost,
			updated_at = NOW()
	`, date.Format("2006-01-02"),
		delta.TotalCalls, delta.SuccessfulCalls, delta.FailedCalls, delta.NoAnswerCalls,
		delta.PaymentsPromised, delta.InvoicesResent, delta.DisputesRaised, delta.Cost,
	)
	if err != nil {
		return fmt.Errorf("applying daily report delta: %w", err)
	}
	return nil
}

func (r *Repository) GetDailyReport(ctx context.Context, date time.Time) (DailyReport, error) {
	var report DailyReport
	err := r.pool.QueryRow(ctx, `
		SELECT id, report_date, total_calls, successful_calls, failed_calls,
			no_answer_calls, payments_promised, invoices_resent, disputes_raised,
			total_cost, created_at, updated_at
		FROM daily_reports
		WHERE report_date = $1
	`, date.Format("2006-01-02")).Scan(
		&report.ID, &report.ReportDate, &report.TotalCalls, &report.SuccessfulCalls,
		&report.FailedCalls, &report.NoAnswerCalls, &report.PaymentsPromised,
		&report.InvoicesResent, &report.DisputesRaised, &report.TotalCost,
		&report.CreatedAt, &report.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return DailyReport{}, apperr.NotFound("no report for that date")
	}
	if err != nil {
		return DailyReport{}, fmt.Errorf("fetching daily report: %w", err)
	}
	return report, nil
}

func (r *Repository) GetDailyReportRange(ctx context.Context, from, to time.Time) ([]DailyReport, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, report_date, total_calls, successful_calls, failed_calls,
			no_answer_calls, payments_promised, invoices_resent, disputes_raised,
			total_cost, created_at, updated_at
		FROM daily_reports
		WHERE report_date BETWEEN $1 AND $2
		ORDER BY report_date ASC
	`, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("fetching report range: %w", err)
	}
	defer rows.Close()

	reports := make([]DailyReport, 0)
	for rows.Next() {
		var report DailyReport
		if err := rows.Scan(
			&report.ID, &report.ReportDate, &report.TotalCalls, &report.SuccessfulCalls,
			&report.FailedCalls, &report.NoAnswerCalls, &report.PaymentsPromised,
			&report.InvoicesResent, &report.DisputesRaised, &report.TotalCost,
			&report.CreatedAt, &report.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// GetPendingSummary buckets unpaid invoices by how far past due they are.
func (r *Repository) GetPendingSummary(ctx context.Context) (PendingSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			CASE
				WHEN due_date IS NULL OR CURRENT_DATE - due_date <= 7 THEN '0-7_days'
				WHEN CURRENT_DATE - due_date <= 15 THEN '8-15_days'
				WHEN CURRENT_DATE - due_date <= 30 THEN '16-30_days'
				ELSE '30+_days'
			END AS bucket,
			COUNT(*),
			COALESCE(SUM(amount_due), 0)
		FROM invoices
		WHERE payment_status IN ('pending', 'overdue')
		GROUP BY bucket
	`)
	if err != nil {
		return PendingSummary{}, fmt.Errorf("fetching pending summary: %w", err)
	}
	defer rows.Close()

	summary := PendingSummary{Categories: map[string]PendingBucket{
		"0-7_days":   {},
		"8-15_days":  {},
		"16-30_days": {},
		"30+_days":   {},
	}}
	for rows.Next() {
		var bucket string
		var entry PendingBucket
		if err := rows.Scan(&bucket, &entry.Count, &entry.Amount); err != nil {
			return PendingSummary{}, fmt.Errorf("scanning pending bucket: %w", err)
		}
		summary.Categories[bucket] = entry
		summary.TotalInvoices += entry.Count
		summary.TotalAmount += entry.Amount
	}
	return summary, rows.Err()
}
