package repository

import (
	"time"

	"github.com/google/uuid"

	"paycall_backend/internal/calls/domain"
)

// Client is a debtor reachable at a unique contact number. The sheet id
// records which spreadsheet the client was last seen in.
type Client struct {
	ID                uuid.UUID
	ClientName        string
	CompanyName       string
	ContactNumber     string
	Email             *string
	GoogleSheetID     *string
	PreferredLanguage string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Invoice is one receivable, unique by its external invoice number.
type Invoice struct {
	ID            uuid.UUID
	ClientID      uuid.UUID
	InvoiceNumber string
	AmountDue     float64
	DueDate       *time.Time
	PaymentStatus domain.PaymentStatus
	Remarks       *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CallLog is one dispatched reminder call and, once the end-of-call report
// arrives, its classified outcome.
type CallLog struct {
	ID             uuid.UUID
	InvoiceID      uuid.UUID
	ProviderCallID string
	CallMadeOn     time.Time
	CallDuration   *int
	CallStatus     domain.CallStatus

	Transcript   *string
	Summary      *string
	RecordingURL *string

	PaymentPromised    bool
	PaymentPromiseDate *time.Time
	NeedsInvoiceResend bool
	CustomerDisputed   bool
	DisputeReason      *string
	NextFollowUpDate   *time.Time

	LanguageDetected  *string
	CustomerSentiment *string
	CallOutcome       *string
	Cost              *float64

	CreatedAt time.Time
}

type UpsertClientParams struct {
	ClientName    string
	CompanyName   string
	ContactNumber string
	GoogleSheetID string
}

type UpsertInvoiceParams struct {
	ClientID      uuid.UUID
	InvoiceNumber string
	AmountDue     float64
	DueDate       *time.Time
}

type CreateCallLogParams struct {
	InvoiceID      uuid.UUID
	ProviderCallID string
}

// CallOutcomeParams is the full record written when an end-of-call report
// has been classified. A repeated report overwrites the previous values.
type CallOutcomeParams struct {
	CallStatus   domain.CallStatus
	CallDuration int
	Transcript   string
	Summary      string
	RecordingURL string
	Cost         float64

	PaymentPromised    bool
	PaymentPromiseDate *time.Time
	NeedsInvoiceResend bool
	CustomerDisputed   bool
	DisputeReason      string
	NextFollowUpDate   *time.Time
	LanguageDetected   string
	CustomerSentiment  string
	CallOutcome        string
}

type ListCallLogsParams struct {
	Status *domain.CallStatus
	Limit  int
	Offset int
}
