package reports

import (
	"testing"

	"paycall_backend/internal/events"
)

func TestBuildDelta(t *testing.T) {
	tests := []struct {
		name  string
		event events.CallCompleted
		want  DailyDelta
	}{
		{
			name: "completed call with promise",
			event: events.CallCompleted{
				CallStatus:      "completed",
				PaymentPromised: true,
				Cost:            0.42,
			},
			want: DailyDelta{SuccessfulCalls: 1, PaymentsPromised: 1, Cost: 0.42},
		},
		{
			name:  "failed call",
			event: events.CallCompleted{CallStatus: "failed"},
			want:  DailyDelta{FailedCalls: 1},
		},
		{
			name:  "no answer",
			event: events.CallCompleted{CallStatus: "no_answer"},
			want:  DailyDelta{NoAnswerCalls: 1},
		},
		{
			name:  "voicemail counts as no answer",
			event: events.CallCompleted{CallStatus: "voicemail"},
			want:  DailyDelta{NoAnswerCalls: 1},
		},
		{
			name: "dispute and resend both counted",
			event: events.CallCompleted{
				CallStatus:         "completed",
				NeedsInvoiceResend: true,
				CustomerDisputed:   true,
			},
			want: DailyDelta{SuccessfulCalls: 1, InvoicesResent: 1, DisputesRaised: 1},
		},
		{
			name:  "in progress contributes no status counter",
			event: events.CallCompleted{CallStatus: "in_progress", Cost: 0.1},
			want:  DailyDelta{Cost: 0.1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildDelta(tt.event); got != tt.want {
				t.Errorf("buildDelta() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
