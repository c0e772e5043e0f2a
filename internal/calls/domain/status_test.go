package domain

import "testing"

func TestMapProviderStatusKnownVocabulary(t *testing.T) {
	cases := []struct {
		provider string
		want     CallStatus
	}{
		{"queued", CallStatusInProgress},
		{"ringing", CallStatusInProgress},
		{"in-progress", CallStatusInProgress},
		{"forwarding", CallStatusInProgress},
		{"ended", CallStatusCompleted},
	}

	for _, tc := range cases {
		if got := MapProviderStatus(tc.provider); got != tc.want {
			t.Errorf("MapProviderStatus(%q) = %q, want %q", tc.provider, got, tc.want)
		}
	}
}

func TestMapProviderStatusUnknownDefaultsToInProgress(t *testing.T) {
	for _, provider := range []string{"", "scheduled", "ENDED", "something-new"} {
		if got := MapProviderStatus(provider); got != CallStatusInProgress {
			t.Errorf("MapProviderStatus(%q) = %q, want %q", provider, got, CallStatusInProgress)
		}
	}
}

func TestSheetStatusText(t *testing.T) {
	if got := SheetStatusText("paid"); got != "Payment Made" {
		t.Errorf("SheetStatusText(paid) = %q", got)
	}
	if got := SheetStatusText("nonsense"); got != "Called" {
		t.Errorf("SheetStatusText(nonsense) = %q, want fallback", got)
	}
}
