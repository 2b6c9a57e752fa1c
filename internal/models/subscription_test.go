package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSubscriptionState_ActiveAt(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	trial := 72 * time.Hour

	tests := []struct {
		name  string
		state SubscriptionState
		now   time.Time
		want  bool
	}{
		{
			name:  "free tier",
			state: SubscriptionState{},
			now:   start,
			want:  false,
		},
		{
			name:  "trial just started",
			state: SubscriptionState{IsPro: true, TrialStartDate: &start},
			now:   start,
			want:  true,
		},
		{
			name:  "trial on last day",
			state: SubscriptionState{IsPro: true, TrialStartDate: &start},
			now:   start.Add(trial - time.Second),
			want:  true,
		},
		{
			name:  "trial expired",
			state: SubscriptionState{IsPro: true, TrialStartDate: &start},
			now:   start.Add(trial),
			want:  false,
		},
		{
			name:  "pro without trial never expires",
			state: SubscriptionState{IsPro: true},
			now:   start.AddDate(5, 0, 0),
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.ActiveAt(tt.now, trial); got != tt.want {
				t.Errorf("ActiveAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubscriptionState_ReadsMobileRecord(t *testing.T) {
	raw := `{"isPro":true,"trialStartDate":"2026-03-01T12:00:00.000Z"}`

	var state SubscriptionState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		t.Fatalf("failed to parse subscription record: %v", err)
	}
	if !state.IsPro {
		t.Error("expected IsPro to be true")
	}
	if state.TrialStartDate == nil || state.TrialStartDate.Day() != 1 {
		t.Errorf("unexpected trial start date: %v", state.TrialStartDate)
	}
}
