package models

import "time"

type SubscriptionState struct {
	IsPro          bool       `json:"isPro"`
	TrialStartDate *time.Time `json:"trialStartDate,omitempty"`
}

// TrialEndsAt returns when the trial stops granting unlimited scans. The
// second return value is false for records without a trial start date.
func (s SubscriptionState) TrialEndsAt(trial time.Duration) (time.Time, bool) {
	if s.TrialStartDate == nil {
		return time.Time{}, false
	}
	return s.TrialStartDate.Add(trial), true
}

// ActiveAt reports whether the subscription grants unlimited scans at now.
// A pro record with no trial start date never expires.
func (s SubscriptionState) ActiveAt(now time.Time, trial time.Duration) bool {
	if !s.IsPro {
		return false
	}
	end, isTrial := s.TrialEndsAt(trial)
	if !isTrial {
		return true
	}
	return now.Before(end)
}

type DailyScanState struct {
	Date  string `json:"date"` // YYYY-MM-DD format
	Count int    `json:"count"`
}
