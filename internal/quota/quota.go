// Package quota decides whether a scan may run: a small number of free scans
// per calendar day, lifted entirely while a trial or subscription is active.
package quota

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/julianstephens/detoxscan/internal/constants"
	"github.com/julianstephens/detoxscan/internal/logger"
	"github.com/julianstephens/detoxscan/internal/models"
	"github.com/julianstephens/detoxscan/internal/storage"
)

// Gate tracks the daily free-scan counter and the trial flag.
type Gate struct {
	store    storage.Provider
	now      func() time.Time
	loc      *time.Location
	maxFree  int
	trialLen time.Duration
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// WithLocation sets the timezone whose midnight starts a new quota day.
func WithLocation(loc *time.Location) Option {
	return func(g *Gate) {
		if loc != nil {
			g.loc = loc
		}
	}
}

// WithTrialDuration overrides how long a free trial stays active.
func WithTrialDuration(d time.Duration) Option {
	return func(g *Gate) { g.trialLen = d }
}

// New returns a gate over store with the default free limit and trial length.
func New(store storage.Provider, opts ...Option) *Gate {
	g := &Gate{
		store:    store,
		now:      time.Now,
		loc:      time.UTC,
		maxFree:  constants.MaxFreeScans,
		trialLen: constants.TrialDuration,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Status is a snapshot of the gate for display.
type Status struct {
	Subscription models.SubscriptionState
	Remaining    int
	UsedToday    int
	Limit        int
	TrialEndsAt  *time.Time
	TrialExpired bool
}

func (g *Gate) today() string {
	return g.now().In(g.loc).Format(constants.DateFormat)
}

// currentDailyState is the single day-rollover rule shared by the read and
// write paths: a missing or stale record counts as zero scans today.
func currentDailyState(today string, stored models.DailyScanState, found bool) models.DailyScanState {
	if !found || stored.Date != today {
		return models.DailyScanState{Date: today, Count: 0}
	}
	if stored.Count < 0 {
		stored.Count = 0
	}
	return stored
}

// decodeDaily parses a stored counter. An unparsable record is treated as
// absent so a corrupt value cannot lock the user out for good.
func decodeDaily(raw string, found bool) (models.DailyScanState, bool) {
	if !found {
		return models.DailyScanState{}, false
	}
	var state models.DailyScanState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		logger.Warn("Ignoring unreadable daily scan record", "error", err)
		return models.DailyScanState{}, false
	}
	return state, true
}

func (g *Gate) loadSubscription(ctx context.Context) (models.SubscriptionState, error) {
	raw, found, err := g.store.Get(ctx, constants.KeySubscription)
	if err != nil {
		return models.SubscriptionState{}, fmt.Errorf("failed to read subscription: %w", err)
	}
	if !found {
		return models.SubscriptionState{}, nil
	}
	var state models.SubscriptionState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return models.SubscriptionState{}, fmt.Errorf("failed to parse subscription: %w", err)
	}
	return state, nil
}

// SubscriptionStatus returns the effective subscription. It never fails:
// an absent or unreadable record reads as the free tier, and an expired
// trial reads as IsPro=false with its start date kept.
func (g *Gate) SubscriptionStatus(ctx context.Context) models.SubscriptionState {
	state, err := g.loadSubscription(ctx)
	if err != nil {
		logger.Warn("Falling back to free tier", "error", err)
		return models.SubscriptionState{IsPro: false}
	}
	return g.effective(state)
}

func (g *Gate) effective(state models.SubscriptionState) models.SubscriptionState {
	if state.IsPro && !state.ActiveAt(g.now(), g.trialLen) {
		state.IsPro = false
	}
	return state
}

// StartFreeTrial unconditionally grants a trial starting now, replacing any
// previous subscription record.
func (g *Gate) StartFreeTrial(ctx context.Context) error {
	start := g.now().UTC()
	data, err := json.Marshal(models.SubscriptionState{IsPro: true, TrialStartDate: &start})
	if err != nil {
		return err
	}
	if err := g.store.Set(ctx, constants.KeySubscription, string(data)); err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	logger.Info("Free trial started", "ends", start.Add(g.trialLen))
	return nil
}

func (g *Gate) usedToday(ctx context.Context) (int, error) {
	raw, found, err := g.store.Get(ctx, constants.KeyDailyScans)
	if err != nil {
		return 0, fmt.Errorf("failed to read daily scan count: %w", err)
	}
	stored, ok := decodeDaily(raw, found)
	return currentDailyState(g.today(), stored, ok).Count, nil
}

// RemainingScans returns constants.Unlimited while a subscription is active,
// otherwise the free scans left today. It never writes; a stale counter from
// a previous day simply reads as a full quota.
func (g *Gate) RemainingScans(ctx context.Context) (int, error) {
	if g.SubscriptionStatus(ctx).IsPro {
		return constants.Unlimited, nil
	}
	used, err := g.usedToday(ctx)
	if err != nil {
		return 0, err
	}
	return max(0, g.maxFree-used), nil
}

// IncrementScanCount records one scan for today, persisting the day
// rollover if the stored counter belongs to an earlier day.
func (g *Gate) IncrementScanCount(ctx context.Context) error {
	today := g.today()
	err := g.store.Update(ctx, constants.KeyDailyScans, func(raw string, found bool) (string, error) {
		stored, ok := decodeDaily(raw, found)
		state := currentDailyState(today, stored, ok)
		state.Count++
		data, err := json.Marshal(state)
		if err != nil {
			return "", err
		}
		return string(data), nil
	})
	if err != nil {
		return fmt.Errorf("failed to record scan: %w", err)
	}
	return nil
}

// Status reads the subscription and today's count once each. Like
// SubscriptionStatus, an unreadable subscription falls back to the free tier.
func (g *Gate) Status(ctx context.Context) (Status, error) {
	raw, err := g.loadSubscription(ctx)
	if err != nil {
		logger.Warn("Falling back to free tier", "error", err)
		raw = models.SubscriptionState{}
	}
	used, err := g.usedToday(ctx)
	if err != nil {
		return Status{}, err
	}

	st := Status{
		Subscription: g.effective(raw),
		UsedToday:    used,
		Limit:        g.maxFree,
	}
	if end, ok := raw.TrialEndsAt(g.trialLen); ok && raw.IsPro {
		st.TrialEndsAt = &end
		st.TrialExpired = !g.now().Before(end)
	}
	if st.Subscription.IsPro {
		st.Remaining = constants.Unlimited
	} else {
		st.Remaining = max(0, g.maxFree-used)
	}
	return st, nil
}
