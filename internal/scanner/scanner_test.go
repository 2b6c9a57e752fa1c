package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/detoxscan/internal/analyzer"
	"github.com/julianstephens/detoxscan/internal/constants"
	"github.com/julianstephens/detoxscan/internal/history"
	"github.com/julianstephens/detoxscan/internal/models"
	"github.com/julianstephens/detoxscan/internal/quota"
	"github.com/julianstephens/detoxscan/internal/storage"
)

type fakeAnalyzer struct {
	result models.AnalysisResult
	err    error
	calls  int
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, image string) (models.AnalysisResult, error) {
	f.calls++
	return f.result, f.err
}

func setupScanner(t *testing.T, a *fakeAnalyzer) (*Scanner, *quota.Gate, *history.Log) {
	t.Helper()
	store := storage.NewMemoryStore()
	now := func() time.Time { return time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC) }
	gate := quota.New(store, quota.WithClock(now))
	log := history.New(store, history.WithClock(now))
	return New(gate, log, a), gate, log
}

func goodResult() models.AnalysisResult {
	return models.AnalysisResult{
		Score:        65,
		Status:       models.StatusModerate,
		Ingredients:  []models.Ingredient{{Name: "Sugar", Status: models.IngredientModerate}},
		Alternatives: []models.Alternative{},
	}
}

func TestScan_SavesAndCounts(t *testing.T) {
	a := &fakeAnalyzer{result: goodResult()}
	s, gate, log := setupScanner(t, a)
	ctx := context.Background()

	out, err := s.Scan(ctx, Request{Image: "AAAA", ImageRef: "/tmp/cereal.jpg"})
	if err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}
	if !out.Saved || out.Item.ImageRef != "/tmp/cereal.jpg" {
		t.Errorf("Scan() outcome = %+v, want saved item", out)
	}
	if out.Remaining != constants.MaxFreeScans-1 {
		t.Errorf("Remaining = %d, want %d", out.Remaining, constants.MaxFreeScans-1)
	}

	remaining, _ := gate.RemainingScans(ctx)
	if remaining != constants.MaxFreeScans-1 {
		t.Errorf("RemainingScans() = %d, want %d", remaining, constants.MaxFreeScans-1)
	}
	if items := log.History(ctx); len(items) != 1 || items[0].ID != out.Item.ID {
		t.Errorf("History() = %+v", items)
	}
}

func TestScan_QuotaExhausted(t *testing.T) {
	a := &fakeAnalyzer{result: goodResult()}
	s, _, log := setupScanner(t, a)
	ctx := context.Background()

	for i := 0; i < constants.MaxFreeScans; i++ {
		if _, err := s.Scan(ctx, Request{Image: "AAAA"}); err != nil {
			t.Fatalf("scan %d failed: %v", i+1, err)
		}
	}

	_, err := s.Scan(ctx, Request{Image: "AAAA"})
	if !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("Scan() error = %v, want %v", err, ErrQuotaExhausted)
	}
	if a.calls != constants.MaxFreeScans {
		t.Errorf("analyzer called %d times, want %d", a.calls, constants.MaxFreeScans)
	}
	if n := len(log.History(ctx)); n != constants.MaxFreeScans {
		t.Errorf("history has %d items, want %d", n, constants.MaxFreeScans)
	}
}

func TestScan_TrialLiftsQuota(t *testing.T) {
	a := &fakeAnalyzer{result: goodResult()}
	s, gate, _ := setupScanner(t, a)
	ctx := context.Background()

	if err := gate.StartFreeTrial(ctx); err != nil {
		t.Fatalf("StartFreeTrial() failed: %v", err)
	}
	for i := 0; i < constants.MaxFreeScans+2; i++ {
		out, err := s.Scan(ctx, Request{Image: "AAAA"})
		if err != nil {
			t.Fatalf("scan %d failed: %v", i+1, err)
		}
		if out.Remaining != constants.Unlimited {
			t.Errorf("Remaining = %d, want unlimited", out.Remaining)
		}
	}
}

func TestScan_AnalyzerFailureConsumesNothing(t *testing.T) {
	a := &fakeAnalyzer{err: analyzer.ErrAnalysisFailed}
	s, gate, log := setupScanner(t, a)
	ctx := context.Background()

	_, err := s.Scan(ctx, Request{Image: "AAAA"})
	if !errors.Is(err, analyzer.ErrAnalysisFailed) {
		t.Fatalf("Scan() error = %v, want %v", err, analyzer.ErrAnalysisFailed)
	}
	remaining, _ := gate.RemainingScans(ctx)
	if remaining != constants.MaxFreeScans {
		t.Errorf("RemainingScans() = %d, want %d", remaining, constants.MaxFreeScans)
	}
	if n := len(log.History(ctx)); n != 0 {
		t.Errorf("history has %d items, want 0", n)
	}
}

func TestScan_NoSave(t *testing.T) {
	a := &fakeAnalyzer{result: goodResult()}
	s, gate, log := setupScanner(t, a)
	ctx := context.Background()

	out, err := s.Scan(ctx, Request{Image: "AAAA", NoSave: true})
	if err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}
	if out.Saved {
		t.Error("Saved = true with NoSave")
	}
	if n := len(log.History(ctx)); n != 0 {
		t.Errorf("history has %d items, want 0", n)
	}
	remaining, _ := gate.RemainingScans(ctx)
	if remaining != constants.MaxFreeScans-1 {
		t.Errorf("unsaved scan should still count, RemainingScans() = %d", remaining)
	}
}
