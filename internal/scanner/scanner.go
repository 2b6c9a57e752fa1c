// Package scanner runs one scan end to end: quota check, analysis, history
// and counter updates.
package scanner

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/detoxscan/internal/analyzer"
	"github.com/julianstephens/detoxscan/internal/constants"
	"github.com/julianstephens/detoxscan/internal/history"
	"github.com/julianstephens/detoxscan/internal/logger"
	"github.com/julianstephens/detoxscan/internal/models"
	"github.com/julianstephens/detoxscan/internal/quota"
)

// ErrQuotaExhausted is returned when no free scans remain today. Callers
// should offer the free trial.
var ErrQuotaExhausted = errors.New("daily free scans used up, start a free trial for unlimited scans")

type Request struct {
	// Image is base64 data, optionally as a data URI
	Image string
	// ImageRef is stored with the history item, usually the source path
	ImageRef string
	// NoSave skips the history entry; the scan still counts against quota
	NoSave bool
}

type Outcome struct {
	Result models.AnalysisResult
	// Item is the history entry, zero when saving was skipped or failed
	Item  models.HistoryItem
	Saved bool
	// Remaining is the quota left after this scan, constants.Unlimited on
	// an active subscription
	Remaining int
}

type Scanner struct {
	gate     *quota.Gate
	history  *history.Log
	analyzer analyzer.Analyzer
}

func New(gate *quota.Gate, log *history.Log, a analyzer.Analyzer) *Scanner {
	return &Scanner{gate: gate, history: log, analyzer: a}
}

// Scan checks the quota, analyzes the image and, on success, saves the
// result to history and counts the scan. A failed analysis consumes no
// quota.
func (s *Scanner) Scan(ctx context.Context, req Request) (Outcome, error) {
	remaining, err := s.Preflight(ctx)
	if err != nil {
		if errors.Is(err, ErrQuotaExhausted) {
			logger.Info("Scan refused, quota exhausted")
		}
		return Outcome{}, err
	}

	result, err := s.analyzer.Analyze(ctx, req.Image)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Result: result}
	if !req.NoSave {
		out.Item, out.Saved = s.history.SaveScan(ctx, result, req.ImageRef)
	}

	if err := s.gate.IncrementScanCount(ctx); err != nil {
		// The result is still returned when only the counter write fails
		logger.Error("Scan finished but was not counted", "error", err)
	}

	out.Remaining = constants.Unlimited
	if remaining != constants.Unlimited {
		out.Remaining = max(0, remaining-1)
	}
	logger.Info("Scan complete", "score", result.Score, "status", result.Status, "saved", out.Saved)
	return out, nil
}

// Preflight reports the remaining quota without running a scan, returning
// ErrQuotaExhausted when a scan would be refused.
func (s *Scanner) Preflight(ctx context.Context) (int, error) {
	remaining, err := s.gate.RemainingScans(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to check quota: %w", err)
	}
	if remaining == 0 {
		return 0, ErrQuotaExhausted
	}
	return remaining, nil
}
