// Package history keeps the most recent scan results, newest first.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/detoxscan/internal/constants"
	"github.com/julianstephens/detoxscan/internal/logger"
	"github.com/julianstephens/detoxscan/internal/models"
	"github.com/julianstephens/detoxscan/internal/storage"
)

// ErrNotFound is returned by Get when no item has the requested id
var ErrNotFound = errors.New("scan not found in history")

// Log is a bounded list of scan results stored under a single key.
type Log struct {
	store storage.Provider
	now   func() time.Time
	newID func() string
	limit int
}

// Option configures a Log.
type Option func(*Log)

// WithClock replaces time.Now when stamping new items.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// WithIDGenerator replaces the UUID generator used for new items.
func WithIDGenerator(gen func() string) Option {
	return func(l *Log) { l.newID = gen }
}

// New returns a log over store holding at most constants.MaxHistoryItems.
func New(store storage.Provider, opts ...Option) *Log {
	l := &Log{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
		limit: constants.MaxHistoryItems,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func decode(raw string, found bool) ([]models.HistoryItem, error) {
	if !found || raw == "" {
		return nil, nil
	}
	var items []models.HistoryItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("failed to parse history: %w", err)
	}
	return items, nil
}

// SaveScan prepends a new item built from result and evicts the oldest
// entries past the limit. Failures are logged and reported through ok only.
func (l *Log) SaveScan(ctx context.Context, result models.AnalysisResult, imageRef string) (models.HistoryItem, bool) {
	item := models.HistoryItem{
		ID:       l.newID(),
		Date:     l.now().UTC(),
		ImageRef: imageRef,
		Result:   result,
	}

	err := l.store.Update(ctx, constants.KeyHistory, func(raw string, found bool) (string, error) {
		items, err := decode(raw, found)
		if err != nil {
			// An unreadable list would otherwise block every future save
			logger.Warn("Discarding unreadable history", "error", err)
			items = nil
		}
		next := make([]models.HistoryItem, 0, min(len(items)+1, l.limit))
		next = append(next, item)
		next = append(next, items...)
		if len(next) > l.limit {
			next = next[:l.limit]
		}
		data, err := json.Marshal(next)
		if err != nil {
			return "", err
		}
		return string(data), nil
	})
	if err != nil {
		logger.Error("Failed to save scan to history", "id", item.ID, "error", err)
		return models.HistoryItem{}, false
	}

	logger.Debug("Saved scan to history", "id", item.ID, "score", result.Score)
	return item, true
}

// History returns the stored items newest first. Read failures are logged
// and yield an empty list.
func (l *Log) History(ctx context.Context) []models.HistoryItem {
	raw, found, err := l.store.Get(ctx, constants.KeyHistory)
	if err != nil {
		logger.Error("Failed to read history", "error", err)
		return []models.HistoryItem{}
	}
	items, err := decode(raw, found)
	if err != nil {
		logger.Error("Failed to read history", "error", err)
		return []models.HistoryItem{}
	}
	if items == nil {
		return []models.HistoryItem{}
	}
	return items
}

// Get returns the item with the given id. A unique prefix of the id is
// accepted so ids copied from the list view can be shortened.
func (l *Log) Get(ctx context.Context, id string) (models.HistoryItem, error) {
	if id == "" {
		return models.HistoryItem{}, ErrNotFound
	}
	raw, found, err := l.store.Get(ctx, constants.KeyHistory)
	if err != nil {
		return models.HistoryItem{}, fmt.Errorf("failed to read history: %w", err)
	}
	items, err := decode(raw, found)
	if err != nil {
		return models.HistoryItem{}, err
	}

	var match *models.HistoryItem
	for i := range items {
		if items[i].ID == id {
			return items[i], nil
		}
		if strings.HasPrefix(items[i].ID, id) {
			if match != nil {
				return models.HistoryItem{}, fmt.Errorf("id prefix %q is ambiguous", id)
			}
			match = &items[i]
		}
	}
	if match == nil {
		return models.HistoryItem{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *match, nil
}

// Clear removes every stored item.
func (l *Log) Clear(ctx context.Context) error {
	if err := l.store.Delete(ctx, constants.KeyHistory); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	logger.Info("History cleared")
	return nil
}
