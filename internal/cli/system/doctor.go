package system

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/detoxscan/internal/backup"
	"github.com/julianstephens/detoxscan/internal/cli"
	"github.com/julianstephens/detoxscan/internal/config"
	"github.com/julianstephens/detoxscan/internal/constants"
	"github.com/julianstephens/detoxscan/internal/keyring"
	"github.com/julianstephens/detoxscan/internal/models"
)

type DoctorCmd struct{}

type check struct {
	name     string
	fn       func(ctx *cli.Context) error
	needsDB  bool
	warnOnly bool
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	checks := []check{
		{name: "Schema version", fn: checkSchemaVersion, needsDB: true},
		{name: "Migrations complete", fn: checkMigrationsComplete, needsDB: true},
		{name: "Subscription record", fn: checkSubscription, needsDB: true},
		{name: "Daily scan record", fn: checkDailyScans, needsDB: true},
		{name: "History records", fn: checkHistory, needsDB: true},
		{name: "Backups present", fn: checkBackupsPresent, warnOnly: true},
		{name: "Model API key", fn: checkAPIKey, warnOnly: true},
		{name: "Clock/timezone", fn: checkClockTimezone},
	}

	hasError := false
	dbReachable := true
	if err := checkDBReachable(ctx); err != nil {
		ctx.Printf("❌ Storage reachable: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		ctx.Printf("✓ Storage reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (storage not reachable)\n", c.name)
			continue
		}
		err := c.fn(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}
	if _, err := ctx.Store.Keys(ctx.Ctx()); err != nil {
		return fmt.Errorf("failed to query storage: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return nil
	}
	runner, err := m.Runner()
	if err != nil {
		return err
	}
	current, err := runner.CurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current == 0 {
		return errors.New("schema version is 0, run 'detoxscan init'")
	}
	return runner.ValidateVersion()
}

func checkMigrationsComplete(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return nil
	}
	runner, err := m.Runner()
	if err != nil {
		return err
	}
	pending, err := runner.Pending()
	if err != nil {
		return err
	}
	if pending > 0 {
		return fmt.Errorf("%d pending migration(s), run 'detoxscan migrate'", pending)
	}
	return nil
}

func readJSON(ctx *cli.Context, key string, target any) (bool, error) {
	raw, found, err := ctx.Store.Get(ctx.Ctx(), key)
	if err != nil || !found {
		return found, err
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return true, fmt.Errorf("%s is not valid JSON: %w", key, err)
	}
	return true, nil
}

func checkSubscription(ctx *cli.Context) error {
	var sub models.SubscriptionState
	found, err := readJSON(ctx, constants.KeySubscription, &sub)
	if err != nil || !found {
		return err
	}
	if sub.TrialStartDate != nil && sub.TrialStartDate.After(time.Now().Add(time.Hour)) {
		return fmt.Errorf("trial start date %s is in the future", sub.TrialStartDate.Format(time.RFC3339))
	}
	return nil
}

func checkDailyScans(ctx *cli.Context) error {
	var daily models.DailyScanState
	found, err := readJSON(ctx, constants.KeyDailyScans, &daily)
	if err != nil || !found {
		return err
	}
	if _, err := time.Parse(constants.DateFormat, daily.Date); err != nil {
		return fmt.Errorf("daily scan date %q is not YYYY-MM-DD", daily.Date)
	}
	if daily.Count < 0 {
		return fmt.Errorf("daily scan count %d is negative", daily.Count)
	}
	return nil
}

func checkHistory(ctx *cli.Context) error {
	var items []models.HistoryItem
	found, err := readJSON(ctx, constants.KeyHistory, &items)
	if err != nil || !found {
		return err
	}
	if len(items) > constants.MaxHistoryItems {
		return fmt.Errorf("history holds %d items, limit is %d", len(items), constants.MaxHistoryItems)
	}
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		if item.ID == "" {
			return fmt.Errorf("history item %d has no id", i)
		}
		if seen[item.ID] {
			return fmt.Errorf("duplicate history id %s", item.ID)
		}
		seen[item.ID] = true
		if i > 0 && item.Date.After(items[i-1].Date) {
			return fmt.Errorf("history is not ordered newest first at item %d", i)
		}
		if err := item.Result.Validate(); err != nil {
			return fmt.Errorf("history item %s: %w", item.ID, err)
		}
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if ctx.SQLiteStore() == nil {
		return nil
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found in %s, run 'detoxscan backup create'", mgr.Dir())
	}
	return nil
}

func checkAPIKey(ctx *cli.Context) error {
	cfg, err := config.LoadAnalyzer()
	if err != nil {
		return err
	}
	if cfg.APIKey == "" {
		if !keyring.IsAvailable() {
			return errors.New("no API key in the environment and the OS keyring is unavailable")
		}
		return errors.New("no API key configured, run 'detoxscan keyring set <key>'")
	}
	ctx.Printf("   using key %s from %s\n", keyring.Mask(cfg.APIKey), cfg.KeySource)
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2024 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	if _, err := time.LoadLocation("America/New_York"); err != nil {
		return fmt.Errorf("timezone database unavailable: %w", err)
	}
	return nil
}
