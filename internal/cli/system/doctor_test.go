package system

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/detoxscan/internal/cli"
	"github.com/julianstephens/detoxscan/internal/constants"
	"github.com/julianstephens/detoxscan/internal/models"
	"github.com/julianstephens/detoxscan/internal/storage/sqlite"
)

func setupTestDoctorDB(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	gokeyring.MockInit()
	t.Setenv("DETOXSCAN_API_KEY", "test-key-1234")

	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	var out bytes.Buffer
	ctx := cli.NewContext(context.Background(), store, nil)
	ctx.Out = &out
	return ctx, &out
}

func TestDoctorCmd_HealthyDB(t *testing.T) {
	ctx, out := setupTestDoctorDB(t)

	result := models.AnalysisResult{Score: 80, Status: models.StatusClean}
	if _, ok := ctx.History.SaveScan(ctx.Ctx(), result, "label.jpg"); !ok {
		t.Fatal("failed to seed history")
	}
	if err := ctx.Gate.IncrementScanCount(ctx.Ctx()); err != nil {
		t.Fatal(err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor command failed on healthy database: %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "1234 from environment") {
		t.Errorf("expected masked key in output: %s", out.String())
	}
}

func TestDoctorCmd_MissingBackups(t *testing.T) {
	ctx, out := setupTestDoctorDB(t)

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor command should not fail on missing backups: %v", err)
	}
	if !strings.Contains(out.String(), "⚠ Backups present: WARNING") {
		t.Errorf("expected backup warning: %s", out.String())
	}
}

func TestDoctorCmd_CorruptRecords(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		check string
	}{
		{"history not json", constants.KeyHistory, `{broken`, "History records"},
		{"history duplicate ids", constants.KeyHistory,
			`[{"id":"a","date":"2026-03-10T10:00:00Z","result":{"score":50,"status":"Moderate"}},` +
				`{"id":"a","date":"2026-03-09T10:00:00Z","result":{"score":50,"status":"Moderate"}}]`,
			"History records"},
		{"history out of order", constants.KeyHistory,
			`[{"id":"a","date":"2026-03-09T10:00:00Z","result":{"score":50,"status":"Moderate"}},` +
				`{"id":"b","date":"2026-03-10T10:00:00Z","result":{"score":50,"status":"Moderate"}}]`,
			"History records"},
		{"negative count", constants.KeyDailyScans, `{"date":"2026-03-10","count":-1}`, "Daily scan record"},
		{"bad date", constants.KeyDailyScans, `{"date":"10/03/2026","count":1}`, "Daily scan record"},
		{"subscription not json", constants.KeySubscription, `nope`, "Subscription record"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, out := setupTestDoctorDB(t)
			if err := ctx.Store.Set(ctx.Ctx(), tt.key, tt.value); err != nil {
				t.Fatal(err)
			}

			if err := (&DoctorCmd{}).Run(ctx); err == nil {
				t.Error("expected doctor to fail")
			}
			if !strings.Contains(out.String(), "❌ "+tt.check+": FAIL") {
				t.Errorf("expected %s to fail: %s", tt.check, out.String())
			}
		})
	}
}

func TestDoctorCmd_UninitializedDB(t *testing.T) {
	gokeyring.MockInit()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "missing.db"))
	var out bytes.Buffer
	ctx := cli.NewContext(context.Background(), store, nil)
	ctx.Out = &out

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Fatal("expected doctor to fail on an uninitialized database")
	}
	if !strings.Contains(out.String(), "⊘ History records: SKIPPED") {
		t.Errorf("storage checks should be skipped: %s", out.String())
	}
}
