package backups

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/detoxscan/internal/cli"
	"github.com/julianstephens/detoxscan/internal/models"
	"github.com/julianstephens/detoxscan/internal/storage"
	"github.com/julianstephens/detoxscan/internal/storage/sqlite"
)

func setupTestBackupDB(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "detoxscan.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	var out bytes.Buffer
	ctx := cli.NewContext(context.Background(), store, nil)
	ctx.Out = &out
	return ctx, &out
}

func TestBackupCreateAndList(t *testing.T) {
	ctx, out := setupTestBackupDB(t)

	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No backups found") {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup create failed: %v", err)
	}
	if !strings.Contains(out.String(), "Backup created") {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "1 total") {
		t.Errorf("output = %q", out.String())
	}
}

func TestBackupRestore(t *testing.T) {
	ctx, out := setupTestBackupDB(t)
	bg := context.Background()

	ctx.History.SaveScan(bg, models.AnalysisResult{Score: 80, Status: models.StatusClean}, "")
	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	ctx.History.SaveScan(bg, models.AnalysisResult{Score: 20, Status: models.StatusToxic}, "")

	orig := confirmRestore
	t.Cleanup(func() { confirmRestore = orig })
	confirmRestore = func(string) (bool, error) { return false, nil }

	if err := (&BackupRestoreCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if n := len(ctx.History.History(bg)); n != 2 {
		t.Fatalf("cancelled restore changed history: %d items", n)
	}

	out.Reset()
	if err := (&BackupRestoreCmd{Yes: true}).Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	items := ctx.History.History(bg)
	if len(items) != 1 || items[0].Result.Score != 80 {
		t.Errorf("history after restore = %+v", items)
	}
	if !strings.Contains(out.String(), "Previous database saved") {
		t.Errorf("output = %q", out.String())
	}
}

func TestBackup_SQLiteOnly(t *testing.T) {
	ctx := cli.NewContext(context.Background(), storage.NewMemoryStore(), nil)
	if err := (&BackupCreateCmd{}).Run(ctx); !errors.Is(err, errSQLiteOnly) {
		t.Errorf("error = %v, want %v", err, errSQLiteOnly)
	}
}
