package backups

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/detoxscan/internal/backup"
	"github.com/julianstephens/detoxscan/internal/cli"
	"github.com/julianstephens/detoxscan/internal/constants"
)

var errSQLiteOnly = errors.New("backups are only supported for sqlite storage")

// confirmRestore asks before replacing the database. Replaced in tests.
var confirmRestore = func(path string) (bool, error) {
	accept := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Replace the current database with this backup?").
				Description(path+"\nA backup of the current database is created first. Stop other detoxscan processes before continuing.").
				Affirmative("Restore").
				Negative("Cancel").
				Value(&accept),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return accept, nil
}

func manager(ctx *cli.Context) (*backup.Manager, error) {
	if ctx.SQLiteStore() == nil {
		return nil, errSQLiteOnly
	}
	return backup.NewManager(ctx.Store.GetConfigPath()), nil
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	info, err := mgr.Create()
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	ctx.Printf("✓ Backup created: %s (%s)\n", info.Name, humanize.Bytes(uint64(info.Size)))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		ctx.Println("No backups found.")
		ctx.Printf("Backups are stored in: %s\n", mgr.Dir())
		return nil
	}

	ctx.Printf("Available backups (%d total, keeping most recent %d):\n\n", len(backups), constants.MaxBackups)
	for _, b := range backups {
		ctx.Printf("  %s  %-36s %8s  %s\n",
			b.Timestamp.Format("2006-01-02 15:04:05"),
			b.Name,
			humanize.Bytes(uint64(b.Size)),
			humanize.Time(b.Timestamp),
		)
	}
	ctx.Printf("\nBackup directory: %s\n", mgr.Dir())
	return nil
}

type BackupRestoreCmd struct {
	Backup string `arg:"" optional:"" help:"Backup file name or path. Defaults to the newest backup."`
	Yes    bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	info, err := mgr.Find(c.Backup)
	if err != nil {
		return err
	}

	if !c.Yes {
		ok, err := confirmRestore(info.Path)
		if err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			ctx.Println("Restore cancelled.")
			return nil
		}
	}

	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close database before restore: %w", err)
	}
	safety, err := mgr.Restore(info.Path)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("restored database could not be opened: %w", err)
	}

	ctx.Printf("✓ Database restored from %s\n", info.Name)
	if safety != "" {
		ctx.Printf("  Previous database saved as %s\n", safety)
	}
	return nil
}
