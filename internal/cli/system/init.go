package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/detoxscan/internal/cli"
	"github.com/julianstephens/detoxscan/internal/storage"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting the existing database before initialization."`
	Source string `help:"Database path or connection string to copy quota and history data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized detoxscan storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", c.Source)
		n, err := c.copyFrom(ctx)
		if err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		ctx.Printf("Copied %d record(s).\n", n)
	}
	return nil
}

// reset removes a file-backed store. Postgres and memory stores are left alone.
func (c *InitCmd) reset(ctx *cli.Context) error {
	dbPath := ctx.Store.GetConfigPath()
	if dbPath == "postgresql" || dbPath == "memory" {
		return nil
	}
	if c.Source != "" {
		absDB, _ := filepath.Abs(dbPath)
		absSrc, _ := filepath.Abs(c.Source)
		if absDB == absSrc {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
		}
		ctx.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

// copyFrom copies every key from the source store into the destination.
func (c *InitCmd) copyFrom(ctx *cli.Context) (int, error) {
	src, err := cli.OpenStore(c.Source)
	if err != nil {
		return 0, err
	}
	if err := src.Load(); err != nil {
		return 0, fmt.Errorf("failed to load source database: %w", err)
	}
	defer src.Close()

	return copyKeys(ctx, src)
}

func copyKeys(ctx *cli.Context, src storage.Provider) (int, error) {
	keys, err := src.Keys(ctx.Ctx())
	if err != nil {
		return 0, fmt.Errorf("failed to list source keys: %w", err)
	}
	copied := 0
	for _, k := range keys {
		v, found, err := src.Get(ctx.Ctx(), k)
		if err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", k, err)
		}
		if !found {
			continue
		}
		if err := ctx.Store.Set(ctx.Ctx(), k, v); err != nil {
			return 0, fmt.Errorf("failed to write %s: %w", k, err)
		}
		copied++
		ctx.Printf("  ✓ %s\n", k)
	}
	return copied, nil
}
