package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/detoxscan/internal/analyzer"
	"github.com/julianstephens/detoxscan/internal/backup"
	"github.com/julianstephens/detoxscan/internal/config"
	"github.com/julianstephens/detoxscan/internal/constants"
	"github.com/julianstephens/detoxscan/internal/history"
	"github.com/julianstephens/detoxscan/internal/logger"
	"github.com/julianstephens/detoxscan/internal/quota"
	"github.com/julianstephens/detoxscan/internal/storage"
	"github.com/julianstephens/detoxscan/internal/storage/postgres"
	"github.com/julianstephens/detoxscan/internal/storage/sqlite"
)

// AnalyzerFactory builds the model client on demand so commands that never
// scan do not need an API key.
type AnalyzerFactory func() (analyzer.Analyzer, error)

type Context struct {
	Context     context.Context
	Store       storage.Provider
	Gate        *quota.Gate
	History     *history.Log
	NewAnalyzer AnalyzerFactory
	Out         io.Writer
}

// NewContext wires the quota gate and history log to store. Day boundaries
// follow loc.
func NewContext(ctx context.Context, store storage.Provider, loc *time.Location) *Context {
	return &Context{
		Context:     ctx,
		Store:       store,
		Gate:        quota.New(store, quota.WithLocation(loc)),
		History:     history.New(store),
		NewAnalyzer: DefaultAnalyzer,
		Out:         os.Stdout,
	}
}

// DefaultAnalyzer builds a model client from the environment and keyring.
func DefaultAnalyzer() (analyzer.Analyzer, error) {
	cfg, err := config.LoadAnalyzer()
	if err != nil {
		return nil, err
	}
	return analyzer.New(cfg)
}

func (c *Context) Ctx() context.Context {
	if c.Context == nil {
		return context.Background()
	}
	return c.Context
}

func (c *Context) Stdout() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Printf writes to the command's output.
func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Stdout(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Stdout(), args...)
}

// SQLiteStore returns the sqlite backend, or nil for other backends.
func (c *Context) SQLiteStore() *sqlite.Store {
	s, _ := c.Store.(*sqlite.Store)
	return s
}

// PerformAutomaticBackup snapshots a sqlite database and only logs failures.
func (c *Context) PerformAutomaticBackup() {
	if c.SQLiteStore() == nil {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ExpandPath resolves a leading "~" to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// OpenStore picks a backend from the config value: a PostgreSQL connection
// string, "memory:", a ".json" file, or otherwise a sqlite database path.
func OpenStore(cfg string) (storage.Provider, error) {
	switch {
	case postgres.IsConnString(cfg):
		if _, err := postgres.ValidateConnString(cfg); err != nil {
			return nil, err
		}
		return postgres.New(cfg), nil
	case cfg == "memory:":
		return storage.NewMemoryStore(), nil
	}

	path, err := ExpandPath(cfg)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return storage.NewJSONStore(path), nil
	}
	return sqlite.NewStore(path), nil
}

// ConfigDir is where logs and backups live for the given config value.
// Non-file backends fall back to the default directory.
func ConfigDir(cfg string) string {
	if postgres.IsConnString(cfg) || cfg == "memory:" {
		cfg = constants.DefaultConfigPath
	}
	path, err := ExpandPath(cfg)
	if err != nil {
		return "."
	}
	return filepath.Dir(path)
}

// LoadLocation resolves a timezone name; "" and "UTC" mean UTC and "Local"
// the system zone.
func LoadLocation(name string) (*time.Location, error) {
	switch name {
	case "", "UTC":
		return time.UTC, nil
	case "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return loc, nil
}
