package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/detoxscan/internal/cli"
	"github.com/julianstephens/detoxscan/internal/cli/backups"
	"github.com/julianstephens/detoxscan/internal/cli/scans"
	"github.com/julianstephens/detoxscan/internal/cli/system"
	"github.com/julianstephens/detoxscan/internal/constants"
	"github.com/julianstephens/detoxscan/internal/errors"
	"github.com/julianstephens/detoxscan/internal/logger"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Database path, .json file, or PostgreSQL connection string. For PostgreSQL, credentials must NOT be embedded in the connection string." env:"DETOXSCAN_CONFIG" default:"${defaultConfig}"`
	Debug    bool   `help:"Log debug output to stderr as well as the log file." env:"DETOXSCAN_DEBUG"`
	Timezone string `help:"Timezone used to decide when the daily free scans reset (UTC, Local, or an IANA name)." env:"DETOXSCAN_TIMEZONE" default:"UTC"`

	Init    system.InitCmd    `cmd:"" help:"Initialize detoxscan storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Scan    scans.ScanCmd     `cmd:"" help:"Analyze a photo of an ingredient list."`
	Status  scans.StatusCmd   `cmd:"" help:"Show remaining free scans and trial state."`
	Trial   struct {
		Start scans.TrialStartCmd `cmd:"" help:"Start the free trial." default:"1"`
	} `cmd:"" help:"Manage the free trial."`
	History struct {
		List   scans.HistoryListCmd   `cmd:"" help:"List past scans." default:"1"`
		Show   scans.HistoryShowCmd   `cmd:"" help:"Show one scan by id or id prefix."`
		Clear  scans.HistoryClearCmd  `cmd:"" help:"Delete all scan history."`
		Browse scans.HistoryBrowseCmd `cmd:"" help:"Browse scan history interactively."`
	} `cmd:"" help:"View scan history."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the model API key in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored model API key (masked)."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the model API key from the OS keyring."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check OS keyring availability." default:"1"`
	} `cmd:"" help:"Manage the model API key in the OS keyring."`
}

// needsStore reports whether the selected command expects a loaded store.
// init creates it, doctor reports on it and keyring never touches it.
func needsStore(command string) bool {
	for _, prefix := range []string{"init", "doctor", "keyring"} {
		if command == prefix || strings.HasPrefix(command, prefix+" ") {
			return false
		}
	}
	return true
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Scan ingredient labels and score how clean a product is"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":       constants.Version,
			"defaultConfig": constants.DefaultConfigPath,
		},
	)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: cli.ConfigDir(CLI.Config)}); err != nil {
		errors.Fatal(err)
	}

	store, err := cli.OpenStore(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}
	loc, err := cli.LoadLocation(CLI.Timezone)
	if err != nil {
		errors.Fatal(err)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx := cli.NewContext(sigCtx, store, loc)

	if needsStore(ctx.Command()) {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
	}

	err = ctx.Run(appCtx)
	_ = store.Close()
	if err != nil {
		stop()
		errors.Fatal(err)
	}
}
