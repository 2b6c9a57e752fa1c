package constants

import "time"

const (
	AppName            = "detoxscan"
	DefaultKeyringUser = "model-api-key"
	DefaultConfigPath  = "~/.config/detoxscan/detoxscan.db"
	Version            = "v0.3.0"

	// DateFormat is the calendar-day key used for the daily scan counter (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Quota constants
	MaxFreeScans  = 3
	Unlimited     = -1
	TrialDuration = 72 * time.Hour

	// History constants
	MaxHistoryItems = 50

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "detoxscan-"
	BackupFileSuffix = ".db"

	// Lockfile constants for the JSON store
	LockfileSuffix     = ".lock"
	LockRetryDelay     = 50 * time.Millisecond
	LockAcquireTimeout = 5 * time.Second
)
