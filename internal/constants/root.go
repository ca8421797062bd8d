package constants

import "time"

const (
	AppName            = "daystreak"
	DefaultKeyringUser = "database-connection"
	OwnerKeyringUser   = "owner-id"
	DefaultConfigPath  = "~/.config/daystreak/daystreak.db"
	OwnerFileName      = "owner"
	Version            = "v0.1.0"

	// DateFormat is the calendar day format used for completions and stats (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// DaysPerWeek is the width of the weekly stats window, ending at the reference day
	DaysPerWeek = 7

	// MaxConcurrentLoads bounds parallel per-habit history loads
	MaxConcurrentLoads = 4

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "daystreak-"
	BackupFileSuffix = ".db"

	// Lock constants
	LockKeyPrefix     = "daystreak:lock:habit"
	DefaultLockTTL    = 5 * time.Second
	LockRetryInterval = 25 * time.Millisecond

	// Logging constants
	LogDirName  = "logs"
	LogFileName = "daystreak.log"

	DefaultLogDays  = 14
	DefaultTimezone = "Local"
	EnvFileName     = ".env"
)
