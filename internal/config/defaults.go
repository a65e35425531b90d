package config

const (
	defaultConfigPath       = "~/.config/studiodrop/config.toml"
	defaultProfilesDir      = "~/.config/studiodrop/profiles"
	defaultStateDir         = "~/.local/share/studiodrop"
	defaultLogDir           = "~/.local/share/studiodrop/logs"
	defaultProfile          = "VFX"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
	defaultMinFreeMiB       = 64
	defaultHistoryKeep      = 500
)

var defaultIgnorePatterns = []string{
	"**/Thumbs.db",
	"**/desktop.ini",
	"**/*.tmp",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ProfilesDir: defaultProfilesDir,
			StateDir:    defaultStateDir,
			LogDir:      defaultLogDir,
		},
		Defaults: Defaults{
			Profile: defaultProfile,
		},
		Scan: Scan{
			IgnoreHidden:   true,
			IgnorePatterns: append([]string(nil), defaultIgnorePatterns...),
		},
		Package: Package{
			PreserveModTime: true,
			LockOutputRoot:  true,
			MinFreeMiB:      defaultMinFreeMiB,
		},
		History: History{
			Enabled: true,
			Keep:    defaultHistoryKeep,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
