package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeDefaults(); err != nil {
		return err
	}
	c.normalizeScan()
	c.normalizeHistory()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ProfilesDir) == "" {
		c.Paths.ProfilesDir = defaultProfilesDir
	}
	if c.Paths.ProfilesDir, err = expandPath(c.Paths.ProfilesDir); err != nil {
		return fmt.Errorf("paths.profiles_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDefaults() error {
	if value, ok := os.LookupEnv("STUDIODROP_PROFILE"); ok && strings.TrimSpace(value) != "" {
		c.Defaults.Profile = value
	}
	c.Defaults.Profile = strings.TrimSpace(c.Defaults.Profile)
	if c.Defaults.Profile == "" {
		c.Defaults.Profile = defaultProfile
	}

	if value, ok := os.LookupEnv("STUDIODROP_OUTPUT_ROOT"); ok && strings.TrimSpace(value) != "" {
		c.Defaults.OutputRoot = value
	}
	c.Defaults.OutputRoot = strings.TrimSpace(c.Defaults.OutputRoot)
	if c.Defaults.OutputRoot != "" {
		var err error
		if c.Defaults.OutputRoot, err = expandPath(c.Defaults.OutputRoot); err != nil {
			return fmt.Errorf("defaults.output_root: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeScan() {
	patterns := make([]string, 0, len(c.Scan.IgnorePatterns))
	seen := make(map[string]struct{}, len(c.Scan.IgnorePatterns))
	for _, pattern := range c.Scan.IgnorePatterns {
		pattern = strings.TrimSpace(strings.ReplaceAll(pattern, "\\", "/"))
		if pattern == "" {
			continue
		}
		if _, exists := seen[pattern]; exists {
			continue
		}
		seen[pattern] = struct{}{}
		patterns = append(patterns, pattern)
	}
	c.Scan.IgnorePatterns = patterns
}

func (c *Config) normalizeHistory() {
	if c.History.Keep < 0 {
		c.History.Keep = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
