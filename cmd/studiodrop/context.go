package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"studiodrop/internal/config"
	"studiodrop/internal/history"
	"studiodrop/internal/logging"
	"studiodrop/internal/workflow"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	sink       *logging.FileSink

	store *history.Store
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// ensureLogger builds the run logger on first use and prunes expired log
// files. Logger setup failures fall back to a terminal-only logger.
func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg := c.configValue()
		verbose := c.verbose != nil && *c.verbose
		logger, sink, err := logging.NewFromConfig(cfg, verbose)
		if err != nil {
			logger, _, _ = logging.NewFromConfig(nil, verbose)
			logger.Warn("file logging unavailable", logging.Error(err))
		}
		c.logger, c.sink = logger, sink
		if cfg != nil && sink != nil {
			logging.CleanupOldLogs(logger, cfg.Paths.LogDir, logging.LogFilePattern, sink.Path, cfg.Logging.RetentionDays)
		}
	})
	return c.logger
}

// engine returns a workflow engine bound to the loaded config. History is
// attached when enabled; a store that fails to open is logged and skipped.
func (c *commandContext) engine() (*workflow.Engine, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger := c.ensureLogger()
	opts := []workflow.Option{workflow.WithToolVersion(version)}
	if cfg.History.Enabled {
		if store, err := c.historyStore(); err != nil {
			logging.WarnWithContext(context.Background(), logger, "run history unavailable", "history_open_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "this run will not appear in studiodrop history"),
			)
		} else {
			opts = append(opts, workflow.WithHistory(store))
		}
	}
	return workflow.NewEngine(cfg, logger, opts...), nil
}

func (c *commandContext) historyStore() (*history.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := history.Open(cfg)
	if err != nil {
		return nil, err
	}
	c.store = store
	return store, nil
}

func (c *commandContext) close() {
	if c.store != nil {
		_ = c.store.Close()
		c.store = nil
	}
	if c.sink != nil {
		_ = c.sink.Close()
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
