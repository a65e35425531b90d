package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"studiodrop/internal/config"
	"studiodrop/internal/history"
	"studiodrop/internal/preflight"
	"studiodrop/internal/profile"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func expandTarget(path string) (string, error) {
	expanded, err := config.ExpandPath(strings.TrimSpace(path))
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	return expanded, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := expandTarget(target)
				if err != nil {
					return err
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit [defaults] to set your output root and default profile.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(strings.TrimSpace(*ctx.configFlag))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			color := shouldColorize(out)
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "Output root: %s\n", cfg.Defaults.OutputRoot)
			fmt.Fprintf(out, "Run history: %s\n", yesNo(cfg.History.Enabled))

			checks := []preflight.Result{
				preflight.CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
				preflight.CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
			}
			if _, err := profile.Resolve(cfg.Defaults.Profile, cfg.Paths.ProfilesDir); err != nil {
				checks = append(checks, preflight.Result{Name: "Default profile", Detail: err.Error()})
			} else {
				checks = append(checks, preflight.Result{Name: "Default profile", Passed: true, Detail: cfg.Defaults.Profile})
			}
			if cfg.History.Enabled {
				checks = append(checks, checkHistory(cmd.Context(), cfg))
			}
			rows := make([][]string, 0, len(checks))
			for _, c := range checks {
				state := colorize("OK", ansiGreen, color)
				if !c.Passed {
					state = colorize("FAIL", ansiRed, color)
				}
				rows = append(rows, []string{c.Name, state, c.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "State", "Detail"}, rows, nil))

			if err := preflight.Err(checks); err != nil {
				return err
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func checkHistory(ctx context.Context, cfg *config.Config) preflight.Result {
	result := preflight.Result{Name: "History database"}
	store, err := history.Open(cfg)
	if err != nil {
		result.Detail = err.Error()
		return result
	}
	defer store.Close()
	version, applied, err := store.SchemaVersion(ctx)
	if err != nil {
		result.Detail = err.Error()
		return result
	}
	result.Passed = true
	result.Detail = fmt.Sprintf("schema %d (applied %s)", version, applied.Local().Format("2006-01-02"))
	return result
}
