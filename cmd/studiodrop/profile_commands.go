package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"studiodrop/internal/profile"
)

func newProfileCommand(ctx *commandContext) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect and export validation profiles",
	}
	profileCmd.AddCommand(newProfileListCommand(ctx))
	profileCmd.AddCommand(newProfileShowCommand(ctx))
	profileCmd.AddCommand(newProfileExportCommand(ctx))
	return profileCmd
}

func newProfileListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List built-in and user profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			summaries, err := profile.List(cfg.Paths.ProfilesDir)
			if err != nil {
				return fmt.Errorf("list profiles: %w", err)
			}
			if jsonOut {
				return writeJSON(cmd, summaries)
			}
			out := cmd.OutOrStdout()
			color := shouldColorize(out)
			rows := make([][]string, 0, len(summaries))
			for _, s := range summaries {
				name := s.Name
				if strings.EqualFold(s.Name, cfg.Defaults.Profile) {
					name += " (default)"
				}
				state := colorize("ok", ansiGreen, color)
				if s.Error != "" {
					state = colorize(s.Error, ansiRed, color)
				}
				rows = append(rows, []string{name, s.Source, state})
			}
			fmt.Fprintln(out, renderTable([]string{"Profile", "Source", "State"}, rows, nil))
			return nil
		},
	}
	addJSONFlag(cmd, &jsonOut)
	return cmd
}

func newProfileShowCommand(ctx *commandContext) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Print a profile in its file format",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			ref := cfg.Defaults.Profile
			if len(args) == 1 {
				ref = args[0]
			}
			p, err := profile.Resolve(ref, cfg.Paths.ProfilesDir)
			if err != nil {
				return err
			}
			data, err := p.Encode(profile.Format(strings.ToLower(strings.TrimSpace(format))))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(profile.FormatJSON), "Output format: json or yaml")
	return cmd
}

func newProfileExportCommand(ctx *commandContext) *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "export <name> [path]",
		Short: "Write a profile to a file for editing",
		Long: "Write a profile to a file for editing.\n\n" +
			"Without a path the profile is written to the profiles directory as\n" +
			"<name>.json, where it then takes precedence over the built-in profile.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			p, err := profile.Resolve(args[0], cfg.Paths.ProfilesDir)
			if err != nil {
				return err
			}
			target := filepath.Join(cfg.Paths.ProfilesDir, p.Name()+".json")
			if len(args) == 2 {
				if target, err = expandTarget(args[1]); err != nil {
					return err
				}
			}
			if !overwrite && fileExists(target) {
				return fmt.Errorf("%s already exists (use --overwrite to replace it)", target)
			}
			if err := profile.Save(p, target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote profile %s to %s\n", p.Name(), target)
			return nil
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}
