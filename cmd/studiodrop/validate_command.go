package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"studiodrop/internal/finding"
)

type validateView struct {
	Root     string            `json:"root"`
	Profile  string            `json:"profile"`
	Status   finding.Status    `json:"status"`
	Findings []finding.Finding `json:"findings"`
}

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var flags deliveryFlags

	cmd := &cobra.Command{
		Use:   "validate <delivery-dir>",
		Short: "Check a delivery against a profile",
		Long: "Check a delivery against a profile.\n\n" +
			"Exits 2 when any ERROR finding is reported.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := ctx.engine()
			if err != nil {
				return err
			}
			prep, err := engine.Prepare(cmd.Context(), flags.request(args[0], true))
			if err != nil {
				return err
			}

			view := validateView{
				Root:     prep.Tree.Root,
				Profile:  prep.Profile.Name(),
				Status:   prep.Status(),
				Findings: prep.Findings,
			}
			if view.Findings == nil {
				view.Findings = []finding.Finding{}
			}

			if flags.json {
				if err := writeJSON(cmd, view); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				color := shouldColorize(out)
				fmt.Fprintf(out, "Profile: %s\n", view.Profile)
				renderFindings(out, view.Findings, color)
				fmt.Fprintf(out, "Status: %s (%d errors, %d warnings)\n",
					renderStatus(view.Status, color),
					finding.Count(view.Findings, finding.Error),
					finding.Count(view.Findings, finding.Warning),
				)
			}

			if view.Status.Blocking() {
				return &statusError{status: view.Status, detail: "validation failed"}
			}
			return nil
		},
	}
	flags.bindProfile(cmd)
	return cmd
}
