package main

import (
	"github.com/spf13/cobra"

	"studiodrop/internal/workflow"
)

type deliveryFlags struct {
	profile string
	output  string
	project string
	asset   string
	version string
	json    bool
}

func (f *deliveryFlags) bindProfile(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.profile, "profile", "p", "", "Profile name or file (defaults to the configured profile)")
	addJSONFlag(cmd, &f.json)
}

func (f *deliveryFlags) bindPlan(cmd *cobra.Command) {
	f.bindProfile(cmd)
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output root (defaults to the configured output root)")
	cmd.Flags().StringVar(&f.project, "project", "", "Project name override")
	cmd.Flags().StringVar(&f.asset, "asset", "", "Asset name override")
	cmd.Flags().StringVar(&f.version, "version", "", "Version token override, for example v003")
}

func (f *deliveryFlags) request(root string, skipPlan bool) workflow.Request {
	return workflow.Request{
		InputRoot: root,
		Profile:   f.profile,
		SkipPlan:  skipPlan,
		Plan: workflow.PlanRequest{
			OutputRoot: f.output,
			Project:    f.project,
			Asset:      f.asset,
			Version:    f.version,
		},
	}
}
