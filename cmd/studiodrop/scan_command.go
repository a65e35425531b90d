package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"studiodrop/internal/scanner"
)

type scanIssueView struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type scanView struct {
	Root       string          `json:"root"`
	Files      int             `json:"files"`
	Dirs       int             `json:"dirs"`
	Links      int             `json:"links"`
	Ignored    int             `json:"ignored"`
	Bytes      int64           `json:"bytes"`
	Extensions map[string]int  `json:"extensions"`
	Issues     []scanIssueView `json:"issues"`
}

func newScanView(tree *scanner.Tree) scanView {
	view := scanView{
		Root:       tree.Root,
		Files:      tree.Files,
		Dirs:       tree.Dirs,
		Links:      tree.Links,
		Ignored:    tree.Ignored,
		Bytes:      tree.Bytes,
		Extensions: tree.Extensions,
		Issues:     []scanIssueView{},
	}
	for _, issue := range tree.Issues {
		view.Issues = append(view.Issues, scanIssueView{Path: issue.RelPath, Error: issue.Err.Error()})
	}
	return view
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var flags deliveryFlags

	cmd := &cobra.Command{
		Use:   "scan <delivery-dir>",
		Short: "Inventory a delivery folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := ctx.engine()
			if err != nil {
				return err
			}
			p, err := engine.LoadProfile(flags.profile)
			if err != nil {
				return err
			}
			tree, err := engine.Scan(cmd.Context(), args[0], p)
			if err != nil {
				return err
			}

			view := newScanView(tree)
			if flags.json {
				return writeJSON(cmd, view)
			}

			out := cmd.OutOrStdout()
			color := shouldColorize(out)
			fmt.Fprintln(out, renderTable(
				[]string{"Root", "Files", "Dirs", "Links", "Ignored", "Size"},
				[][]string{{
					view.Root,
					strconv.Itoa(view.Files),
					strconv.Itoa(view.Dirs),
					strconv.Itoa(view.Links),
					strconv.Itoa(view.Ignored),
					formatBytes(view.Bytes),
				}},
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
			))

			if len(view.Extensions) > 0 {
				printSection(out, "Extensions", color)
				exts := make([]string, 0, len(view.Extensions))
				for ext := range view.Extensions {
					exts = append(exts, ext)
				}
				sort.Strings(exts)
				rows := make([][]string, 0, len(exts))
				for _, ext := range exts {
					label := ext
					if label == "" {
						label = "(none)"
					}
					rows = append(rows, []string{label, strconv.Itoa(view.Extensions[ext])})
				}
				fmt.Fprintln(out, renderTable([]string{"Extension", "Files"}, rows, []columnAlignment{alignLeft, alignRight}))
			}

			if len(view.Issues) > 0 {
				printSection(out, "Unreadable", color)
				rows := make([][]string, 0, len(view.Issues))
				for _, issue := range view.Issues {
					rows = append(rows, []string{issue.Path, issue.Error})
				}
				fmt.Fprintln(out, renderTable([]string{"Path", "Error"}, rows, nil))
			}
			return nil
		},
	}
	flags.bindProfile(cmd)
	return cmd
}
