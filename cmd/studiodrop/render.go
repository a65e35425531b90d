package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"studiodrop/internal/finding"
	"studiodrop/internal/services"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiGray   = "\x1b[90m"
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func colorize(text, color string, enabled bool) string {
	if !enabled || color == "" {
		return text
	}
	return color + text + ansiReset
}

func statusColor(status finding.Status) string {
	switch status {
	case finding.StatusOK:
		return ansiGreen
	case finding.StatusWarning:
		return ansiYellow
	case finding.StatusError:
		return ansiRed
	case finding.StatusCancelled:
		return ansiGray
	default:
		return ""
	}
}

func severityColor(severity finding.Severity) string {
	switch severity {
	case finding.Error:
		return ansiRed
	case finding.Warning:
		return ansiYellow
	default:
		return ansiBlue
	}
}

func renderStatus(status finding.Status, enabled bool) string {
	return colorize(string(status), statusColor(status), enabled)
}

func renderSectionHeader(title string, enabled bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	return []string{colorize(line, ansiBlue, enabled), colorize(rule, ansiBlue, enabled)}
}

func printSection(w io.Writer, title string, enabled bool) {
	fmt.Fprintln(w)
	for _, line := range renderSectionHeader(title, enabled) {
		fmt.Fprintln(w, line)
	}
}

func formatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

func renderFindings(w io.Writer, findings []finding.Finding, enabled bool) {
	if len(findings) == 0 {
		fmt.Fprintln(w, "No findings.")
		return
	}
	rows := make([][]string, 0, len(findings))
	for _, f := range findings {
		rows = append(rows, []string{
			colorize(f.Severity.String(), severityColor(f.Severity), enabled),
			f.Rule,
			f.Path,
			f.Message,
		})
	}
	fmt.Fprintln(w, renderTable([]string{"Severity", "Rule", "Path", "Message"}, rows, nil))
}

// statusError reports a run whose outcome should fail the command.
type statusError struct {
	status finding.Status
	detail string
}

func (e *statusError) Error() string {
	if e.detail == "" {
		return fmt.Sprintf("run status %s", e.status)
	}
	return fmt.Sprintf("run status %s: %s", e.status, e.detail)
}

func exitCode(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		switch se.status {
		case finding.StatusError:
			return 2
		case finding.StatusCancelled:
			return 3
		}
	}
	return 1
}

func formatError(err error) string {
	msg := "Error: " + err.Error()
	if hint := errorHint(err); hint != "" {
		msg += "\nHint: " + hint
	}
	return msg
}

func errorHint(err error) string {
	switch services.Kind(err) {
	case "path_not_found":
		return "check the delivery folder path"
	case "profile_load":
		return "run `studiodrop profile list` to see available profiles"
	case "plan_unresolved":
		return "pass --version, --asset or --project, or choose another --output"
	case "locked":
		return "another package run is writing to this output root; wait for it to finish"
	case "preflight":
		return "free space on the output volume or choose another --output"
	case "configuration":
		return "run `studiodrop config validate`"
	default:
		return ""
	}
}
