// Package finding holds the validation result model shared by the validator,
// the plan builder, and the manifest emitter.
package finding

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Severity orders findings; ERROR is highest.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

// String returns the upper-case label written to manifests.
func (s Severity) String() string {
	switch s {
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ParseSeverity maps a label back to its severity.
func ParseSeverity(label string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "INFO":
		return Info, nil
	case "WARNING", "WARN":
		return Warning, nil
	case "ERROR":
		return Error, nil
	default:
		return Info, fmt.Errorf("unknown severity %q", label)
	}
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	parsed, err := ParseSeverity(label)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Finding is one validation result. Path is slash separated and relative to
// the input root; it is empty for tree-wide findings.
type Finding struct {
	Severity Severity `json:"severity"`
	Rule     string   `json:"rule"`
	Message  string   `json:"message"`
	Path     string   `json:"path,omitempty"`
}

// New builds a finding with a formatted message.
func New(severity Severity, rule, path, format string, args ...any) Finding {
	return Finding{
		Severity: severity,
		Rule:     rule,
		Message:  fmt.Sprintf(format, args...),
		Path:     path,
	}
}

// Sort orders findings by rule identifier, then path. Equal keys keep their
// relative order.
func Sort(findings []Finding) {
	slices.SortStableFunc(findings, func(a, b Finding) int {
		if c := cmp.Compare(a.Rule, b.Rule); c != 0 {
			return c
		}
		return cmp.Compare(a.Path, b.Path)
	})
}

// Count returns how many findings carry the given severity.
func Count(findings []Finding, severity Severity) int {
	n := 0
	for _, f := range findings {
		if f.Severity == severity {
			n++
		}
	}
	return n
}

// Max returns the highest severity present and false when findings is empty.
func Max(findings []Finding) (Severity, bool) {
	if len(findings) == 0 {
		return Info, false
	}
	highest := Info
	for _, f := range findings {
		if f.Severity > highest {
			highest = f.Severity
		}
	}
	return highest, true
}
