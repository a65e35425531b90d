package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPathNotFound   = errors.New("path not found")
	ErrProfileLoad    = errors.New("profile load error")
	ErrPlanUnresolved = errors.New("plan unresolved")
	ErrCopy           = errors.New("copy error")
	ErrPermission     = errors.New("permission denied")
	ErrCancelled      = errors.New("cancelled")
	ErrConfiguration  = errors.New("configuration error")
	ErrPreflight      = errors.New("preflight check failed")
	ErrLocked         = errors.New("output root locked")
	ErrTransient      = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind maps an error to a short snake_case classification used for the
// event_type of log lines and for CLI hints.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPathNotFound):
		return "path_not_found"
	case errors.Is(err, ErrProfileLoad):
		return "profile_load"
	case errors.Is(err, ErrPlanUnresolved):
		return "plan_unresolved"
	case errors.Is(err, ErrCancelled):
		return "cancelled"
	case errors.Is(err, ErrPreflight):
		return "preflight"
	case errors.Is(err, ErrLocked):
		return "locked"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrPermission):
		return "permission"
	case errors.Is(err, ErrCopy):
		return "copy"
	default:
		return "failure"
	}
}

// IsFatal reports whether err aborts a run rather than being recorded on it.
// A bad input root is fatal even when the cause is a permission error.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrPathNotFound) {
		return true
	}
	return !errors.Is(err, ErrCopy) && !errors.Is(err, ErrPermission)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
