package preflight

import (
	"strings"

	"studiodrop/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// CheckOutput verifies that root, or its nearest existing ancestor when root
// does not exist yet, is writable and that the filesystem holding it has
// room for needBytes plus marginBytes.
func CheckOutput(root string, needBytes, marginBytes int64) []Result {
	anchor, err := nearestExisting(root)
	if err != nil {
		return []Result{{Name: "Output root", Detail: err.Error()}}
	}
	results := []Result{CheckDirectoryAccess("Output root", anchor)}
	if needBytes < 0 {
		needBytes = 0
	}
	if marginBytes < 0 {
		marginBytes = 0
	}
	results = append(results, CheckFreeSpace("Free space", anchor, uint64(needBytes)+uint64(marginBytes)))
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// Err folds failed results into a single ErrPreflight error, or nil.
func Err(results []Result) error {
	failed := Failed(results)
	if len(failed) == 0 {
		return nil
	}
	details := make([]string, 0, len(failed))
	for _, r := range failed {
		details = append(details, r.Name+": "+r.Detail)
	}
	return services.Wrap(services.ErrPreflight, "preflight", "check output", strings.Join(details, "; "), nil)
}
