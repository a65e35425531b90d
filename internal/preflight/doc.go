// Package preflight checks that an output root can take a package before any
// file is copied.
//
// The packaging workflow calls CheckOutput with the plan's write volume and
// aborts with services.ErrPreflight when a check fails. The CLI "config
// validate" command reuses CheckDirectoryAccess for the configured state and
// log directories.
package preflight
