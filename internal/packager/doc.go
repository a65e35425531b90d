// Package packager executes a plan: it copies each COPY and OVERWRITE entry
// through a verified temp-file copy, records a CopyResult per entry, reports
// progress after every entry, and stops between entries when cancellation is
// requested.
//
// Source files are only ever read. A failed entry is recorded and execution
// moves on; only setup problems such as a held output lock abort the run.
package packager
