// Package scanner walks a delivery folder and builds the in-memory tree the
// validator and plan builder work from.
//
// Entries are produced depth first with directories before their contents and
// siblings in lexical order, so two scans of an unchanged folder yield the same
// tree. Symbolic links are recorded but never followed. Unreadable
// subdirectories are skipped and reported as issues rather than failing the
// scan.
package scanner
