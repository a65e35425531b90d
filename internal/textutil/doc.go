// Package textutil provides text helpers for filesystem names.
//
// The primary use cases are:
//   - Sanitizing project and asset names before they become path segments
//   - Normalizing names to Unicode NFC so that visually identical names
//     produced by different operating systems compare equal
//   - Reporting which characters of a name violate a naming policy
package textutil
