package textutil

import "strings"

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// SanitizeSegment sanitizes a name that becomes a single path segment of the
// studio drop layout. Spaces become underscores and dot-only names are
// rejected by returning an empty string.
func SanitizeSegment(name string) string {
	name = SanitizeFileName(NFC(name))
	name = strings.Join(strings.Fields(name), "_")
	name = strings.Trim(name, "_-.")
	if name == "" || strings.Trim(name, ".") == "" {
		return ""
	}
	return name
}

// SanitizeToken converts a string to a lowercase filesystem-safe token.
// Letters are lowercased, digits and hyphens/underscores are kept, everything
// else becomes an underscore. Returns "unknown" for empty input.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}

// OffendingChars returns the distinct characters of name that appear in
// disallowed, in first-seen order. Spaces are reported when allowSpaces is
// false regardless of disallowed.
func OffendingChars(name, disallowed string, allowSpaces bool) []rune {
	var out []rune
	seen := make(map[rune]struct{})
	for _, r := range name {
		bad := strings.ContainsRune(disallowed, r)
		if r == ' ' {
			bad = !allowSpaces
		}
		if !bad {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
