package profile

import (
	"fmt"
	"regexp"
	"strings"
)

const tokenSeparators = "_-."

// VersionToken is a version match inside one path segment.
type VersionToken struct {
	// Token is the matched text, for example "v001".
	Token string
	// Prefix is the segment text before the token with trailing separators
	// removed. It identifies the asset the token belongs to.
	Prefix string
	// Whole is true when the token is the entire segment.
	Whole bool
}

// Key returns the case-folded token used to compare versions.
func (v VersionToken) Key() string {
	return strings.ToLower(v.Token)
}

// MatchVersion finds the first version token in a single path segment. Tokens
// must be bounded by the segment edges or one of "_", "-", ".".
func (p *Profile) MatchVersion(segment string) (VersionToken, bool) {
	loc := p.versionRE.FindStringSubmatchIndex(segment)
	if loc == nil || loc[2] < 0 {
		return VersionToken{}, false
	}
	token := segment[loc[2]:loc[3]]
	return VersionToken{
		Token:  token,
		Prefix: strings.TrimRight(segment[:loc[2]], tokenSeparators),
		Whole:  token == segment,
	}, true
}

func compileVersionPattern(pattern string) (*regexp.Regexp, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("version_pattern is empty")
	}
	anchored, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, fmt.Errorf("version_pattern: %w", err)
	}
	if anchored.MatchString("") {
		return nil, fmt.Errorf("version_pattern %q matches the empty string", pattern)
	}
	return regexp.Compile(`(?i)(?:^|[_\-.])(` + pattern + `)(?:$|[_\-.])`)
}
