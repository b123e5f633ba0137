// Package output captures raw build text and answers the two questions the
// coordinator asks about it: does a pattern match, and do the diagnostic codes
// satisfy a warnings/errors rule.
package output

import (
	"sort"
	"strings"
	"sync"

	regexp "github.com/grafana/regexp"
)

// Kind selects a diagnostic stream.
type Kind int

const (
	Warnings Kind = iota
	Errors
)

func (k Kind) String() string {
	if k == Errors {
		return "errors"
	}
	return "warnings"
}

// MatchType selects how Output patterns are interpreted.
type MatchType string

const (
	MatchDefault  MatchType = "default"
	MatchRegex    MatchType = "regex"
	MatchWildcard MatchType = "wildcard"
)

// diagnosticRe recognizes "warning CS0168:" / "error MSB3073:" style lines.
var diagnosticRe = regexp.MustCompile(`(?i)\b(warning|error)\s+([A-Za-z]+[0-9]+)\s*:`)

// Build holds the most recent raw build text and the diagnostic codes seen
// since the last Reset.
type Build struct {
	mu       sync.RWMutex
	raw      string
	warnings map[string]bool
	errors   map[string]bool
}

func NewBuild() *Build {
	return &Build{warnings: map[string]bool{}, errors: map[string]bool{}}
}

// UpdateRaw replaces the captured build text and adds its diagnostic codes to
// the ones already seen.
func (b *Build) UpdateRaw(data string) {
	matches := diagnosticRe.FindAllStringSubmatch(data, -1)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.raw = data
	if b.warnings == nil {
		b.warnings, b.errors = map[string]bool{}, map[string]bool{}
	}
	for _, m := range matches {
		code := strings.ToUpper(m[2])
		if strings.EqualFold(m[1], "error") {
			b.errors[code] = true
		} else {
			b.warnings[code] = true
		}
	}
}

// Reset forgets the captured text and every diagnostic code.
func (b *Build) Reset() {
	b.mu.Lock()
	b.raw = ""
	b.warnings, b.errors = map[string]bool{}, map[string]bool{}
	b.mu.Unlock()
}

// Raw returns the captured build text.
func (b *Build) Raw() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.raw
}

// Codes returns the distinct codes of kind, sorted.
func (b *Build) Codes(kind Kind) []string {
	b.mu.RLock()
	set := b.warnings
	if kind == Errors {
		set = b.errors
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	b.mu.RUnlock()
	sort.Strings(out)
	return out
}

// CheckRule reports whether the captured diagnostics of kind satisfy a rule.
// No diagnostics never match. An empty code list matches any diagnostic.
// A whitelist matches when a captured code is listed; a blacklist matches when
// a captured code is not listed.
func (b *Build) CheckRule(kind Kind, whitelist bool, codes []string) bool {
	found := b.Codes(kind)
	if len(found) == 0 {
		return false
	}
	if len(codes) == 0 {
		return true
	}
	listed := make(map[string]bool, len(codes))
	for _, c := range codes {
		listed[strings.ToUpper(strings.TrimSpace(c))] = true
	}
	for _, c := range found {
		if listed[c] == whitelist {
			return true
		}
	}
	return false
}

// Match reports whether pattern matches text.
func (b *Build) Match(pattern string, t MatchType, text string) bool {
	return Match(pattern, t, text)
}

// Match interprets pattern by t: default is a substring test, regex is an
// unanchored regular expression, wildcard uses * and ? against the whole text.
// Invalid expressions never match.
func Match(pattern string, t MatchType, text string) bool {
	switch MatchType(strings.ToLower(string(t))) {
	case MatchRegex:
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false
		}
		return re.MatchString(text)
	case MatchWildcard:
		re, err := regexp.Compile(wildcardToRegex(pattern))
		if err != nil {
			return false
		}
		return re.MatchString(text)
	}
	return strings.Contains(text, pattern)
}

func wildcardToRegex(p string) string {
	var b strings.Builder
	b.WriteString(`(?s)^`)
	for _, r := range p {
		switch r {
		case '*':
			b.WriteString(`.*`)
		case '?':
			b.WriteString(`.`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString(`$`)
	return b.String()
}
