// Package match decides whether a listing title mentions one of the
// watched keyword phrases.
package match

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoKeywords is returned when a Matcher is built without any keyword.
var ErrNoKeywords = errors.New("at least one keyword is required")

// Matcher is a compiled, case-insensitive alternation of keyword phrases.
// It holds no mutable state and is safe to reuse.
type Matcher struct {
	keywords []string
	pattern  *regexp.Regexp
}

// New compiles keywords into a Matcher. Keywords are matched literally;
// a blank keyword is rejected because it would match every title.
func New(keywords []string) (*Matcher, error) {
	if len(keywords) == 0 {
		return nil, ErrNoKeywords
	}

	alts := make([]string, 0, len(keywords))
	for i, k := range keywords {
		if strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("keyword %d is blank", i)
		}
		alts = append(alts, regexp.QuoteMeta(strings.ToLower(k)))
	}

	re, err := regexp.Compile("(?i)" + strings.Join(alts, "|"))
	if err != nil {
		return nil, fmt.Errorf("compiling keyword pattern: %w", err)
	}

	kw := make([]string, len(keywords))
	copy(kw, keywords)

	return &Matcher{keywords: kw, pattern: re}, nil
}

// MustNew is like New but panics on error. For package-level fixtures.
func MustNew(keywords ...string) *Matcher {
	m, err := New(keywords)
	if err != nil {
		panic(err)
	}
	return m
}

// Matches reports whether title contains any keyword, ignoring case.
// An empty title never matches.
func (m *Matcher) Matches(title string) bool {
	if title == "" {
		return false
	}
	return m.pattern.MatchString(strings.ToLower(title))
}

// Primary returns the first keyword, the one sent as the search query.
func (m *Matcher) Primary() string {
	return m.keywords[0]
}

// Keywords returns a copy of the configured phrases.
func (m *Matcher) Keywords() []string {
	out := make([]string, len(m.keywords))
	copy(out, m.keywords)
	return out
}
