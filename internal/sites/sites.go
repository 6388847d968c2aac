// Package sites holds the marketplace registry and the HTML parsers that
// turn a search results page into listings.
package sites

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	domain "github.com/donaldgifford/frommer-watch/pkg/types"
)

// Placeholder is replaced by the URL-encoded query in a site URL template.
const Placeholder = "{q}"

// Site identifiers.
const (
	EbayID      = "ebay"
	GunBrokerID = "gunbroker"
	NumrichID   = "numrich"
)

var (
	// ErrUnknownSite is returned for a site id with no parser.
	ErrUnknownSite = errors.New("unknown site")

	// ErrParserPanic wraps a panic recovered while parsing a page.
	ErrParserPanic = errors.New("parser panic")
)

// Parser extracts candidate listings from one results page.
type Parser interface {
	Parse(html string) ([]domain.Listing, error)
}

// Site is one registry entry: a marketplace, its search URL template, and
// the parser bound to its markup.
type Site struct {
	ID          string
	Label       string
	URLTemplate string
	Parser      Parser
}

// SearchURL substitutes an already-encoded query into the template.
func (s Site) SearchURL(query string) string {
	return strings.ReplaceAll(s.URLTemplate, Placeholder, query)
}

type kind struct {
	label     string
	template  string
	newParser func(origin string) Parser
}

var registryOrder = []string{EbayID, GunBrokerID, NumrichID}

var kinds = map[string]kind{
	EbayID: {
		label:     "eBay",
		template:  "https://www.ebay.com/sch/i.html?_nkw={q}&_sop=10",
		newParser: func(string) Parser { return &EbayParser{} },
	},
	GunBrokerID: {
		label:     "GunBroker",
		template:  "https://www.gunbroker.com/All/search?Keywords={q}",
		newParser: func(origin string) Parser { return &GunBrokerParser{origin: origin} },
	},
	NumrichID: {
		label:     "Numrich",
		template:  "https://www.numrichgunparts.com/search?query={q}",
		newParser: func(origin string) Parser { return &NumrichParser{origin: origin} },
	},
}

// Known returns the supported site ids in default search order.
func Known() []string {
	out := make([]string, len(registryOrder))
	copy(out, registryOrder)
	return out
}

// DefaultTemplate returns the built-in search URL template for id.
func DefaultTemplate(id string) (string, bool) {
	k, ok := kinds[id]
	if !ok {
		return "", false
	}
	return k.template, true
}

// New binds the parser for id to the given URL template. Relative links
// found by the parser are resolved against the template's origin.
func New(id, template string) (Site, error) {
	k, ok := kinds[id]
	if !ok {
		return Site{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownSite, id, strings.Join(registryOrder, ", "))
	}

	origin, err := Origin(template)
	if err != nil {
		return Site{}, fmt.Errorf("site %s: %w", id, err)
	}

	return Site{
		ID:          id,
		Label:       k.label,
		URLTemplate: template,
		Parser:      k.newParser(origin),
	}, nil
}

// Origin validates a URL template and returns its scheme://host.
func Origin(template string) (string, error) {
	if !strings.Contains(template, Placeholder) {
		return "", fmt.Errorf("url template %q has no %s placeholder", template, Placeholder)
	}

	u, err := url.Parse(strings.ReplaceAll(template, Placeholder, "q"))
	if err != nil {
		return "", fmt.Errorf("parsing url template: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("url template %q is not absolute", template)
	}

	return u.Scheme + "://" + u.Host, nil
}

// ParseResult is the outcome of running a parser over one page. A failed
// parse carries Err and no listings.
type ParseResult struct {
	Listings []domain.Listing
	Err      error
}

// SafeParse runs p over html, converting both returned errors and panics
// into ParseResult.Err so one site's markup change cannot abort a run.
func SafeParse(p Parser, html string) (res ParseResult) {
	defer func() {
		if r := recover(); r != nil {
			res = ParseResult{Err: fmt.Errorf("%w: %v", ErrParserPanic, r)}
		}
	}()

	listings, err := p.Parse(html)
	if err != nil {
		return ParseResult{Err: err}
	}

	return ParseResult{Listings: listings}
}
