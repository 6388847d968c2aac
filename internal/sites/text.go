package sites

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func newDocument(page string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

// text returns the element's text fragments, each whitespace-collapsed,
// joined by single spaces. Script and style contents are ignored.
func text(sel *goquery.Selection) string {
	var parts []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.Join(strings.Fields(n.Data), " "); t != "" {
				parts = append(parts, t)
			}
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range sel.Nodes {
		walk(n)
	}

	return strings.Join(parts, " ")
}

// firstOf returns the first element matched by the earliest selector in
// the list that matches anything inside sel.
func firstOf(sel *goquery.Selection, selectors []string) *goquery.Selection {
	for _, s := range selectors {
		if found := sel.Find(s).First(); found.Length() > 0 {
			return found
		}
	}
	return nil
}

// absolutize resolves href against origin the way the marketplaces link
// their results: root-relative paths get the origin prefixed, anything
// starting with "http" is kept, everything else is treated as a path.
func absolutize(origin, href string) string {
	switch {
	case strings.HasPrefix(href, "/"):
		return origin + href
	case strings.HasPrefix(href, "http"):
		return href
	default:
		return origin + "/" + strings.TrimLeft(href, "/")
	}
}
