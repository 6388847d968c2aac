package sites

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	domain "github.com/donaldgifford/frommer-watch/pkg/types"
)

// minNumrichTitleLen drops navigation and icon links.
const minNumrichTitleLen = 5

// NumrichParser scans every link on a Numrich results page. The site has
// no stable card markup, so all anchors with enough text are candidates
// and no price is extracted.
type NumrichParser struct {
	origin string
}

// Parse implements Parser.
func (p *NumrichParser) Parse(page string) ([]domain.Listing, error) {
	doc, err := newDocument(page)
	if err != nil {
		return nil, err
	}

	var listings []domain.Listing
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		title := text(a)
		if utf8.RuneCountInString(title) < minNumrichTitleLen {
			return
		}
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" {
			return
		}

		listings = append(listings, domain.Listing{
			Site:  kinds[NumrichID].label,
			Title: title,
			URL:   absolutize(p.origin, href),
		})
	})

	return listings, nil
}
