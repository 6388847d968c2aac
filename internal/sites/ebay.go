package sites

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	domain "github.com/donaldgifford/frommer-watch/pkg/types"
)

const (
	ebayCardSelector  = ".s-item"
	ebayLinkSelector  = ".s-item__link"
	ebayPriceSelector = ".s-item__price"
)

// EbayParser reads eBay search result cards. eBay links are absolute, so
// no origin is needed.
type EbayParser struct{}

// Parse implements Parser.
func (p *EbayParser) Parse(page string) ([]domain.Listing, error) {
	doc, err := newDocument(page)
	if err != nil {
		return nil, err
	}

	var listings []domain.Listing
	doc.Find(ebayCardSelector).Each(func(_ int, card *goquery.Selection) {
		a := card.Find(ebayLinkSelector).First()
		if a.Length() == 0 {
			return
		}
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" {
			return
		}

		var price string
		if pt := card.Find(ebayPriceSelector).First(); pt.Length() > 0 {
			price = text(pt)
		}

		listings = append(listings, domain.Listing{
			Site:  kinds[EbayID].label,
			Title: text(a),
			URL:   href,
			Price: price,
		})
	})

	return listings, nil
}
