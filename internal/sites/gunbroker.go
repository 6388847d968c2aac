package sites

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	domain "github.com/donaldgifford/frommer-watch/pkg/types"
)

// GunBroker serves several page variants, so every lookup has fallbacks.
// Card alternatives are matched as one group (document order, each card
// once); title and price alternatives are tried in order.
var (
	gunBrokerCardSelector = ".gbresult, .search-result, .result, .results-item"

	gunBrokerTitleSelectors = []string{
		".gbresultTitle a",
		"a.gbresultTitle",
		".result-title a",
		"a.item-link",
		"a",
	}

	gunBrokerPriceSelectors = []string{
		".price",
		".currentPrice",
		".item-price",
		".bids",
	}
)

// GunBrokerParser reads GunBroker search results.
type GunBrokerParser struct {
	origin string
}

// Parse implements Parser.
func (p *GunBrokerParser) Parse(page string) ([]domain.Listing, error) {
	doc, err := newDocument(page)
	if err != nil {
		return nil, err
	}

	var listings []domain.Listing
	doc.Find(gunBrokerCardSelector).Each(func(_ int, card *goquery.Selection) {
		a := firstOf(card, gunBrokerTitleSelectors)
		if a == nil {
			return
		}
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" {
			return
		}

		var price string
		if pt := firstOf(card, gunBrokerPriceSelectors); pt != nil {
			price = text(pt)
		}

		listings = append(listings, domain.Listing{
			Site:  kinds[GunBrokerID].label,
			Title: text(a),
			URL:   absolutize(p.origin, href),
			Price: price,
		})
	})

	return listings, nil
}
