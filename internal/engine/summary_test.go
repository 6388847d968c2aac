package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domain "github.com/donaldgifford/frommer-watch/pkg/types"
)

func TestComposeSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		subject string
		found   []domain.Listing
		want    string
	}{
		{
			name:    "single listing without price keeps trailing space",
			subject: "Frommer Stop",
			found: []domain.Listing{
				{Site: "eBay", Title: "Frommer Stop firing pin NOS", URL: "https://x/y"},
			},
			want: "1 new Frommer Stop part(s) found:\n\neBay: Frommer Stop firing pin NOS\nhttps://x/y ",
		},
		{
			name:    "multiple listings in found order",
			subject: "Frommer Stop",
			found: []domain.Listing{
				{Site: "eBay", Title: "Frommer firing pin", URL: "https://www.ebay.com/itm/1", Price: "$45.00"},
				{Site: "GunBroker", Title: "Frommer Stop pin", URL: "https://www.gunbroker.com/item/2", Price: "3 bids"},
			},
			want: "2 new Frommer Stop part(s) found:\n\n" +
				"eBay: Frommer firing pin\nhttps://www.ebay.com/itm/1 $45.00\n\n" +
				"GunBroker: Frommer Stop pin\nhttps://www.gunbroker.com/item/2 3 bids",
		},
		{
			name:  "empty subject falls back to default",
			found: []domain.Listing{{Site: "Numrich", Title: "Frommer pin", URL: "https://n/1"}},
			want:  "1 new Frommer Stop part(s) found:\n\nNumrich: Frommer pin\nhttps://n/1 ",
		},
		{
			name:    "no listings yields header only",
			subject: "Frommer Stop",
			want:    "0 new Frommer Stop part(s) found:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ComposeSummary(tt.subject, tt.found))
		})
	}
}
