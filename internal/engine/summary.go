package engine

import (
	"fmt"
	"strings"

	domain "github.com/donaldgifford/frommer-watch/pkg/types"
)

// ComposeSummary renders found listings as a notification message: a count
// header followed by one "site: title" / "url price" block per listing,
// blocks separated by a blank line.
func ComposeSummary(subject string, found []domain.Listing) string {
	if subject == "" {
		subject = DefaultSubject
	}

	blocks := make([]string, 0, len(found)+1)
	blocks = append(blocks, fmt.Sprintf("%d new %s part(s) found:", len(found), subject))
	for _, l := range found {
		blocks = append(blocks, fmt.Sprintf("%s: %s\n%s %s", l.Site, l.Title, l.URL, l.Price))
	}

	return strings.Join(blocks, "\n\n")
}
