// Package domain defines the core types shared by the marketplace watcher.
package domain

// Listing is one marketplace search result extracted from a results page.
// Listings are never modified after a parser creates them; URL is the
// identity used for de-duplication within a run.
type Listing struct {
	Site  string `json:"site"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Price string `json:"price,omitempty"`
}
