package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/donaldgifford/frommer-watch/internal/engine"
	domain "github.com/donaldgifford/frommer-watch/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

type siteView struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Template  string `json:"template"`
	SearchURL string `json:"search_url"`
}

func printSitesTable(w io.Writer, sites []siteView) error {
	tw := newTabWriter(w)
	tw.writef("ID\tLABEL\tSEARCH URL\n")
	for i := range sites {
		tw.writef("%s\t%s\t%s\n", sites[i].ID, sites[i].Label, sites[i].SearchURL)
	}
	return tw.finish()
}

type parsedView struct {
	domain.Listing
	Match bool `json:"match"`
}

func printParsedTable(w io.Writer, listings []parsedView) error {
	tw := newTabWriter(w)
	tw.writef("MATCH\tTITLE\tPRICE\tURL\n")
	for i := range listings {
		match := "-"
		if listings[i].Match {
			match = "yes"
		}
		price := listings[i].Price
		if price == "" {
			price = "-"
		}
		tw.writef("%s\t%s\t%s\t%s\n",
			match,
			truncate(listings[i].Title, 60),
			price,
			listings[i].URL,
		)
	}
	return tw.finish()
}

type siteReportView struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	FetchError string `json:"fetch_error,omitempty"`
	ParseError string `json:"parse_error,omitempty"`
	Parsed     int    `json:"parsed"`
	Matched    int    `json:"matched"`
	New        int    `json:"new"`
}

type reportView struct {
	RunID       string           `json:"run_id"`
	Query       string           `json:"query"`
	Sites       []siteReportView `json:"sites"`
	Found       []domain.Listing `json:"found"`
	Notified    bool             `json:"notified"`
	NotifyError string           `json:"notify_error,omitempty"`
	DurationMS  int64            `json:"duration_ms"`
}

func newReportView(r *engine.Report) reportView {
	v := reportView{
		RunID:      r.RunID,
		Query:      r.Query,
		Sites:      make([]siteReportView, 0, len(r.Sites)),
		Found:      r.Found,
		Notified:   r.Notified,
		DurationMS: r.Duration.Milliseconds(),
	}
	if v.Found == nil {
		v.Found = []domain.Listing{}
	}
	if r.NotifyErr != nil {
		v.NotifyError = r.NotifyErr.Error()
	}

	for i := range r.Sites {
		s := &r.Sites[i]
		sv := siteReportView{
			ID:      s.ID,
			URL:     s.URL,
			Parsed:  s.Parsed,
			Matched: s.Matched,
			New:     s.New,
		}
		if s.FetchErr != nil {
			sv.FetchError = s.FetchErr.Error()
		}
		if s.ParseErr != nil {
			sv.ParseError = s.ParseErr.Error()
		}
		v.Sites = append(v.Sites, sv)
	}

	return v
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

