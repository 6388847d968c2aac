// Package engine runs one check cycle: query every configured marketplace,
// keep new listings whose titles match the keyword pattern, and hand a
// summary to the notifier.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/donaldgifford/frommer-watch/internal/fetch"
	"github.com/donaldgifford/frommer-watch/internal/match"
	"github.com/donaldgifford/frommer-watch/internal/metrics"
	"github.com/donaldgifford/frommer-watch/internal/notify"
	"github.com/donaldgifford/frommer-watch/internal/sites"
	domain "github.com/donaldgifford/frommer-watch/pkg/types"
)

// DefaultSubject names the watched part in summary headers.
const DefaultSubject = "Frommer Stop"

// Fetcher retrieves one marketplace page. Failures are reported in the
// Result, never returned.
type Fetcher interface {
	Fetch(ctx context.Context, url string) fetch.Result
}

// SiteReport records what happened to one site during a run.
type SiteReport struct {
	ID       string
	Label    string
	URL      string
	FetchErr error
	ParseErr error
	Parsed   int // listings extracted from the page
	Matched  int // of those, titles matching the keyword pattern
	New      int // of those, URLs not already found earlier in the run
}

// Report is the outcome of one run.
type Report struct {
	RunID     string
	Query     string
	Sites     []SiteReport
	Found     []domain.Listing
	Message   string
	Notified  bool
	NotifyErr error
	Duration  time.Duration
}

// Engine orchestrates a single check-and-notify cycle.
type Engine struct {
	sites    []sites.Site
	matcher  *match.Matcher
	fetcher  Fetcher
	notifier notify.Notifier
	log      *slog.Logger

	subject  string
	newRunID func() string
}

// NewEngine creates a new Engine with injected dependencies. Sites are
// visited in the order given.
func NewEngine(
	s []sites.Site,
	m *match.Matcher,
	f Fetcher,
	n notify.Notifier,
	opts ...EngineOption,
) *Engine {
	eng := &Engine{
		sites:    s,
		matcher:  m,
		fetcher:  f,
		notifier: n,
		log:      slog.Default(),
		subject:  DefaultSubject,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithSubject sets the part name used in the summary header.
func WithSubject(subject string) EngineOption {
	return func(e *Engine) {
		if subject != "" {
			e.subject = subject
		}
	}
}

// WithRunID overrides run id generation.
func WithRunID(fn func() string) EngineOption {
	return func(e *Engine) {
		e.newRunID = fn
	}
}

// RunOnce performs one cycle. Site failures and notification failures are
// logged and recorded in the Report; the only error returned is ctx's, when
// it is cancelled before the run completes.
func (eng *Engine) RunOnce(ctx context.Context) (*Report, error) {
	start := time.Now()
	metrics.RunsTotal.Inc()

	report := &Report{
		RunID: eng.newRunID(),
		// Only the primary keyword is searched; the full pattern filters.
		Query: url.QueryEscape(eng.matcher.Primary()),
	}
	log := eng.log.With("run_id", report.RunID)
	log.Debug("run started", "keywords", eng.matcher.Keywords(), "sites", len(eng.sites))

	defer func() {
		report.Duration = time.Since(start)
		metrics.RunDuration.Observe(report.Duration.Seconds())
		metrics.LastRunTimestamp.SetToCurrentTime()
	}()

	seen := make(map[string]struct{})

	for i := range eng.sites {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("run interrupted: %w", err)
		}

		sr := eng.checkSite(ctx, log, &eng.sites[i], report.Query, seen, &report.Found)
		report.Sites = append(report.Sites, sr)
	}

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("run interrupted: %w", err)
	}

	metrics.LastRunFound.Set(float64(len(report.Found)))

	if len(report.Found) == 0 {
		log.Info("no matches found")
		return report, nil
	}

	log.Info("matches found", "count", len(report.Found))
	report.Message = ComposeSummary(eng.subject, report.Found)

	if err := eng.notifier.Send(ctx, report.Message); err != nil {
		log.Warn("notification failed", "error", err)
		metrics.NotificationFailuresTotal.Inc()
		report.NotifyErr = err
		return report, nil
	}
	report.Notified = true

	return report, nil
}

func (eng *Engine) checkSite(
	ctx context.Context,
	log *slog.Logger,
	site *sites.Site,
	query string,
	seen map[string]struct{},
	found *[]domain.Listing,
) SiteReport {
	sr := SiteReport{
		ID:    site.ID,
		Label: site.Label,
		URL:   site.SearchURL(query),
	}
	log = log.With("site", site.ID)

	log.Info("checking site", "url", sr.URL)

	// The fetcher has already logged the failure.
	res := eng.fetcher.Fetch(ctx, sr.URL)
	if !res.OK() {
		sr.FetchErr = res.Err
		metrics.FetchesTotal.WithLabelValues(site.ID, metrics.OutcomeError).Inc()
		return sr
	}
	metrics.FetchesTotal.WithLabelValues(site.ID, metrics.OutcomeOK).Inc()

	if res.Body == "" {
		log.Debug("empty response, skipping")
		return sr
	}

	parsed := sites.SafeParse(site.Parser, res.Body)
	if parsed.Err != nil {
		sr.ParseErr = parsed.Err
		metrics.ParseErrorsTotal.WithLabelValues(site.ID).Inc()
		log.Warn("parse failed", "error", parsed.Err)
		return sr
	}

	sr.Parsed = len(parsed.Listings)
	metrics.ListingsParsedTotal.WithLabelValues(site.ID).Add(float64(sr.Parsed))

	for _, l := range parsed.Listings {
		if !eng.matcher.Matches(l.Title) {
			continue
		}
		sr.Matched++

		if _, dup := seen[l.URL]; dup {
			continue
		}
		seen[l.URL] = struct{}{}
		*found = append(*found, l)
		sr.New++
	}

	if sr.New > 0 {
		metrics.MatchesTotal.WithLabelValues(site.ID).Add(float64(sr.New))
	}
	log.Debug("site checked",
		"parsed", sr.Parsed,
		"matched", sr.Matched,
		"new", sr.New,
	)

	return sr
}
