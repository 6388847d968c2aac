package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistered(t *testing.T) {
	t.Parallel()

	// Verify all metrics are non-nil (registered via promauto on package init).
	assert.NotNil(t, FetchesTotal)
	assert.NotNil(t, ParseErrorsTotal)
	assert.NotNil(t, ListingsParsedTotal)
	assert.NotNil(t, MatchesTotal)
	assert.NotNil(t, RunsTotal)
	assert.NotNil(t, RunDuration)
	assert.NotNil(t, LastRunFound)
	assert.NotNil(t, LastRunTimestamp)
	assert.NotNil(t, NotificationsSentTotal)
	assert.NotNil(t, NotificationFailuresTotal)
	assert.NotNil(t, NotificationDuration)

	families, err := Registry.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["frommer_runs_total"])
	assert.True(t, names["frommer_run_duration_seconds"])
	assert.False(t, names["go_goroutines"], "runtime collectors must not be on the push registry")
}

func TestPush(t *testing.T) {
	t.Parallel()

	var (
		method string
		path   string
		body   []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	RunsTotal.Inc()

	err := Push(context.Background(), srv.URL, "frommer_watch", map[string]string{"instance": "ci"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/frommer_watch/instance/ci", path)
	assert.NotEmpty(t, body)
}

func TestPush_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := Push(context.Background(), srv.URL, "frommer_watch", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pushing metrics")
}
