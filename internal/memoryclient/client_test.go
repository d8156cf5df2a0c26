package memoryclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/users/u1/memory/summary", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"recurringTopics": ["spanish"],
			"peakHours": [9, 10],
			"preferredActivities": {"evening": ["reading"]}
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	summary, err := c.Summary(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, []string{"spanish"}, summary.RecurringTopics)
	require.Equal(t, []int{9, 10}, summary.PeakHours)
	require.Equal(t, []string{"reading"}, summary.PreferredActivities["evening"])
}

func TestSummary_NotFoundIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	summary, err := c.Summary(context.Background(), "u1")
	require.NoError(t, err)
	require.Empty(t, summary.RecurringTopics)
}
