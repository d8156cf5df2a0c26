package copywriter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPhrase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"  Rise and shine.\n"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-model", time.Second)
	msg, err := c.Phrase(context.Background(), "say good morning")
	require.NoError(t, err)
	require.Equal(t, "Rise and shine.", msg)
}

func TestPhrase_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "test-model", time.Second)
	_, err := c.Phrase(context.Background(), "anything")
	require.Error(t, err)
}

func TestPhrase_EmptyPrompt(t *testing.T) {
	c := New("http://localhost:0", "test-model", time.Second)
	_, err := c.Phrase(context.Background(), "")
	require.Error(t, err)
}

func TestHealthPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "test-model", time.Second)
	require.NoError(t, c.HealthPing(context.Background()))
}
