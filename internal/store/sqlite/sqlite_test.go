package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/loomplan-ai/loomplan-notify/internal/store"
	"github.com/loomplan-ai/loomplan-notify/internal/store/storetest"
)

func makeLiteStore(t *testing.T) store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notify.db")
	s, err := New(path)
	if err != nil {
		t.Fatalf("sqlite open: %v", err)
	}
	return s
}

func TestSQLiteStore_Compliance(t *testing.T) {
	storetest.Run(t, makeLiteStore)
}
