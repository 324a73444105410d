package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/dayboard/dayboard/internal/store"
	"github.com/dayboard/dayboard/internal/store/storetest"
)

func TestSqliteStore_Compliance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		path := filepath.Join(t.TempDir(), "dayboard.db")
		s, err := New(path)
		if err != nil {
			t.Fatalf("open sqlite store: %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}
