// Package testdb opens an in-memory SQLite journal for tests.
package testdb

import (
	"context"
	"testing"

	"github.com/helixml/linedit/infrastructure/persistence"
	"github.com/helixml/linedit/internal/database"
)

// New returns an in-memory SQLite database with the journal schema
// migrated. It is closed when the test finishes.
func New(t *testing.T) database.Database {
	t.Helper()
	db, err := database.NewDatabase(context.Background(), "sqlite:///:memory:")
	if err != nil {
		t.Fatalf("open journal database: %v", err)
	}
	if err := persistence.AutoMigrate(db); err != nil {
		_ = db.Close()
		t.Fatalf("migrate journal: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
