package reservations

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"
)

// Confirm and delete both read the reservation row under FOR UPDATE
// before touching slot capacity; verify the lock survives in the
// rendered SQL.
func TestLockReservationRendersRowLock(t *testing.T) {
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}

	var queries []string
	err = db.Callback().Query().After("gorm:query").Register("record_sql", func(tx *gorm.DB) {
		queries = append(queries, tx.Statement.SQL.String())
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	if _, err := lockReservation(db, uuid.New()); err != nil {
		t.Fatalf("lockReservation: %v", err)
	}

	if len(queries) == 0 {
		t.Fatal("no query was built")
	}
	for _, q := range queries {
		if strings.Contains(q, "FOR UPDATE") {
			return
		}
	}
	t.Fatalf("reservation read carries no row lock: %v", queries)
}
