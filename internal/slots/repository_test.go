package slots

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"
)

// newDryRunDB builds a gorm instance that renders SQL without executing
// it, recording every query it builds.
func newDryRunDB(t *testing.T) (*gorm.DB, *[]string) {
	t.Helper()

	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}

	queries := &[]string{}
	err = db.Callback().Query().After("gorm:query").Register("record_sql", func(tx *gorm.DB) {
		*queries = append(*queries, tx.Statement.SQL.String())
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
	return db, queries
}

// The capacity adjustment must read the slot row under FOR UPDATE so
// concurrent confirmations against the same slot serialize at the
// database, not just within one process.
func TestAdjustUsedTxLocksSlotRow(t *testing.T) {
	db, queries := newDryRunDB(t)

	_ = AdjustUsedTx(db, uuid.New(), 1)

	if len(*queries) == 0 {
		t.Fatal("no query was built")
	}
	for _, q := range *queries {
		if strings.Contains(q, "FOR UPDATE") {
			return
		}
	}
	t.Fatalf("slot read carries no row lock: %v", *queries)
}
