package migrations

import (
	"context"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"github.com/chainsafe/phase-distributor/pkg/migrations/ledgerdb"
	mghelper "github.com/chainsafe/phase-distributor/pkg/pgutil"
)

var ledgerTables = []string{
	"phases",
	"contributions",
	"phase_allocations",
	"claim_snapshots",
	"claims",
	"claim_sessions",
}

func migrateUp(t *testing.T, ctx context.Context, db *bun.DB) *migrate.Migrator {
	t.Helper()
	migrator := migrate.NewMigrator(db, ledgerdb.Migrations)

	// Initialize migration system
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	// Run all migrations up
	group, err := migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	if group.IsZero() {
		t.Error("Expected migrations to run, but none were applied")
	}
	return migrator
}

func TestLedgerDBMigrations_Apply(t *testing.T) {
	db, cleanup := mghelper.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrateUp(t, ctx, db)

	for _, table := range append(ledgerTables, "bun_migrations") {
		mghelper.AssertTable(t, db, table, true)
	}

	mghelper.AssertIndexes(t, db,
		"idx_phases_status",
		"idx_contributions_wallet_address",
		"idx_contributions_phase_id",
		"idx_claims_session_id",
		"idx_claims_wallet_address_phase_id",
		"idx_claim_sessions_wallet_address_destination_status",
	)
}

func TestLedgerDBMigrations_UniqueTxSignature(t *testing.T) {
	db, cleanup := mghelper.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrateUp(t, ctx, db)

	insert := `INSERT INTO claims (phase_id, wallet_address, claim_amount, destination, tx_signature, session_id, timestamp)
		VALUES (1, 'w', 1, 'd', 'sig-1', '6f1c1c43-79f6-4a4e-9e55-0c4ef2b7a0a1', NOW())`
	if _, err := db.ExecContext(ctx, insert); err != nil {
		t.Fatalf("first claim insert failed: %v", err)
	}
	if _, err := db.ExecContext(ctx, insert); err == nil {
		t.Fatalf("expected duplicate tx_signature to be rejected")
	}
	mghelper.AssertRowCount(t, db, "claims", 1)
}

func TestMigrations_Idempotency(t *testing.T) {
	db, cleanup := mghelper.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrateUp(t, ctx, db)

	// Run migrations second time - should not fail
	group, err := migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("Second Migrate() failed: %v", err)
	}

	// Should return zero group (no new migrations)
	if !group.IsZero() {
		t.Error("Expected no new migrations on second run")
	}

	mghelper.AssertTable(t, db, "phases", true)
	mghelper.AssertTable(t, db, "claims", true)
}

func TestMigrations_Rollback(t *testing.T) {
	db, cleanup := mghelper.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrateUp(t, ctx, db)

	// Rollback last migration group (all migrations run in one group by Migrate())
	group, err := migrator.Rollback(ctx)
	if err != nil {
		t.Fatalf("Rollback() failed: %v", err)
	}
	if group.IsZero() {
		t.Error("Expected rollback to process a migration")
	}

	for _, table := range ledgerTables {
		mghelper.AssertTable(t, db, table, false)
	}
}
