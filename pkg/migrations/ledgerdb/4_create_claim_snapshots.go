package ledgerdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/chainsafe/phase-distributor/pkg/ledgerstore"
	mghelper "github.com/chainsafe/phase-distributor/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating claim_snapshots table...")
		if err := mghelper.CreateSchema(ctx, db, &ledgerstore.ClaimSnapshotDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &ledgerstore.ClaimSnapshotDao{}, "wallet_address")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping claim_snapshots table...")
		return mghelper.DropTables(ctx, db, &ledgerstore.ClaimSnapshotDao{})
	})
}
