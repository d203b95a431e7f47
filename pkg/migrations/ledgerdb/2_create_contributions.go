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
		log.Println("creating contributions table...")
		if err := mghelper.CreateSchema(ctx, db, &ledgerstore.ContributionDao{}); err != nil {
			return err
		}
		// Create indexes
		return mghelper.CreateModelIndexes(ctx, db, &ledgerstore.ContributionDao{}, "wallet_address", "phase_id", "timestamp")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping contributions table...")
		return mghelper.DropTables(ctx, db, &ledgerstore.ContributionDao{})
	})
}
