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
		log.Println("creating phase_allocations table...")
		if err := mghelper.CreateSchema(ctx, db, &ledgerstore.PhaseAllocationDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &ledgerstore.PhaseAllocationDao{}, "wallet_address")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping phase_allocations table...")
		return mghelper.DropTables(ctx, db, &ledgerstore.PhaseAllocationDao{})
	})
}
