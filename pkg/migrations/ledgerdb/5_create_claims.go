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
		log.Println("creating claims table...")
		if err := mghelper.CreateSchema(ctx, db, &ledgerstore.ClaimDao{}); err != nil {
			return err
		}
		if err := mghelper.CreateModelIndexes(ctx, db, &ledgerstore.ClaimDao{}, "session_id"); err != nil {
			return err
		}
		return mghelper.CreateCompositeIndex(ctx, db, &ledgerstore.ClaimDao{}, false, "wallet_address", "phase_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping claims table...")
		return mghelper.DropTables(ctx, db, &ledgerstore.ClaimDao{})
	})
}
