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
		log.Println("creating claim_sessions table...")
		if err := mghelper.CreateSchema(ctx, db, &ledgerstore.ClaimSessionDao{}); err != nil {
			return err
		}
		return mghelper.CreateCompositeIndex(ctx, db, &ledgerstore.ClaimSessionDao{}, false, "wallet_address", "destination", "status")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping claim_sessions table...")
		return mghelper.DropTables(ctx, db, &ledgerstore.ClaimSessionDao{})
	})
}
