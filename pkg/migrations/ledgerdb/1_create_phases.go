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
		log.Println("creating phases table...")
		if err := mghelper.CreateSchema(ctx, db, &ledgerstore.PhaseDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &ledgerstore.PhaseDao{}, "status")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping phases table...")
		return mghelper.DropTables(ctx, db, &ledgerstore.PhaseDao{})
	})
}
