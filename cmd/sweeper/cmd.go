package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/Marcos1701/finquest-backend/internal/bootstrap"
	"github.com/Marcos1701/finquest-backend/internal/config"
	"github.com/Marcos1701/finquest-backend/internal/dto"
	"github.com/Marcos1701/finquest-backend/internal/services"
	"github.com/Marcos1701/finquest-backend/internal/store"
)

// Periodic maintenance job, run as a Cloud Run job on a schedule. It fails
// missions whose deadline passed without completion and tops up the catalog
// from templates so assignment always has candidates per tier.
const refillBatchSize = 10

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	ctx := context.Background()

	// stores
	ustore := store.NewUserStore(bs.Firestore)
	tstore := store.NewTransactionStore(bs.Firestore)
	lstore := store.NewLinkStore(bs.Firestore)
	cstore := store.NewCategoryStore(bs.Firestore)
	pstore := store.NewProfileStore(bs.Firestore)
	gstore := store.NewGoalStore(bs.Firestore)
	mstore := store.NewMissionStore(bs.Firestore)
	prstore := store.NewProgressStore(bs.Firestore)
	rstore := store.NewRewardStore(bs.Firestore)

	// services
	indserv := services.NewIndicatorService(tstore, lstore, cstore, pstore)
	misserv := services.NewMissionService(mstore, prstore, rstore, tstore, gstore, indserv)
	genserv := services.NewGeneratorService(mstore, bs.VertexAdapter, services.GeneratorConfig{
		Model:                 cfg.VertexModel,
		AITimeout:             cfg.AITimeout,
		TitleSimilarity:       cfg.TitleSimilarity,
		DescriptionSimilarity: cfg.DescriptionSimilarity,
	})

	// pass 1: expire overdue mission instances
	uids, err := ustore.ListUIDs(ctx)
	exitOnError("listing users failed", err, bs.Log)

	expired := 0
	for _, uid := range uids {
		n, err := misserv.ExpireOverdue(ctx, uid)
		if err != nil {
			bs.Log.Error("expire sweep failed for user", "uid", uid, "error", err)
			continue
		}
		expired += n
	}
	bs.Log.Info("expire sweep finished", "users", len(uids), "expired", expired)

	// pass 2: refill the catalog per tier, templates only
	for _, tier := range []dto.Tier{dto.TierBeginner, dto.TierIntermediate, dto.TierAdvanced} {
		result, err := genserv.GenerateBatch(ctx, tier, refillBatchSize, false)
		if err != nil {
			bs.Log.Error("catalog refill failed", "tier", tier, "error", err)
			continue
		}
		bs.Log.Info("catalog refill finished",
			"tier", tier,
			"created", result.Summary.Created,
			"rejected", result.Summary.Rejected)
	}
}
