package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/google/uuid"

	"github.com/Marcos1701/finquest-backend/internal/bootstrap"
	"github.com/Marcos1701/finquest-backend/internal/config"
	"github.com/Marcos1701/finquest-backend/internal/handlers"
	"github.com/Marcos1701/finquest-backend/internal/response"
	"github.com/Marcos1701/finquest-backend/internal/router"
	"github.com/Marcos1701/finquest-backend/internal/services"
	"github.com/Marcos1701/finquest-backend/internal/store"
)

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
	userv := services.NewUserService(ustore, pstore, gstore, indserv, uuid.NewString)
	txserv := services.NewTransactionService(tstore, lstore, cstore, gstore, indserv)
	ctxserv := services.NewContextService(tstore, cstore, gstore, pstore, indserv)
	misserv := services.NewMissionService(mstore, prstore, rstore, tstore, gstore, indserv)
	asgserv := services.NewAssignmentService(mstore, prstore, ctxserv)
	genserv := services.NewGeneratorService(mstore, bs.VertexAdapter, services.GeneratorConfig{
		Model:                 cfg.VertexModel,
		AITimeout:             cfg.AITimeout,
		TitleSimilarity:       cfg.TitleSimilarity,
		DescriptionSimilarity: cfg.DescriptionSimilarity,
	})

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.Firebase = bs.Firebase
	deps.UserSvc = userv
	deps.TransactionSvc = txserv
	deps.IndicatorSvc = indserv
	deps.MissionSvc = misserv
	deps.AssignmentSvc = asgserv
	deps.GeneratorSvc = genserv
	deps.MaxActiveMissions = cfg.MaxActiveMissions

	// router
	r := router.NewRouter(deps)
	err = http.ListenAndServe(":"+cfg.Port, r)
	exitOnError("server start failed", err, bs.Log)
}
