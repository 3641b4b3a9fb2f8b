package router

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Marcos1701/finquest-backend/internal/handlers"
	"github.com/Marcos1701/finquest-backend/internal/middleware"
)

func NewRouter(deps *handlers.Deps) chi.Router {
	r := chi.NewRouter()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	logm := middleware.NewLoggerMiddleware(deps.Log)
	metricsm := middleware.NewMetricsMiddleware(registry)
	authm := middleware.NewMiddleware(deps.Firebase)

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(logm.LoggerMiddleware)
	r.Use(metricsm.MetricsMiddleware)

	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	ush := handlers.NewUserHandlers(deps)
	txh := handlers.NewTransactionHandlers(deps)
	inh := handlers.NewIndicatorHandlers(deps)
	msh := handlers.NewMissionHandlers(deps)
	gnh := handlers.NewGeneratorHandlers(deps)

	r.Group(func(r chi.Router) {
		r.Use(authm.FirebaseAuth)
		r.Mount("/users", ush.UserRoutes())
		r.Mount("/transactions", txh.TransactionRoutes())
		r.Mount("/indicators", inh.IndicatorRoutes())
		r.Mount("/missions", msh.MissionRoutes())
		r.Mount("/admin/missions", gnh.GeneratorRoutes())
	})

	return r
}
