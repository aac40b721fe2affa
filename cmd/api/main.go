package main

import (
	"context"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	server "reviewpulse/internal/adapters/http_server"
	"reviewpulse/internal/adapters/insight"
	"reviewpulse/internal/adapters/observability"
	redisad "reviewpulse/internal/adapters/redis"
	"reviewpulse/internal/app"
	"reviewpulse/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	client, err := insight.New(insight.Config{
		BaseURL: cfg.InsightBase,
		APIKey:  cfg.InsightKey,
		RPS:     cfg.InsightRPS,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize insight client")
	}

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	browse := app.NewBrowseService(client, cfg.Workers)
	dash := app.NewDashboardService(client, cache, cfg.CacheTTL)

	// keep the dashboard cache warm
	cr := cron.New()
	if _, err := cr.AddFunc(cfg.DashboardCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := dash.Refresh(ctx); err != nil {
			log.Warn().Err(err).Msg("dashboard refresh failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Str("spec", cfg.DashboardCron).Msg("invalid dashboard refresh spec")
	}
	cr.Start()
	defer cr.Stop()

	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Client:   client,
		Browse:   browse,
		Dash:     dash,
		PageSize: cfg.PageSize,
	})

	log.Info().Str("addr", cfg.HTTPAddr).Str("insight", cfg.InsightBase).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
