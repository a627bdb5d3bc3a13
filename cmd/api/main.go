package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "feedback_gate/internal/adapters/http_server"
	"feedback_gate/internal/adapters/observability"
	redisad "feedback_gate/internal/adapters/redis"
	"feedback_gate/internal/adapters/webhook"
	"feedback_gate/internal/app"
	"feedback_gate/internal/domain"
	"feedback_gate/internal/shared"
	mysqljournal "feedback_gate/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// delivery journal is optional; the sink runs fine without it
	var journal domain.DeliveryJournal
	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("delivery journal connected")
		journal = mysqljournal.New(db)
	}

	// delivery channel: beacon queue over the webhook client
	var sinkClient *webhook.Client
	if cfg.SinkURL != "" {
		sinkClient = webhook.NewClient(cfg.SinkURL, cfg.SinkRPS)
	}
	sink := webhook.New(sinkClient, journal, cfg.SinkQueueSize)
	sink.Start()
	defer sink.Close()

	// injected complaint handler: forwarder if configured, stand-in otherwise
	var handler domain.SubmissionHandler
	if cfg.ComplaintForwardURL != "" {
		handler = webhook.NewForwardHandler(webhook.NewClient(cfg.ComplaintForwardURL, cfg.SinkRPS))
		log.Info().Str("url", cfg.ComplaintForwardURL).Msg("forwarding complaints")
	}

	store := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	svc := app.NewService(store, sink, handler, app.Options{
		ReviewPlatformURL: cfg.ReviewPlatformURL,
		NoticeTTL:         cfg.NoticeTTL,
		SessionTTL:        cfg.SessionTTL,
		HandlerTimeout:    cfg.HandlerTimeout,
	})
	defer svc.Close()

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{S: svc})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
