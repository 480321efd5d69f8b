package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tastebite/storefront/internal/auth"
	"github.com/tastebite/storefront/internal/cart"
	"github.com/tastebite/storefront/internal/config"
	"github.com/tastebite/storefront/internal/db"
	"github.com/tastebite/storefront/internal/handler"
	"github.com/tastebite/storefront/internal/menu"
	"github.com/tastebite/storefront/internal/order"
	"github.com/tastebite/storefront/internal/outbox"
	"github.com/tastebite/storefront/internal/pricing"
	"github.com/tastebite/storefront/internal/profile"
	"github.com/tastebite/storefront/internal/stats"
	"github.com/tastebite/storefront/internal/transport"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "storefront").Logger()

	log.Info().Msg("Storefront starting...")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pg.Close()

	// The stats read model runs over the same pool through database/sql.
	statsDB := sqlx.NewDb(stdlib.OpenDBFromPool(pg.Pool), "pgx")

	var carts cart.Store
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
		})
		defer client.Close()
		carts = cart.NewRedisStore(client)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Using Redis cart store")
	} else {
		carts = cart.NewMemoryStore()
		log.Info().Msg("Using in-memory cart store")
	}

	calc := pricing.NewCalculator(cfg.Pricing.TaxRate, cfg.Pricing.DeliveryFee)

	profileRepo := profile.NewRepository(pg.Pool)
	gate := auth.NewGate(profileRepo)

	outboxRepo := outbox.NewRepository(pg.Pool)

	orderRepo := order.NewRepository(pg.Pool)
	orderSvc := order.NewService(orderRepo, carts, calc, gate, outboxRepo)

	menuRepo := menu.NewRepository(pg.Pool)
	menuSvc := menu.NewService(menuRepo, gate)

	statsSvc := stats.NewService(stats.NewRepository(statsDB), gate)

	router := transport.NewRouter(cfg.JWT.Secret, transport.Handlers{
		Cart:    handler.NewCartHandler(carts, calc),
		Order:   handler.NewOrderHandler(orderSvc),
		Menu:    handler.NewMenuHandler(menuSvc),
		Profile: handler.NewProfileHandler(profileRepo),
		Stats:   handler.NewStatsHandler(statsSvc),
	})

	if len(cfg.Kafka.Brokers) > 0 {
		poller := outbox.NewPoller(outboxRepo, cfg.Kafka.Brokers...)
		go poller.Run(ctx)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Msg("Outbox poller started")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}
