package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/microshop/order-service/internal/client"
	"github.com/microshop/order-service/internal/config"
	"github.com/microshop/order-service/internal/db"
	"github.com/microshop/order-service/internal/event"
	"github.com/microshop/order-service/internal/order"
	"github.com/microshop/order-service/internal/transport"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "order-service").Logger()

	log.Info().Msg("Order service starting...")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	dbConn, err := db.New(context.Background(), cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbConn.Close()

	publisher := event.NewRedisPublisher(cfg.Redis.Addr, event.DefaultChannel)
	defer publisher.Close()

	httpClient := &http.Client{Timeout: cfg.Services.ClientTimeout}
	cartClient := client.NewCartClient(cfg.Services.CartURL, httpClient)
	authClient := client.NewAuthClient(cfg.Services.AuthURL, httpClient)
	catalogClient := client.NewCatalogClient(cfg.Services.CatalogURL, httpClient)

	repo := order.NewRepository(dbConn.Pool)
	svc := order.NewService(repo, cartClient, authClient, catalogClient, publisher)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      transport.NewRouter(svc),
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

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}
