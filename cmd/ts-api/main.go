package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"TransferScope/internal/config"
	"TransferScope/internal/query"
	"TransferScope/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file.")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if !cfg.Report.ClickHouse.Enabled {
		log.Fatal().Msg("result store is disabled in config, API server cannot start")
	}
	querier, err := query.NewClickHouseQuerier(cfg.Report.ClickHouse)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create querier")
	}

	h := &apiHandler{querier: querier, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/api/v1/reports", h.reportsHandler).Methods("GET")
	r.HandleFunc("/api/v1/transfers", h.transfersHandler).Methods("GET")

	server := &http.Server{
		Addr:    cfg.API.ListenAddr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("API server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Str("addr", server.Addr).Msg("API server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("API server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("API server exited")
}
