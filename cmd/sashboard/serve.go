package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sashboard/internal/binance"
	"sashboard/internal/config"
	"sashboard/internal/server"
)

const httpShutdownTimeout = 5 * time.Second

func runServe(args []string, out io.Writer, errOut io.Writer) int {
	flags := flag.NewFlagSet("serve", flag.ContinueOnError)
	flags.SetOutput(errOut)
	configPath := flags.String("config", config.DefaultPath(), "config file path")
	listen := flags.String("listen", "", "listen address")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadRuntime(*configPath)
	if err != nil {
		fmt.Fprintln(errOut, "sashboard:", err)
		return 1
	}
	if *listen != "" {
		cfg.ListenAddr = *listen
	}
	cfg, err = config.Normalize(cfg)
	if err != nil {
		fmt.Fprintln(errOut, "sashboard:", err)
		return 1
	}

	logger := newCommandLogger(cfg)

	var exchange server.Exchange
	creds := config.CredentialsFromEnv(nil)
	if creds.APIKey == "" || creds.APISecret == "" {
		logger.Warn("API_KEY and API_SECRET are not set; live trade data disabled", nil)
	} else {
		exchange = binance.NewClient(binance.Config{
			BaseURL:   cfg.BinanceBaseURL,
			APIKey:    creds.APIKey,
			APISecret: creds.APISecret,
			Logger:    logger,
		})
	}

	events := server.NewEventHub()
	defer events.Close()

	service := server.NewService(server.ServiceOptions{
		Exchange:         exchange,
		TradeHistoryPath: cfg.TradeHistoryPath,
		Logger:           logger,
		Events:           events,
	})

	watcher, err := server.WatchFile(cfg.TradeHistoryPath, 0, service.NotifyFileChanged, logger)
	if err != nil {
		logger.Warn("trade history watch disabled", map[string]string{
			"path":  cfg.TradeHistoryPath,
			"error": err.Error(),
		})
	} else {
		defer watcher.Close()
	}

	mux := http.NewServeMux()
	server.RegisterRoutes(mux, server.RouteConfig{
		Service:          service,
		Events:           events,
		Logger:           logger,
		SessionName:      cfg.SessionName,
		TradeHistoryPath: cfg.TradeHistoryPath,
	})

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("sashboard listening", map[string]string{"addr": cfg.ListenAddr})
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", map[string]string{"error": err.Error()})
			return 1
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received", nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown incomplete", map[string]string{"error": err.Error()})
		}
	}
	return 0
}
