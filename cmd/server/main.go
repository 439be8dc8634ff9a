package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/quantvis/strata/internal/calendar"
	"github.com/quantvis/strata/internal/history"
	"github.com/quantvis/strata/internal/indicator"
	"github.com/quantvis/strata/internal/logger"
	"github.com/quantvis/strata/internal/marketdata"
	"github.com/quantvis/strata/internal/store"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func serveAction(ctx context.Context, cmd *cli.Command) error {
	appLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	var cal calendar.Calendar
	if calendarPath := cmd.String("calendar"); calendarPath != "" {
		cal, err = calendar.LoadCalendar(calendarPath)
		if err != nil {
			return fmt.Errorf("failed to load calendar: %w", err)
		}
	}

	provider, err := marketdata.NewDuckDBProvider(cmd.String("data"), appLogger)
	if err != nil {
		return fmt.Errorf("failed to open candle store: %w", err)
	}
	defer provider.Close()

	strategies, err := store.NewDuckDBStore(cmd.String("strategies"), appLogger)
	if err != nil {
		return fmt.Errorf("failed to open strategy store: %w", err)
	}
	defer strategies.Close()

	runs, err := history.NewDuckDBStore(cmd.String("history"), appLogger)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer runs.Close()

	server := NewServer(provider, indicator.NewDefaultRegistry(), cal, strategies, runs, appLogger)

	addr := cmd.String("addr")
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			appLogger.Warn("server shutdown failed", zap.Error(err))
		}
	}()

	appLogger.Info("listening", zap.String("addr", addr))

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "server",
		Usage: "Serve the strategy dashboard API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address",
				Value: ":8080",
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the DuckDB candle database",
				Value:   "data/candles.duckdb",
			},
			&cli.StringFlag{
				Name:  "strategies",
				Usage: "Path to the DuckDB strategy database",
				Value: "data/strategies.duckdb",
			},
			&cli.StringFlag{
				Name:  "history",
				Usage: "Path to the DuckDB run history database",
				Value: "data/history.duckdb",
			},
			&cli.StringFlag{
				Name:  "calendar",
				Usage: "Path to the seasonal calendar YAML file",
			},
		},
		Action: serveAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
