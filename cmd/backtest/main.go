package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/moznion/go-optional"
	"github.com/quantvis/strata/internal/calendar"
	"github.com/quantvis/strata/internal/engine"
	"github.com/quantvis/strata/internal/history"
	"github.com/quantvis/strata/internal/indicator"
	"github.com/quantvis/strata/internal/logger"
	"github.com/quantvis/strata/internal/marketdata"
	"github.com/quantvis/strata/internal/types"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// runAction loads the strategy and run config, executes one backtest against
// the DuckDB candle store and writes the result summary as YAML.
func runAction(ctx context.Context, cmd *cli.Command) error {
	appLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	strategyData, err := os.ReadFile(cmd.String("strategy"))
	if err != nil {
		return fmt.Errorf("failed to read strategy file: %w", err)
	}

	strategy, err := types.ParseVisualStrategy(strategyData)
	if err != nil {
		return fmt.Errorf("invalid strategy: %w", err)
	}

	config := engine.DefaultConfig()
	if configPath := cmd.String("config"); configPath != "" {
		configData, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to read run config: %w", err)
		}

		if err := yaml.Unmarshal(configData, &config); err != nil {
			return fmt.Errorf("failed to parse run config: %w", err)
		}
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

	var store history.Store
	if historyPath := cmd.String("history"); historyPath != "" {
		historyStore, err := history.NewDuckDBStore(historyPath, appLogger)
		if err != nil {
			return fmt.Errorf("failed to open history store: %w", err)
		}
		defer historyStore.Close()
		store = historyStore
	}

	bar := progressbar.Default(-1, "backtesting")
	progress := engine.ProgressCallback(func(current, total int) {
		if bar.GetMax() != total {
			bar.ChangeMax(total)
		}

		_ = bar.Set(current)
	})

	backtest := engine.NewBacktest(provider, indicator.NewDefaultRegistry(), cal, store, appLogger)

	result, err := backtest.Run(ctx, strategy, config, optional.Some(progress))
	if err != nil {
		return err
	}

	_ = bar.Finish()

	if output := cmd.String("output"); output != "" {
		if err := types.WriteResult(output, result); err != nil {
			return err
		}
	}

	fmt.Printf("run %s: %d trades, final equity %.2f, total return %.2f%%\n",
		result.ID, result.Metrics.TradeCount, result.FinalEquity, result.Metrics.TotalReturn*100)

	return nil
}

// schemaAction prints the JSON schema the dashboard uses to validate
// strategy documents.
func schemaAction(_ context.Context, _ *cli.Command) error {
	schemaJSON, err := (&types.VisualStrategy{}).GenerateSchemaJSON()
	if err != nil {
		return err
	}

	fmt.Println(schemaJSON)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Evaluate a visual strategy against historical candles",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run one backtest",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "strategy",
						Aliases:  []string{"s"},
						Usage:    "Path to the strategy JSON file",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to the run config YAML file",
					},
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "Path to the DuckDB candle database",
						Value:   "data/candles.duckdb",
					},
					&cli.StringFlag{
						Name:  "calendar",
						Usage: "Path to the seasonal calendar YAML file",
					},
					&cli.StringFlag{
						Name:  "history",
						Usage: "Path to the DuckDB run history database",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the result summary to this YAML file",
					},
				},
				Action: runAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the strategy JSON schema",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
