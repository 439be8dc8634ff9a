package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/quantvis/strata/internal/logger"
	"github.com/quantvis/strata/internal/marketdata"
	"github.com/quantvis/strata/internal/types"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

// downloadAction fetches daily candles for one asset from Polygon and stores
// them in the DuckDB candle database the other commands read from.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	appLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	asset := types.Asset(cmd.String("asset"))
	if !asset.IsValid() {
		return fmt.Errorf("unknown asset %q, valid assets: %v", cmd.String("asset"), types.AllAssets())
	}

	downloader, err := marketdata.NewPolygonDownloader(os.Getenv("POLYGON_API_KEY"), appLogger)
	if err != nil {
		return err
	}

	store, err := marketdata.NewDuckDBProvider(cmd.String("data"), appLogger)
	if err != nil {
		return fmt.Errorf("failed to open candle store: %w", err)
	}
	defer store.Close()

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", asset)),
		progressbar.OptionShowCount(),
	)

	written, err := downloader.Download(ctx, asset, cmd.Timestamp("start"), cmd.Timestamp("end"), store, func(count int) {
		_ = bar.Set(count)
	})
	if err != nil {
		return err
	}

	_ = bar.Finish()

	dateRange, err := store.GetDateRange(ctx, asset)
	if err != nil {
		return err
	}

	fmt.Printf("wrote %d candles for %s, store now covers %s to %s\n",
		written, asset,
		dateRange.Min.Format("2006-01-02"),
		dateRange.Max.Format("2006-01-02"),
	)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "download",
		Usage: "Download historical daily candles into the candle store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "asset",
				Aliases:  []string{"a"},
				Usage:    "Asset to download (e.g. GOLD, WHEAT)",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the DuckDB candle database",
				Value:   "data/candles.duckdb",
			},
		},
		Action: downloadAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
