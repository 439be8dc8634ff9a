package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EquityPoint is one sample of the simulated portfolio value.
type EquityPoint struct {
	Time   time.Time `yaml:"time" json:"time"`
	Equity float64   `yaml:"equity" json:"equity"`
}

// Metrics summarizes one backtest run. Every field is always defined: a run
// with zero trades produces a fully-zeroed record, never NaN.
type Metrics struct {
	// TotalReturn is final equity over initial equity minus one.
	TotalReturn float64 `yaml:"total_return" json:"total_return"`
	// WinRate is winning trades over total trades. Zero when there are no trades.
	WinRate float64 `yaml:"win_rate" json:"win_rate"`
	// MaxDrawdown is the largest peak-to-trough fractional decline of the
	// equity curve. Zero when the curve never declines.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
	// SharpeRatio is the annualized mean-over-stddev of per-bar returns.
	// Zero when the standard deviation is zero.
	SharpeRatio   float64 `yaml:"sharpe_ratio" json:"sharpe_ratio"`
	TradeCount    int     `yaml:"trade_count" json:"trade_count"`
	WinningTrades int     `yaml:"winning_trades" json:"winning_trades"`
	LosingTrades  int     `yaml:"losing_trades" json:"losing_trades"`
}

// BacktestResult is the complete outcome of one run. It is owned by the
// orchestrator invocation that produced it and handed to the caller (and,
// best-effort, to the history store) when the run completes.
type BacktestResult struct {
	// ID is the unique identifier for this backtest run.
	ID string `yaml:"id" json:"id"`
	// CreatedAt is when this run was executed.
	CreatedAt      time.Time     `yaml:"created_at" json:"created_at"`
	StrategyID     string        `yaml:"strategy_id" json:"strategy_id"`
	StrategyName   string        `yaml:"strategy_name" json:"strategy_name"`
	Asset          Asset         `yaml:"asset" json:"asset"`
	InitialCapital float64       `yaml:"initial_capital" json:"initial_capital"`
	FinalEquity    float64       `yaml:"final_equity" json:"final_equity"`
	Trades         []Position    `yaml:"trades" json:"trades"`
	EquityCurve    []EquityPoint `yaml:"equity_curve" json:"equity_curve"`
	Metrics        Metrics       `yaml:"metrics" json:"metrics"`
	// Candles is the exact price series the run evaluated, returned for
	// downstream charting.
	Candles []Candle `yaml:"-" json:"candles,omitempty"`
}

// WriteResult writes the result summary to a YAML file.
func WriteResult(path string, result BacktestResult) error {
	// Marshal the struct to YAML
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal backtest result to YAML: %w", err)
	}

	// Write the YAML data to the file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backtest result to file: %w", err)
	}

	return nil
}
