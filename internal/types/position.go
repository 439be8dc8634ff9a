package types

import "time"

// PositionStatus is the lifecycle state of a simulated position.
type PositionStatus string

const (
	PositionStatusOpen   PositionStatus = "OPEN"
	PositionStatusClosed PositionStatus = "CLOSED"
)

// CloseReason records which rule closed a position.
type CloseReason string

const (
	CloseReasonExitRule   CloseReason = "exit_rule"
	CloseReasonStopLoss   CloseReason = "stop_loss"
	CloseReasonTakeProfit CloseReason = "take_profit"
	// CloseReasonEndOfData marks a position force-closed at the last candle
	// so the run always ends flat.
	CloseReasonEndOfData CloseReason = "end_of_data"
)

// Position is one simulated round trip (or the single currently open trade).
// Positions are owned by one backtest run and never shared between runs.
type Position struct {
	Direction  Direction      `yaml:"direction" json:"direction"`
	EntryTime  time.Time      `yaml:"entry_time" json:"entry_time"`
	EntryPrice float64        `yaml:"entry_price" json:"entry_price"`
	Quantity   float64        `yaml:"quantity" json:"quantity"`
	Status     PositionStatus `yaml:"status" json:"status"`
	// Exit fields are zero until the position closes.
	ExitTime    time.Time   `yaml:"exit_time,omitempty" json:"exit_time,omitzero"`
	ExitPrice   float64     `yaml:"exit_price,omitempty" json:"exit_price,omitempty"`
	CloseReason CloseReason `yaml:"close_reason,omitempty" json:"close_reason,omitempty"`
	// PnL is the realized profit and loss, set when the position closes.
	PnL float64 `yaml:"pnl" json:"pnl"`
}

// IsWin reports whether the closed position realized a positive P&L.
func (p Position) IsWin() bool {
	return p.Status == PositionStatusClosed && p.PnL > 0
}
