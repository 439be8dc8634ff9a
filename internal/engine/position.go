package engine

import (
	"github.com/quantvis/strata/internal/types"
	"github.com/shopspring/decimal"
)

// quantityPrecision is the number of decimal places a position quantity is
// truncated to on entry. Truncation, not rounding, so the sizing never
// exceeds available equity.
const quantityPrecision = 8

// ManagerState is the position manager's lifecycle state.
type ManagerState string

const (
	StateFlat ManagerState = "FLAT"
	StateOpen ManagerState = "OPEN"
)

// Transition records one state change with the bar it happened on. The
// orchestrator's tests replay this log to assert single-position invariants.
type Transition struct {
	Bar   int
	State ManagerState
}

// PositionManager runs the single-position lifecycle: at most one open
// position at a time, sized all-in at entry, closed by the exit rule, a
// stop-loss or take-profit breach, or the end of the data.
type PositionManager struct {
	direction     types.Direction
	stopLossPct   float64
	takeProfitPct float64

	state       ManagerState
	cash        float64
	open        types.Position
	entryEquity float64

	completed   []types.Position
	transitions []Transition
}

// NewPositionManager creates a flat manager holding the initial capital in
// cash.
func NewPositionManager(direction types.Direction, stopLossPct, takeProfitPct, initialCapital float64) *PositionManager {
	return &PositionManager{
		direction:     direction,
		stopLossPct:   stopLossPct,
		takeProfitPct: takeProfitPct,
		state:         StateFlat,
		cash:          initialCapital,
	}
}

// ProcessBar advances the lifecycle by one bar. While open, intrabar
// stop-loss and take-profit breaches are checked before the exit rule; a bar
// whose range touches both bands closes at the stop-loss. Entry signals are
// only honored on bars that began flat, so a close can never chain into a
// same-bar re-entry.
func (m *PositionManager) ProcessBar(bar int, candle types.Candle, entrySignal, exitSignal bool) {
	if m.state == StateOpen {
		if price, reason, breached := m.checkBands(candle); breached {
			m.closePosition(bar, candle, price, reason)
		} else if exitSignal {
			m.closePosition(bar, candle, candle.Close, types.CloseReasonExitRule)
		}

		return
	}

	if entrySignal {
		m.openPosition(bar, candle)
	}
}

// CloseAtEnd force-closes any position still open at the last bar's close.
func (m *PositionManager) CloseAtEnd(bar int, candle types.Candle) {
	if m.state != StateOpen {
		return
	}

	m.closePosition(bar, candle, candle.Close, types.CloseReasonEndOfData)
}

// Equity marks the portfolio to the given price. Flat portfolios are pure
// cash.
func (m *PositionManager) Equity(price float64) float64 {
	if m.state == StateFlat {
		return m.cash
	}

	if m.direction == types.DirectionShort {
		return m.entryEquity + m.open.Quantity*(m.open.EntryPrice-price)
	}

	return m.cash + m.open.Quantity*price
}

// State returns the current lifecycle state.
func (m *PositionManager) State() ManagerState {
	return m.state
}

// Completed returns the closed positions in entry order.
func (m *PositionManager) Completed() []types.Position {
	return m.completed
}

// Transitions returns the full state-change log.
func (m *PositionManager) Transitions() []Transition {
	return m.transitions
}

// checkBands reports whether the bar's range breached the stop-loss or
// take-profit band, and at which threshold price the fill happens. Gaps
// through a band still fill at the band price.
func (m *PositionManager) checkBands(candle types.Candle) (float64, types.CloseReason, bool) {
	entry := m.open.EntryPrice

	if m.direction == types.DirectionShort {
		stopPrice := entry * (1 + m.stopLossPct)
		targetPrice := entry * (1 - m.takeProfitPct)

		if candle.High >= stopPrice {
			return stopPrice, types.CloseReasonStopLoss, true
		}

		if candle.Low <= targetPrice {
			return targetPrice, types.CloseReasonTakeProfit, true
		}

		return 0, "", false
	}

	stopPrice := entry * (1 - m.stopLossPct)
	targetPrice := entry * (1 + m.takeProfitPct)

	if candle.Low <= stopPrice {
		return stopPrice, types.CloseReasonStopLoss, true
	}

	if candle.High >= targetPrice {
		return targetPrice, types.CloseReasonTakeProfit, true
	}

	return 0, "", false
}

func (m *PositionManager) openPosition(bar int, candle types.Candle) {
	if candle.Close <= 0 {
		return
	}

	quantity := decimal.NewFromFloat(m.cash / candle.Close).
		Truncate(quantityPrecision).
		InexactFloat64()
	if quantity <= 0 {
		return
	}

	m.entryEquity = m.cash

	m.open = types.Position{
		Direction:  m.direction,
		EntryTime:  candle.Time,
		EntryPrice: candle.Close,
		Quantity:   quantity,
		Status:     types.PositionStatusOpen,
	}

	if m.direction == types.DirectionLong {
		m.cash -= quantity * candle.Close
	}

	m.state = StateOpen
	m.transitions = append(m.transitions, Transition{Bar: bar, State: StateOpen})
}

func (m *PositionManager) closePosition(bar int, candle types.Candle, price float64, reason types.CloseReason) {
	position := m.open

	if m.direction == types.DirectionShort {
		position.PnL = position.Quantity * (position.EntryPrice - price)
		m.cash = m.entryEquity + position.PnL
	} else {
		position.PnL = position.Quantity * (price - position.EntryPrice)
		m.cash += position.Quantity * price
	}

	position.Status = types.PositionStatusClosed
	position.ExitTime = candle.Time
	position.ExitPrice = price
	position.CloseReason = reason

	m.completed = append(m.completed, position)
	m.open = types.Position{}
	m.state = StateFlat
	m.transitions = append(m.transitions, Transition{Bar: bar, State: StateFlat})
}
