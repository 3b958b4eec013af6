package domain

import "time"

// TradeSide is the direction of a market order.
type TradeSide string

const (
	SideBuy  TradeSide = "buy"
	SideSell TradeSide = "sell"
)

// TradeRequest asks the CLI to place a market order.
type TradeRequest struct {
	Token  string    `json:"token"`
	Side   TradeSide `json:"side"`
	Amount float64   `json:"amount"`
}

// TradeSimulation is the dry-run answer for a TradeRequest.
type TradeSimulation struct {
	Command     []string `json:"command"`
	CommandText string   `json:"commandText"`
	RiskChecks  []string `json:"riskChecks"`
}

// TradeEvent is published after an execution attempt.
type TradeEvent struct {
	ID        string       `json:"id"`
	Request   TradeRequest `json:"request"`
	OK        bool         `json:"ok"`
	Error     string       `json:"error,omitempty"`
	Code      string       `json:"code,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}
