package models

// RolloverStrategy selects how balances are reset when a new billing cycle starts
type RolloverStrategy string

const (
	// RolloverCarryOver adds the new cycle's fare on top of any existing balance,
	// so unpaid amounts accumulate.
	RolloverCarryOver RolloverStrategy = "carry_over"

	// RolloverForgive discards the existing balance and pins it to exactly one
	// cycle's fare, forgiving prior arrears (and wiping credit).
	RolloverForgive RolloverStrategy = "forgive"
)

// Valid reports whether the strategy is one of the known rollover modes
func (s RolloverStrategy) Valid() bool {
	return s == RolloverCarryOver || s == RolloverForgive
}

// RolloverRequest represents the request body for starting a new billing cycle
type RolloverRequest struct {
	Strategy RolloverStrategy `json:"strategy"`
}

// RolloverResponse reports how many customers were rebalanced
type RolloverResponse struct {
	Strategy         RolloverStrategy `json:"strategy"`
	CustomersUpdated int64            `json:"customers_updated"`
}
