package engine

import "fmt"

// The four error kinds below are compliance failures: a misbehaving strategy
// produced a decision the rules cannot accept. The orchestrator never
// substitutes a default for an invalid decision; all four abort the run.

// InvalidSourceError reports an illegal draw-source choice, e.g. drawing
// from an empty discard pile.
type InvalidSourceError struct {
	Source DrawSource
	Reason string
}

func (e *InvalidSourceError) Error() string {
	return fmt.Sprintf("invalid draw source %v: %s", e.Source, e.Reason)
}

// InvalidMoveError reports an out-of-range or malformed hand index returned
// from an exchange, discard, or call decision.
type InvalidMoveError struct {
	Index    int
	HandSize int
	Op       string
}

func (e *InvalidMoveError) Error() string {
	return fmt.Sprintf("invalid %s index %d (hand size %d)", e.Op, e.Index, e.HandSize)
}

// InvalidEffectDecisionError reports a decision whose shape or targets do not
// fit the pending effect kind. Field names the offending part of the decision.
type InvalidEffectDecisionError struct {
	Effect Effect
	Field  string
	Reason string
}

func (e *InvalidEffectDecisionError) Error() string {
	return fmt.Sprintf("invalid %s effect decision: %s: %s", e.Effect, e.Field, e.Reason)
}

// EmptyPilesError is returned when a draw is requested while both the draw
// pile and the discard pile are exhausted.
type EmptyPilesError struct{}

func (e *EmptyPilesError) Error() string {
	return "both draw and discard piles are exhausted"
}

// StrategyFault wraps a fatal decision error with the offending player, the
// turn it happened on, and the strategy method that produced it. It is the
// error surfaced from Game.Play.
type StrategyFault struct {
	Player string
	Turn   int
	Method string
	Err    error
}

func (e *StrategyFault) Error() string {
	return fmt.Sprintf("strategy fault: player %q, turn %d, %s: %v", e.Player, e.Turn, e.Method, e.Err)
}

func (e *StrategyFault) Unwrap() error { return e.Err }
