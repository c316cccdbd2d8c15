package engine

// EffectTiming selects when a discarded special card enqueues its effect.
// The exact trigger varies by table convention, so it is a rule, not a
// constant.
type EffectTiming int

const (
	// EffectOnAnyDiscard enqueues the effect whenever a special card reaches
	// the discard pile, whatever path it took out of play.
	EffectOnAnyDiscard EffectTiming = iota
	// EffectOnDrawnDiscardOnly enqueues only when the freshly drawn card is
	// discarded directly; cards leaving the hand trigger nothing.
	EffectOnDrawnDiscardOnly
)

// Rules holds the table configuration for one game.
type Rules struct {
	HandSize             int
	TreasureSize         int
	InitiallyKnown       int  // own hand slots revealed to each player at the deal
	TargetScore          int  // game ends once any cumulative score reaches this
	MaxRounds            int  // hard round limit; 0 means unlimited
	AllowReactiveDiscard bool // opponents may discard a card matching the discard top
	PenaltyOnMismatch    bool // a failed reactive discard costs a penalty draw
	EffectTiming         EffectTiming
}

// DefaultRules matches the standard table: 5-card hands, 3 treasure cards,
// the first two own slots revealed, play to 100 points.
func DefaultRules() Rules {
	return Rules{
		HandSize:             5,
		TreasureSize:         3,
		InitiallyKnown:       2,
		TargetScore:          100,
		MaxRounds:            0,
		AllowReactiveDiscard: true,
		PenaltyOnMismatch:    true,
		EffectTiming:         EffectOnAnyDiscard,
	}
}
