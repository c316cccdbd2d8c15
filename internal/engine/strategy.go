package engine

// Strategy is the decision contract consumed by the orchestrator. Every
// method receives a fresh public/private view pair; implementations must
// treat both as read-only snapshots. Each decision point gets exactly one
// call per turn — an invalid return aborts the simulation run rather than
// being silently replaced.
type Strategy interface {
	// SelectDrawPile chooses the pile to draw from at the start of the turn.
	SelectDrawPile(pub PublicView, priv PrivateView) DrawSource

	// SelectCardToExchange chooses the hand slot to swap the drawn card
	// into, or -1 to discard the drawn card directly. Returning -1 after a
	// discard-pile draw is illegal: the card cannot go straight back.
	SelectCardToExchange(pub PublicView, priv PrivateView, source DrawSource) int

	// SelectCardToDiscard reacts to a fresh discard top: a hand index to
	// attempt a matching discard, or -1 to decline.
	SelectCardToDiscard(pub PublicView, priv PrivateView) int

	// DecideCall ends the round: a non-negative hand index calls (the index
	// must be a valid slot even when only one card remains, in which case
	// nothing is discarded), -1 declines.
	DecideCall(pub PublicView, priv PrivateView) int

	// DecideEffect resolves a pending special effect. The decision shape
	// must match the effect kind; see EffectDecision.
	DecideEffect(pub PublicView, priv PrivateView, effect Effect) EffectDecision
}
