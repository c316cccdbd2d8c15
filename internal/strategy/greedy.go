package strategy

import "github.com/cabolab/cabo/internal/engine"

// Greedy plays a simple value-minimizing game: take cheap cards off the
// discard pile, dump its worst known card, scout its own unknown slots, and
// call once it can see a low hand.
type Greedy struct {
	// CallThreshold is the fully-known hand total at or below which Greedy
	// calls the round.
	CallThreshold int
}

// NewGreedy builds a Greedy strategy with the default call threshold.
func NewGreedy() *Greedy {
	return &Greedy{CallThreshold: 6}
}

func (s *Greedy) SelectDrawPile(pub engine.PublicView, priv engine.PrivateView) engine.DrawSource {
	if pub.DiscardTop == nil || len(priv.Hand) == 0 {
		return engine.SourceDraw
	}
	// A visible low card beats a gamble when we hold something known-worse.
	worst, known := s.worstKnown(priv)
	if known && pub.DiscardTop.Value() < priv.Hand[worst].Value() && pub.DiscardTop.Value() <= 4 {
		return engine.SourceDiscard
	}
	return engine.SourceDraw
}

func (s *Greedy) SelectCardToExchange(pub engine.PublicView, priv engine.PrivateView, source engine.DrawSource) int {
	if priv.DrawnCard == nil || len(priv.Hand) == 0 {
		return -1
	}
	drawn := priv.DrawnCard.Value()
	if worst, known := s.worstKnown(priv); known && priv.Hand[worst].Value() > drawn {
		return worst
	}
	// A cheap drawn card is worth risking against an unknown slot.
	if drawn <= 4 {
		for i, c := range priv.Hand {
			if c == nil {
				return i
			}
		}
	}
	if source == engine.SourceDiscard {
		// Discarding straight back is illegal; fall back to the worst slot.
		if worst, known := s.worstKnown(priv); known {
			return worst
		}
		return 0
	}
	return -1
}

func (s *Greedy) SelectCardToDiscard(pub engine.PublicView, priv engine.PrivateView) int {
	if pub.DiscardTop == nil {
		return -1
	}
	for i, c := range priv.Hand {
		if c != nil && c.Rank == pub.DiscardTop.Rank {
			return i
		}
	}
	return -1
}

func (s *Greedy) DecideCall(pub engine.PublicView, priv engine.PrivateView) int {
	if len(priv.Hand) == 0 {
		return -1
	}
	total := 0
	worst := 0
	for i, c := range priv.Hand {
		if c == nil {
			return -1 // never call blind
		}
		total += c.Value()
		if c.Value() > priv.Hand[worst].Value() {
			worst = i
		}
	}
	if total <= s.CallThreshold {
		return worst
	}
	return -1
}

func (s *Greedy) DecideEffect(pub engine.PublicView, priv engine.PrivateView, effect engine.Effect) engine.EffectDecision {
	opponents := sortedNames(priv.Opponents)
	switch effect {
	case engine.EffectDraw, engine.EffectShuffle:
		// Load up whichever opponent already holds the most cards.
		target := opponents[0]
		for _, name := range opponents[1:] {
			if len(priv.Opponents[name]) > len(priv.Opponents[target]) {
				target = name
			}
		}
		if effect == engine.EffectDraw {
			return engine.DecideDraw(target)
		}
		return engine.DecideShuffle(target)
	case engine.EffectPeek:
		for i, c := range priv.Hand {
			if c == nil {
				return engine.DecidePeek(priv.Name, i)
			}
		}
		for _, name := range opponents {
			if len(priv.Opponents[name]) > 0 {
				return engine.DecidePeek(name, 0)
			}
		}
		if len(priv.Hand) > 0 {
			return engine.DecidePeek(priv.Name, 0)
		}
		return engine.DecidePeek(priv.Name, -1) // no legal target left
	case engine.EffectSwap:
		// Ship our worst known card to an opponent.
		if worst, known := s.worstKnown(priv); known {
			for _, name := range opponents {
				if len(priv.Opponents[name]) > 0 {
					return engine.DecideSwap(priv.Name, worst, name, 0)
				}
			}
		}
		for _, name := range opponents {
			if len(priv.Opponents[name]) > 0 && len(priv.Hand) > 0 {
				return engine.DecideSwap(priv.Name, 0, name, 0)
			}
		}
		if len(priv.Hand) > 1 {
			return engine.DecideSwap(priv.Name, 0, priv.Name, 1)
		}
		return engine.DecideSwap(priv.Name, 0, priv.Name, 0) // no legal pair left
	}
	return engine.DecideNone()
}

// worstKnown returns the index of the highest-valued known slot, if any slot
// is known at all.
func (s *Greedy) worstKnown(priv engine.PrivateView) (int, bool) {
	worst, found := -1, false
	for i, c := range priv.Hand {
		if c == nil {
			continue
		}
		if !found || c.Value() > priv.Hand[worst].Value() {
			worst, found = i, true
		}
	}
	return worst, found
}
