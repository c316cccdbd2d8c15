package strategy

import (
	"math/rand"

	"github.com/cabolab/cabo/internal/engine"
)

// Random plays legal but arbitrary moves. Useful as a baseline opponent and
// for soak-testing the engine.
type Random struct {
	rng *rand.Rand
}

// NewRandom builds a Random strategy with its own seeded source.
func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (s *Random) SelectDrawPile(pub engine.PublicView, priv engine.PrivateView) engine.DrawSource {
	// Drawing from the discard pile forces an exchange, so only do it with
	// a hand to exchange into.
	if pub.DiscardPileSize > 0 && len(priv.Hand) > 0 && s.rng.Intn(2) == 0 {
		return engine.SourceDiscard
	}
	return engine.SourceDraw
}

func (s *Random) SelectCardToExchange(pub engine.PublicView, priv engine.PrivateView, source engine.DrawSource) int {
	if len(priv.Hand) == 0 {
		return -1
	}
	return s.rng.Intn(len(priv.Hand))
}

func (s *Random) SelectCardToDiscard(pub engine.PublicView, priv engine.PrivateView) int {
	if pub.DiscardTop == nil {
		return -1
	}
	for i, c := range priv.Hand {
		if c != nil && c.Rank == pub.DiscardTop.Rank {
			// Usually take the match, occasionally sit on it.
			if s.rng.Float64() < 0.9 {
				return i
			}
			return -1
		}
	}
	return -1
}

func (s *Random) DecideCall(pub engine.PublicView, priv engine.PrivateView) int {
	if len(priv.Hand) > 0 && s.rng.Float64() < 0.05 {
		return s.rng.Intn(len(priv.Hand))
	}
	return -1
}

func (s *Random) DecideEffect(pub engine.PublicView, priv engine.PrivateView, effect engine.Effect) engine.EffectDecision {
	opponents := sortedNames(priv.Opponents)
	switch effect {
	case engine.EffectDraw:
		return engine.DecideDraw(opponents[s.rng.Intn(len(opponents))])
	case engine.EffectShuffle:
		return engine.DecideShuffle(opponents[s.rng.Intn(len(opponents))])
	case engine.EffectPeek:
		// Peeking an own unknown slot is the usual play.
		if len(priv.Hand) > 0 {
			return engine.DecidePeek(priv.Name, s.rng.Intn(len(priv.Hand)))
		}
		name := opponents[s.rng.Intn(len(opponents))]
		return engine.DecidePeek(name, s.rng.Intn(max(1, len(priv.Opponents[name]))))
	case engine.EffectNone:
		return engine.DecideNone()
	case engine.EffectSwap:
		refs := s.allRefs(priv)
		if len(refs) < 2 {
			return engine.DecideNone()
		}
		i := s.rng.Intn(len(refs))
		j := s.rng.Intn(len(refs) - 1)
		if j >= i {
			j++
		}
		return engine.DecideSwap(refs[i].Player, refs[i].Index, refs[j].Player, refs[j].Index)
	}
	return engine.DecideNone()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// allRefs lists every addressable slot on the table, own hand included.
func (s *Random) allRefs(priv engine.PrivateView) []engine.CardRef {
	var refs []engine.CardRef
	for i := range priv.Hand {
		refs = append(refs, engine.CardRef{Player: priv.Name, Index: i})
	}
	for _, name := range sortedNames(priv.Opponents) {
		for i := range priv.Opponents[name] {
			refs = append(refs, engine.CardRef{Player: name, Index: i})
		}
	}
	return refs
}
