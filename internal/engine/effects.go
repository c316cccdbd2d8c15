package engine

import "github.com/sirupsen/logrus"

// CardRef addresses one hand slot on the table.
type CardRef struct {
	Player string
	Index  int
}

// EffectDecision is the tagged union returned from Strategy.DecideEffect.
// The Kind tag must match the pending effect; use the constructors below so
// the shape is right for the kind.
//
//	DRAW, SHUFFLE: Target.Player names a live opponent
//	PEEK:          Target names any player (self allowed) and a slot index
//	SWAP:          Target and Second name two distinct slots
//	NONE:          no fields
type EffectDecision struct {
	Kind   Effect
	Target CardRef
	Second CardRef
}

// DecideNone builds the (empty) decision for a NONE effect.
func DecideNone() EffectDecision {
	return EffectDecision{Kind: EffectNone}
}

// DecideDraw targets an opponent for a forced penalty draw.
func DecideDraw(target string) EffectDecision {
	return EffectDecision{Kind: EffectDraw, Target: CardRef{Player: target}}
}

// DecideShuffle targets an opponent whose hand will be reshuffled.
func DecideShuffle(target string) EffectDecision {
	return EffectDecision{Kind: EffectShuffle, Target: CardRef{Player: target}}
}

// DecidePeek reveals the card at one slot to the decider alone.
func DecidePeek(target string, idx int) EffectDecision {
	return EffectDecision{Kind: EffectPeek, Target: CardRef{Player: target, Index: idx}}
}

// DecideSwap exchanges the cards at two slots.
func DecideSwap(a string, ai int, b string, bi int) EffectDecision {
	return EffectDecision{
		Kind:   EffectSwap,
		Target: CardRef{Player: a, Index: ai},
		Second: CardRef{Player: b, Index: bi},
	}
}

// enqueueEffect appends a pending effect for the card just discarded by
// player, subject to the configured trigger timing. fresh reports whether
// the card was the freshly drawn card going straight to the discard pile.
func (g *Game) enqueueEffect(p *Player, c Card, fresh bool) {
	kind := c.EffectKind()
	if kind == EffectNone {
		return
	}
	if g.rules.EffectTiming == EffectOnDrawnDiscardOnly && !fresh {
		return
	}
	g.effects = append(g.effects, EffectEntry{Player: p.Name, Effect: kind})
	g.record(p.Name, "effect_enqueued", map[string]interface{}{
		"effect": string(kind),
		"card":   c.String(),
	})
}

// resolveEffects drains the effect queue strictly in arrival order. Each
// entry asks the triggering player's strategy for a decision, validates it
// against the effect kind, and applies it. Any invalid decision is fatal.
func (g *Game) resolveEffects() error {
	for len(g.effects) > 0 {
		entry := g.effects[0]
		g.effects = g.effects[1:]
		p := g.playerByName(entry.Player)
		if p == nil || entry.Effect == EffectNone {
			continue
		}
		dec := p.Strategy.DecideEffect(g.PublicView(), g.PrivateView(p), entry.Effect)
		if err := g.applyEffect(p, entry.Effect, dec); err != nil {
			return &StrategyFault{Player: p.Name, Turn: g.turn, Method: "DecideEffect", Err: err}
		}
	}
	return nil
}

// applyEffect validates the decision shape and targets, then mutates the
// authoritative state and whatever knowledge the rules legitimately reveal.
func (g *Game) applyEffect(p *Player, effect Effect, dec EffectDecision) error {
	if dec.Kind != effect {
		return &InvalidEffectDecisionError{Effect: effect, Field: "kind",
			Reason: "decision shape is for " + string(dec.Kind)}
	}

	switch effect {
	case EffectDraw, EffectShuffle:
		target := g.playerByName(dec.Target.Player)
		if target == nil {
			return &InvalidEffectDecisionError{Effect: effect, Field: "target.player",
				Reason: "no such player " + dec.Target.Player}
		}
		if target == p {
			return &InvalidEffectDecisionError{Effect: effect, Field: "target.player",
				Reason: "must name an opponent, not self"}
		}
		if effect == EffectDraw {
			if err := g.penalize(target); err != nil {
				return err
			}
		} else {
			g.shuffleHand(target)
		}

	case EffectPeek:
		target := g.playerByName(dec.Target.Player)
		if target == nil {
			return &InvalidEffectDecisionError{Effect: effect, Field: "target.player",
				Reason: "no such player " + dec.Target.Player}
		}
		if dec.Target.Index < 0 || dec.Target.Index >= len(target.Hand) {
			return &InvalidEffectDecisionError{Effect: effect, Field: "target.index",
				Reason: "out of hand bounds"}
		}
		// Revealed to the peeking player only; no other view changes.
		revealed := target.Hand[dec.Target.Index]
		if target == p {
			p.learnOwnCard(dec.Target.Index, revealed)
		} else {
			p.learnOpponentCard(target.Name, dec.Target.Index, revealed)
		}
		g.record(p.Name, "effect_peek", map[string]interface{}{
			"target": target.Name, "index": dec.Target.Index,
		})

	case EffectSwap:
		a := g.playerByName(dec.Target.Player)
		b := g.playerByName(dec.Second.Player)
		if a == nil {
			return &InvalidEffectDecisionError{Effect: effect, Field: "target.player",
				Reason: "no such player " + dec.Target.Player}
		}
		if b == nil {
			return &InvalidEffectDecisionError{Effect: effect, Field: "second.player",
				Reason: "no such player " + dec.Second.Player}
		}
		if dec.Target.Index < 0 || dec.Target.Index >= len(a.Hand) {
			return &InvalidEffectDecisionError{Effect: effect, Field: "target.index",
				Reason: "out of hand bounds"}
		}
		if dec.Second.Index < 0 || dec.Second.Index >= len(b.Hand) {
			return &InvalidEffectDecisionError{Effect: effect, Field: "second.index",
				Reason: "out of hand bounds"}
		}
		if dec.Target == dec.Second {
			return &InvalidEffectDecisionError{Effect: effect, Field: "second",
				Reason: "swap targets must be distinct"}
		}
		g.swapCards(a, dec.Target.Index, b, dec.Second.Index)

	case EffectNone:
		// Resolved immediately; nothing to do.
	}
	return nil
}

// shuffleHand re-randomizes the target's hand order. The target can no
// longer track their own slots, so their own-hand knowledge is cleared.
// Opponents keep whatever (now stale) entries they had.
func (g *Game) shuffleHand(target *Player) {
	g.rng.Shuffle(len(target.Hand), func(i, j int) {
		target.Hand[i], target.Hand[j] = target.Hand[j], target.Hand[i]
	})
	target.forgetOwnHand()
	g.record(target.Name, "effect_shuffle", nil)
	g.log.WithFields(logrus.Fields{"target": target.Name}).Info("hand reshuffled")
}

// swapCards exchanges the cards at two slots in the authoritative state and
// swaps every player's knowledge entries for those slots. Nobody learns a
// new identity from a blind swap; known entries just travel with the cards.
func (g *Game) swapCards(a *Player, ai int, b *Player, bi int) {
	a.Hand[ai], b.Hand[bi] = b.Hand[bi], a.Hand[ai]
	for _, obs := range g.players {
		ka := obs.slotFor(a.Name, ai)
		kb := obs.slotFor(b.Name, bi)
		obs.setSlotFor(a.Name, ai, kb)
		obs.setSlotFor(b.Name, bi, ka)
	}
	g.record(a.Name, "effect_swap", map[string]interface{}{
		"a": a.Name, "aIndex": ai, "b": b.Name, "bIndex": bi,
	})
}
