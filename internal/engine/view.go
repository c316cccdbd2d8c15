package engine

// EffectEntry is the public projection of one pending effect: who triggered
// it and what kind it is. Resolved decisions are never projected.
type EffectEntry struct {
	Player string
	Effect Effect
}

// PublicView is the information every participant may see: pile sizes and
// the discard top, never draw-pile contents or any hidden hand slot.
type PublicView struct {
	Round           int
	Scores          map[string]int
	CurrentPlayer   string
	CallMade        bool
	Caller          string
	DrawPileSize    int
	DiscardPileSize int
	DiscardTop      *Card
	TreasureSize    int
	EffectQueue     []EffectEntry
}

// PrivateView is one participant's picture of the table, sourced exclusively
// from their knowledge map. A nil slot is unknown: the projector reports it
// unknown regardless of the slot's true value.
type PrivateView struct {
	Name      string
	DrawnCard *Card
	Hand      []*Card
	Opponents map[string][]*Card
	Treasure  []*Card
}

// PublicView builds a fresh public snapshot. Everything is copied; mutating
// the view has no effect on authoritative state.
func (g *Game) PublicView() PublicView {
	v := PublicView{
		Round:           g.round,
		Scores:          make(map[string]int, len(g.players)),
		CurrentPlayer:   g.players[g.currentIdx].Name,
		CallMade:        g.callerIdx >= 0,
		DrawPileSize:    g.dealer.DrawPileSize(),
		DiscardPileSize: g.dealer.DiscardPileSize(),
		TreasureSize:    g.dealer.TreasureSize(),
		EffectQueue:     make([]EffectEntry, len(g.effects)),
	}
	for name, s := range g.scores {
		v.Scores[name] = s
	}
	if g.callerIdx >= 0 {
		v.Caller = g.players[g.callerIdx].Name
	}
	if top, ok := g.dealer.PeekDiscardTop(); ok {
		topCopy := top
		v.DiscardTop = &topCopy
	}
	copy(v.EffectQueue, g.effects)
	return v
}

// PrivateView builds a fresh private snapshot for one player from their
// knowledge map alone. The authoritative hands are never consulted here;
// that separation is what enforces the information-hiding contract.
func (g *Game) PrivateView(p *Player) PrivateView {
	v := PrivateView{
		Name:      p.Name,
		Hand:      copyMaskedSlots(p.know.hand),
		Treasure:  copyMaskedSlots(p.know.treasure),
		Opponents: make(map[string][]*Card, len(p.know.opponents)),
	}
	for name, slots := range p.know.opponents {
		v.Opponents[name] = copyMaskedSlots(slots)
	}
	if p.drawn != nil {
		c := *p.drawn
		v.DrawnCard = &c
	}
	return v
}

// copyMaskedSlots deep-copies a knowledge slice, preserving nil (unknown)
// entries while detaching the view from the live map.
func copyMaskedSlots(slots []*Card) []*Card {
	out := make([]*Card, len(slots))
	for i, c := range slots {
		if c != nil {
			cc := *c
			out[i] = &cc
		}
	}
	return out
}
