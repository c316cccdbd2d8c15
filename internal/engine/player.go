package engine

// knowledge is one participant's subjective picture of the table. A nil
// entry means the slot has never been legitimately revealed to this player;
// it is distinct from a removed slot, which shrinks the slice. Entries may
// go stale (e.g. after an opponent's hand is shuffled) without violating
// anything: staleness is a gameplay outcome, leaking is a bug.
type knowledge struct {
	hand      []*Card
	opponents map[string][]*Card
	treasure  []*Card
}

// Player holds one participant's authoritative state (hand, treasure, the
// at-most-one drawn card) plus their knowledge map. Only the orchestrator
// mutates any of it; strategies see read-only projections.
type Player struct {
	Name     string
	Strategy Strategy
	Hand     []Card
	Treasure []Card

	drawn *Card
	know  knowledge
}

// NewPlayer creates a player with an empty hand and no knowledge.
func NewPlayer(name string, s Strategy) *Player {
	return &Player{Name: name, Strategy: s}
}

// resetKnowledge wipes the knowledge map for a new round: every own slot,
// every opponent slot, and every treasure slot starts unknown.
func (p *Player) resetKnowledge(opponents []string, handSize, treasureSize int) {
	p.know.hand = make([]*Card, handSize)
	p.know.treasure = make([]*Card, treasureSize)
	p.know.opponents = make(map[string][]*Card, len(opponents))
	for _, name := range opponents {
		p.know.opponents[name] = make([]*Card, handSize)
	}
	p.drawn = nil
}

// learnOwnCard records the identity of one of p's own hand slots.
func (p *Player) learnOwnCard(idx int, c Card) {
	if idx < 0 || idx >= len(p.know.hand) {
		return
	}
	cc := c
	p.know.hand[idx] = &cc
}

// learnOpponentCard records the identity of a slot in an opponent's hand.
func (p *Player) learnOpponentCard(name string, idx int, c Card) {
	slots, ok := p.know.opponents[name]
	if !ok || idx < 0 || idx >= len(slots) {
		return
	}
	cc := c
	slots[idx] = &cc
}

// forgetOwnHand clears p's knowledge of their own hand. Applied when the
// hand is reshuffled: positions are no longer trackable.
func (p *Player) forgetOwnHand() {
	for i := range p.know.hand {
		p.know.hand[i] = nil
	}
}

// dropOwnSlot removes a slot from p's own-hand knowledge, mirroring a hand
// shrink after a discard from hand.
func (p *Player) dropOwnSlot(idx int) {
	if idx < 0 || idx >= len(p.know.hand) {
		return
	}
	p.know.hand = append(p.know.hand[:idx], p.know.hand[idx+1:]...)
}

// dropOpponentSlot removes a slot from p's knowledge of an opponent's hand.
func (p *Player) dropOpponentSlot(name string, idx int) {
	slots, ok := p.know.opponents[name]
	if !ok || idx < 0 || idx >= len(slots) {
		return
	}
	p.know.opponents[name] = append(slots[:idx], slots[idx+1:]...)
}

// appendUnknownOwnSlot grows p's own-hand knowledge by one unknown slot,
// mirroring a penalty card appended to the hand.
func (p *Player) appendUnknownOwnSlot() {
	p.know.hand = append(p.know.hand, nil)
}

// appendUnknownOpponentSlot grows p's knowledge of an opponent's hand by one
// unknown slot.
func (p *Player) appendUnknownOpponentSlot(name string) {
	if slots, ok := p.know.opponents[name]; ok {
		p.know.opponents[name] = append(slots, nil)
	}
}

// slotFor returns the knowledge entry p holds for owner's hand slot idx.
// owner may be p itself.
func (p *Player) slotFor(owner string, idx int) *Card {
	if owner == p.Name {
		if idx < 0 || idx >= len(p.know.hand) {
			return nil
		}
		return p.know.hand[idx]
	}
	slots := p.know.opponents[owner]
	if idx < 0 || idx >= len(slots) {
		return nil
	}
	return slots[idx]
}

// setSlotFor overwrites the knowledge entry p holds for owner's hand slot
// idx. A nil entry marks the slot unknown.
func (p *Player) setSlotFor(owner string, idx int, c *Card) {
	if owner == p.Name {
		if idx >= 0 && idx < len(p.know.hand) {
			p.know.hand[idx] = c
		}
		return
	}
	if slots, ok := p.know.opponents[owner]; ok && idx >= 0 && idx < len(slots) {
		slots[idx] = c
	}
}

// setDrawn stores the card currently held between draw and exchange.
func (p *Player) setDrawn(c Card) {
	cc := c
	p.drawn = &cc
}

// clearDrawn forgets the held card after it is exchanged or discarded.
func (p *Player) clearDrawn() {
	p.drawn = nil
}

// DrawnCard returns a copy of the card drawn this turn, if any.
func (p *Player) DrawnCard() (Card, bool) {
	if p.drawn == nil {
		return Card{}, false
	}
	return *p.drawn, true
}

// HandValue sums the point values of the player's hand for scoring.
func (p *Player) HandValue() int {
	total := 0
	for _, c := range p.Hand {
		total += c.Value()
	}
	return total
}

// cardCensus counts every card the player holds, keyed by card id.
func (p *Player) cardCensus(counts map[string]int) {
	for _, c := range p.Hand {
		counts[c.ID.String()]++
	}
	for _, c := range p.Treasure {
		counts[c.ID.String()]++
	}
	if p.drawn != nil {
		counts[p.drawn.ID.String()]++
	}
}
