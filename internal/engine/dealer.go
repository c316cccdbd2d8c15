package engine

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// DrawSource selects which pile a card is drawn from.
type DrawSource int

const (
	SourceDraw DrawSource = iota
	SourceDiscard
)

func (s DrawSource) String() string {
	if s == SourceDiscard {
		return "discard pile"
	}
	return "draw pile"
}

// Dealer owns the draw pile, the discard pile, and the shared face-down
// treasure pot. No other component touches pile state directly; every
// movement of a card between piles goes through the Dealer.
type Dealer struct {
	handSize     int
	treasureSize int

	deck        []Card // the full fixed card set, never mutated after construction
	drawPile    []Card // stack; draws pop the tail
	discardPile []Card // tail is the top
	treasure    []Card

	rng *rand.Rand
	log *logrus.Entry
}

// NewDealer builds a dealer over a fresh deck. The rng drives every shuffle
// so seeded games replay identically.
func NewDealer(handSize, treasureSize int, rng *rand.Rand, log *logrus.Entry) *Dealer {
	d := &Dealer{
		handSize:     handSize,
		treasureSize: treasureSize,
		deck:         NewDeck(),
		rng:          rng,
		log:          log,
	}
	d.Reset()
	return d
}

// Reset restores the full deck into a shuffled draw pile and empties the
// discard pile and treasure pot. Called at the start of every round.
func (d *Dealer) Reset() {
	d.drawPile = make([]Card, len(d.deck))
	copy(d.drawPile, d.deck)
	d.rng.Shuffle(len(d.drawPile), func(i, j int) {
		d.drawPile[i], d.drawPile[j] = d.drawPile[j], d.drawPile[i]
	})
	d.discardPile = d.discardPile[:0]
	d.treasure = d.treasure[:0]
}

// DealInitialHands deals handSize cards to every player in order, then the
// treasure pot, then flips one card to start the discard pile.
func (d *Dealer) DealInitialHands(players []*Player) error {
	need := len(players)*d.handSize + d.treasureSize + 1
	if len(d.drawPile) < need {
		return fmt.Errorf("not enough cards to deal: have %d, need %d", len(d.drawPile), need)
	}
	for _, p := range players {
		p.Hand = p.Hand[:0]
	}
	for i := 0; i < d.handSize; i++ {
		for _, p := range players {
			p.Hand = append(p.Hand, d.pop())
		}
	}
	for i := 0; i < d.treasureSize; i++ {
		d.treasure = append(d.treasure, d.pop())
	}
	d.discardPile = append(d.discardPile, d.pop())
	return nil
}

func (d *Dealer) pop() Card {
	c := d.drawPile[len(d.drawPile)-1]
	d.drawPile = d.drawPile[:len(d.drawPile)-1]
	return c
}

// Draw removes and returns the top card of the requested pile. Drawing from
// an empty draw pile reshuffles the discard pile, except its top card which
// stays behind as the new discard top. Only when both piles are exhausted
// does it fail, with EmptyPilesError.
func (d *Dealer) Draw(source DrawSource) (Card, error) {
	switch source {
	case SourceDraw:
		if len(d.drawPile) == 0 {
			d.reshuffleDiscardIntoDraw()
		}
		if len(d.drawPile) == 0 {
			return Card{}, &EmptyPilesError{}
		}
		return d.pop(), nil
	case SourceDiscard:
		if len(d.discardPile) == 0 {
			return Card{}, &InvalidSourceError{Source: source, Reason: "discard pile is empty"}
		}
		c := d.discardPile[len(d.discardPile)-1]
		d.discardPile = d.discardPile[:len(d.discardPile)-1]
		return c, nil
	}
	return Card{}, &InvalidSourceError{Source: source, Reason: "unknown source"}
}

// reshuffleDiscardIntoDraw rebuilds the draw pile from the discard pile,
// leaving the current discard top in place.
func (d *Dealer) reshuffleDiscardIntoDraw() {
	if len(d.discardPile) == 0 {
		return
	}
	top := d.discardPile[len(d.discardPile)-1]
	d.drawPile = append(d.drawPile, d.discardPile[:len(d.discardPile)-1]...)
	d.discardPile = d.discardPile[:0]
	d.discardPile = append(d.discardPile, top)
	d.rng.Shuffle(len(d.drawPile), func(i, j int) {
		d.drawPile[i], d.drawPile[j] = d.drawPile[j], d.drawPile[i]
	})
	if d.log != nil {
		d.log.WithFields(logrus.Fields{
			"drawPileSize": len(d.drawPile),
		}).Info("reshuffled discard pile into draw pile")
	}
}

// Discard appends a card to the discard pile.
func (d *Dealer) Discard(c Card) {
	d.discardPile = append(d.discardPile, c)
}

// PeekDiscardTop returns the most recently discarded card, if any.
func (d *Dealer) PeekDiscardTop() (Card, bool) {
	if len(d.discardPile) == 0 {
		return Card{}, false
	}
	return d.discardPile[len(d.discardPile)-1], true
}

// DrawPileSize returns the number of cards left in the draw pile.
func (d *Dealer) DrawPileSize() int { return len(d.drawPile) }

// DiscardPileSize returns the number of cards in the discard pile.
func (d *Dealer) DiscardPileSize() int { return len(d.discardPile) }

// TreasureSize returns the number of cards in the shared treasure pot.
func (d *Dealer) TreasureSize() int { return len(d.treasure) }

// HandSize returns the configured per-player hand size.
func (d *Dealer) HandSize() int { return d.handSize }

// cardCensus counts every card currently owned by the dealer, keyed by card
// id. Used by conservation checks together with the players' holdings.
func (d *Dealer) cardCensus(counts map[string]int) {
	for _, c := range d.drawPile {
		counts[c.ID.String()]++
	}
	for _, c := range d.discardPile {
		counts[c.ID.String()]++
	}
	for _, c := range d.treasure {
		counts[c.ID.String()]++
	}
}

// fullDeckCensus counts the fixed card set.
func (d *Dealer) fullDeckCensus() map[string]int {
	counts := make(map[string]int, len(d.deck))
	for _, c := range d.deck {
		counts[c.ID.String()]++
	}
	return counts
}
