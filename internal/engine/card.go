// Package engine implements the single-game orchestration core: the
// authoritative game state, per-player knowledge tracking, restricted view
// projection, and the deferred special-effect queue.
package engine

import "github.com/google/uuid"

// Suit is a single-letter suit code. Jokers use the pseudo-suits "R" and "B".
type Suit string

const (
	SuitHearts   Suit = "H"
	SuitDiamonds Suit = "D"
	SuitClubs    Suit = "C"
	SuitSpades   Suit = "S"
	SuitRedJoker Suit = "R"
	SuitBlkJoker Suit = "B"
)

// Rank is a single-letter rank code. "T" is ten, "O" is joker.
type Rank string

const (
	RankAce   Rank = "A"
	RankTwo   Rank = "2"
	RankThree Rank = "3"
	RankFour  Rank = "4"
	RankFive  Rank = "5"
	RankSix   Rank = "6"
	RankSeven Rank = "7"
	RankEight Rank = "8"
	RankNine  Rank = "9"
	RankTen   Rank = "T"
	RankJack  Rank = "J"
	RankQueen Rank = "Q"
	RankKing  Rank = "K"
	RankJoker Rank = "O"
)

// Effect identifies the special action a card triggers when it is discarded.
type Effect string

const (
	EffectNone    Effect = "none"
	EffectDraw    Effect = "draw"    // black kings: target opponent draws a penalty card
	EffectShuffle Effect = "shuffle" // red kings: target opponent's hand is reshuffled
	EffectSwap    Effect = "swap"    // queens: exchange any two cards between hands
	EffectPeek    Effect = "peek"    // jacks: look at one card
)

// Card is an immutable playing card. The ID distinguishes physical copies of
// the same rank/suit, which keeps conservation accounting exact.
type Card struct {
	ID   uuid.UUID
	Suit Suit
	Rank Rank
}

// Value returns the card's point value for round scoring: jokers 0, face
// cards 10, aces 1, everything else its numeric rank.
func (c Card) Value() int {
	switch c.Rank {
	case RankJoker:
		return 0
	case RankJack, RankQueen, RankKing:
		return 10
	case RankAce:
		return 1
	case RankTen:
		return 10
	default:
		return int(c.Rank[0] - '0')
	}
}

// EffectKind returns the effect the card triggers on discard. Red kings
// shuffle, black kings force a draw, queens swap, jacks peek.
func (c Card) EffectKind() Effect {
	switch c.Rank {
	case RankKing:
		if c.Suit == SuitHearts || c.Suit == SuitDiamonds {
			return EffectShuffle
		}
		return EffectDraw
	case RankQueen:
		return EffectSwap
	case RankJack:
		return EffectPeek
	default:
		return EffectNone
	}
}

func (c Card) String() string {
	switch c.Suit {
	case SuitRedJoker:
		return "Red Joker"
	case SuitBlkJoker:
		return "Black Joker"
	}
	return string(c.Rank) + string(c.Suit)
}

// NewDeck builds the full fixed card set: 52 standard cards plus two jokers.
// Every card gets a fresh uuid so individual copies stay distinguishable.
func NewDeck() []Card {
	suits := []Suit{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}
	ranks := []Rank{
		RankAce, RankTwo, RankThree, RankFour, RankFive, RankSix, RankSeven,
		RankEight, RankNine, RankTen, RankJack, RankQueen, RankKing,
	}
	deck := make([]Card, 0, len(suits)*len(ranks)+2)
	for _, s := range suits {
		for _, r := range ranks {
			deck = append(deck, Card{ID: uuid.New(), Suit: s, Rank: r})
		}
	}
	deck = append(deck,
		Card{ID: uuid.New(), Suit: SuitRedJoker, Rank: RankJoker},
		Card{ID: uuid.New(), Suit: SuitBlkJoker, Rank: RankJoker},
	)
	return deck
}
