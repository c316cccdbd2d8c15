package engine

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TurnState names the orchestrator's position in the turn state machine.
type TurnState int

const (
	StateRoundStart TurnState = iota
	StateAwaitDrawChoice
	StateAwaitExchangeChoice
	StateAwaitDiscardMatch
	StateResolveEffects
	StateAwaitCallDecision
	StateRoundScoring
	StateGameEnd
)

func (s TurnState) String() string {
	switch s {
	case StateRoundStart:
		return "round_start"
	case StateAwaitDrawChoice:
		return "await_draw_choice"
	case StateAwaitExchangeChoice:
		return "await_exchange_choice"
	case StateAwaitDiscardMatch:
		return "await_discard_match"
	case StateResolveEffects:
		return "resolve_effects"
	case StateAwaitCallDecision:
		return "await_call_decision"
	case StateRoundScoring:
		return "round_scoring"
	case StateGameEnd:
		return "game_end"
	}
	return "unknown"
}

// Config carries everything needed to build a game.
type Config struct {
	Rules    Rules
	Seed     int64 // 0 means time-seeded
	Logger   *logrus.Logger
	Recorder Recorder // optional
}

// Game owns the authoritative state for a single game: the players, the
// dealer, the cumulative scores, and the effect queue. Everything is mutated
// exclusively by the orchestration methods below; strategies only ever see
// view snapshots. Strictly single-threaded: each decision is one synchronous
// call.
type Game struct {
	id       uuid.UUID
	rules    Rules
	log      *logrus.Entry
	rng      *rand.Rand
	dealer   *Dealer
	players  []*Player
	scores   map[string]int
	recorder Recorder

	round       int
	turn        int
	currentIdx  int
	callerIdx   int
	effects     []EffectEntry
	state       TurnState
	actionIndex int
}

// NewGame builds a game over the given players. Turn order is the argument
// order and stays fixed; the starting player rotates by score between rounds.
func NewGame(cfg Config, players ...*Player) (*Game, error) {
	if len(players) < 2 {
		return nil, fmt.Errorf("need at least 2 players, got %d", len(players))
	}
	seen := make(map[string]bool, len(players))
	for _, p := range players {
		if p.Name == "" {
			return nil, fmt.Errorf("player with empty name")
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate player name %q", p.Name)
		}
		if p.Strategy == nil {
			return nil, fmt.Errorf("player %q has no strategy assigned", p.Name)
		}
		seen[p.Name] = true
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
	}

	id := uuid.New()
	entry := logger.WithField("game", id)
	rng := rand.New(rand.NewSource(seed))

	g := &Game{
		id:        id,
		rules:     cfg.Rules,
		log:       entry,
		rng:       rng,
		dealer:    NewDealer(cfg.Rules.HandSize, cfg.Rules.TreasureSize, rng, entry),
		players:   players,
		scores:    make(map[string]int, len(players)),
		recorder:  cfg.Recorder,
		callerIdx: -1,
		state:     StateRoundStart,
	}
	for _, p := range players {
		g.scores[p.Name] = 0
	}
	return g, nil
}

// ID returns the game's identifier.
func (g *Game) ID() uuid.UUID { return g.id }

// Round returns the number of completed rounds.
func (g *Game) Round() int { return g.round }

// State returns the orchestrator's current turn state.
func (g *Game) State() TurnState { return g.state }

// Scores returns a copy of the cumulative scores.
func (g *Game) Scores() map[string]int {
	out := make(map[string]int, len(g.scores))
	for name, s := range g.scores {
		out[name] = s
	}
	return out
}

// Players returns the players in turn order.
func (g *Game) Players() []*Player {
	out := make([]*Player, len(g.players))
	copy(out, g.players)
	return out
}

func (g *Game) playerByName(name string) *Player {
	for _, p := range g.players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Play runs rounds until the target score or round limit is reached. The
// only error returns are compliance failures from a misbehaving strategy
// (or exhausted piles), wrapped in a StrategyFault naming the offender.
func (g *Game) Play() error {
	for !g.finished() {
		if err := g.initRound(); err != nil {
			return err
		}
		if err := g.playRound(); err != nil {
			return err
		}
		g.scoreRound()
	}
	g.state = StateGameEnd
	g.record("", "game_end", map[string]interface{}{"scores": g.Scores()})
	g.log.WithFields(logrus.Fields{"rounds": g.round, "scores": g.Scores()}).Info("game over")
	return nil
}

func (g *Game) finished() bool {
	if g.rules.MaxRounds > 0 && g.round >= g.rules.MaxRounds {
		return true
	}
	for _, s := range g.scores {
		if s >= g.rules.TargetScore {
			return true
		}
	}
	return false
}

// initRound resets the piles, deals hands and treasure, and reveals each
// player's first InitiallyKnown slots to them. The player with the highest
// cumulative score opens every round after the first.
func (g *Game) initRound() error {
	g.state = StateRoundStart
	g.dealer.Reset()
	if err := g.dealer.DealInitialHands(g.players); err != nil {
		return err
	}

	names := make([]string, len(g.players))
	for i, p := range g.players {
		names[i] = p.Name
	}
	for _, p := range g.players {
		p.Treasure = p.Treasure[:0]
		opponents := make([]string, 0, len(names)-1)
		for _, n := range names {
			if n != p.Name {
				opponents = append(opponents, n)
			}
		}
		p.resetKnowledge(opponents, g.rules.HandSize, g.rules.TreasureSize)
		for i := 0; i < g.rules.InitiallyKnown && i < len(p.Hand); i++ {
			p.learnOwnCard(i, p.Hand[i])
		}
	}

	g.currentIdx = 0
	if g.round > 0 {
		best := g.players[0].Name
		for _, p := range g.players[1:] {
			if g.scores[p.Name] > g.scores[best] {
				best = p.Name
			}
		}
		for i, p := range g.players {
			if p.Name == best {
				g.currentIdx = i
				break
			}
		}
	}
	g.callerIdx = -1
	g.effects = g.effects[:0]
	g.record("", "round_start", map[string]interface{}{"round": g.round})
	return nil
}

// playRound runs player turns until the turn pointer returns to the caller:
// once somebody calls, every other player takes exactly one more turn, with
// no call offered to them, and the caller's decisions are never requested
// again that round.
func (g *Game) playRound() error {
	for g.callerIdx < 0 || g.currentIdx != g.callerIdx {
		p := g.players[g.currentIdx]
		if err := g.playTurn(p, g.callerIdx < 0); err != nil {
			return err
		}
		g.currentIdx = (g.currentIdx + 1) % len(g.players)
		g.turn++
	}
	return nil
}

// playTurn drives one player through draw, exchange-or-discard, the reactive
// discard window, effect resolution, and (when allowed) the call decision.
func (g *Game) playTurn(p *Player, allowCall bool) error {
	// 1. Draw.
	g.state = StateAwaitDrawChoice
	source := p.Strategy.SelectDrawPile(g.PublicView(), g.PrivateView(p))
	if source == SourceDiscard && g.dealer.DiscardPileSize() == 0 {
		return g.fault(p, "SelectDrawPile",
			&InvalidSourceError{Source: source, Reason: "discard pile is empty"})
	}
	card, err := g.dealer.Draw(source)
	if err != nil {
		return g.fault(p, "SelectDrawPile", err)
	}
	p.setDrawn(card)
	g.record(p.Name, "draw", map[string]interface{}{"source": source.String()})

	// 2. Exchange or discard the drawn card.
	g.state = StateAwaitExchangeChoice
	idx := p.Strategy.SelectCardToExchange(g.PublicView(), g.PrivateView(p), source)
	switch {
	case idx == -1:
		if source == SourceDiscard {
			// The card cannot go straight back where it came from.
			return g.fault(p, "SelectCardToExchange",
				&InvalidMoveError{Index: idx, HandSize: len(p.Hand), Op: "exchange"})
		}
		p.clearDrawn()
		g.dealer.Discard(card)
		g.enqueueEffect(p, card, true)
		g.record(p.Name, "discard_drawn", map[string]interface{}{"card": card.String()})
	case idx >= 0 && idx < len(p.Hand):
		old := p.Hand[idx]
		p.Hand[idx] = card
		p.clearDrawn()
		p.learnOwnCard(idx, card)
		if source == SourceDiscard {
			// Everyone saw the card come off the discard pile and where it went.
			for _, obs := range g.players {
				if obs != p {
					obs.learnOpponentCard(p.Name, idx, card)
				}
			}
		}
		g.dealer.Discard(old)
		g.enqueueEffect(p, old, false)
		g.record(p.Name, "exchange", map[string]interface{}{
			"index": idx, "discarded": old.String(),
		})
	default:
		return g.fault(p, "SelectCardToExchange",
			&InvalidMoveError{Index: idx, HandSize: len(p.Hand), Op: "exchange"})
	}

	// 3. Reactive discard window for the other players.
	if g.rules.AllowReactiveDiscard {
		g.state = StateAwaitDiscardMatch
		if err := g.offerReactiveDiscards(p); err != nil {
			return err
		}
	}

	// 4. Drain pending effects before the turn completes.
	g.state = StateResolveEffects
	if err := g.resolveEffects(); err != nil {
		return err
	}

	// 5. Call decision.
	if !allowCall {
		return nil
	}
	g.state = StateAwaitCallDecision
	callIdx := p.Strategy.DecideCall(g.PublicView(), g.PrivateView(p))
	if callIdx < 0 {
		return nil
	}
	if callIdx >= len(p.Hand) {
		return g.fault(p, "DecideCall",
			&InvalidMoveError{Index: callIdx, HandSize: len(p.Hand), Op: "call"})
	}
	for i, q := range g.players {
		if q == p {
			g.callerIdx = i
			break
		}
	}
	g.log.WithFields(logrus.Fields{"player": p.Name, "turn": g.turn}).Info("round called")
	g.record(p.Name, "call", map[string]interface{}{"index": callIdx})
	if len(p.Hand) > 1 {
		// With a single card left the call is purely a signal: the index
		// must still be valid, but nothing is discarded.
		if err := g.discardFromHand(p, callIdx); err != nil {
			return err
		}
		if g.rules.AllowReactiveDiscard {
			if err := g.offerReactiveDiscards(p); err != nil {
				return err
			}
		}
		g.state = StateResolveEffects
		if err := g.resolveEffects(); err != nil {
			return err
		}
	}
	return nil
}

// discardFromHand removes the card at idx from p's hand, shrinks every
// knowledge map's slot bookkeeping for that hand, and enqueues the card's
// effect per the configured timing.
func (g *Game) discardFromHand(p *Player, idx int) error {
	if idx < 0 || idx >= len(p.Hand) {
		return g.fault(p, "discard", &InvalidMoveError{Index: idx, HandSize: len(p.Hand), Op: "discard"})
	}
	card := p.Hand[idx]
	p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
	p.dropOwnSlot(idx)
	for _, obs := range g.players {
		if obs != p {
			obs.dropOpponentSlot(p.Name, idx)
		}
	}
	g.dealer.Discard(card)
	g.enqueueEffect(p, card, false)
	g.record(p.Name, "discard_from_hand", map[string]interface{}{
		"index": idx, "card": card.String(),
	})
	return nil
}

// offerReactiveDiscards gives each other player, in turn order, one chance
// to discard a card matching the discard top's rank. A mismatching attempt
// costs a penalty draw; an out-of-range index is a compliance failure.
func (g *Game) offerReactiveDiscards(active *Player) error {
	n := len(g.players)
	for off := 1; off < n; off++ {
		q := g.players[(g.currentIdx+off)%n]
		top, ok := g.dealer.PeekDiscardTop()
		if !ok {
			return nil
		}
		idx := q.Strategy.SelectCardToDiscard(g.PublicView(), g.PrivateView(q))
		if idx == -1 {
			continue
		}
		if idx < 0 || idx >= len(q.Hand) {
			return g.fault(q, "SelectCardToDiscard",
				&InvalidMoveError{Index: idx, HandSize: len(q.Hand), Op: "discard"})
		}
		if q.Hand[idx].Rank != top.Rank {
			g.log.WithFields(logrus.Fields{
				"player": q.Name, "card": q.Hand[idx].String(), "top": top.String(),
			}).Info("reactive discard mismatch")
			if g.rules.PenaltyOnMismatch {
				if err := g.penalize(q); err != nil {
					return g.fault(q, "SelectCardToDiscard", err)
				}
			}
			continue
		}
		if err := g.discardFromHand(q, idx); err != nil {
			return err
		}
	}
	return nil
}

// penalize makes the target draw one card from the draw pile. The card is
// appended face down: nobody, the target included, learns its identity.
func (g *Game) penalize(target *Player) error {
	card, err := g.dealer.Draw(SourceDraw)
	if err != nil {
		return err
	}
	target.Hand = append(target.Hand, card)
	target.appendUnknownOwnSlot()
	for _, obs := range g.players {
		if obs != target {
			obs.appendUnknownOpponentSlot(target.Name)
		}
	}
	g.record(target.Name, "penalty_draw", nil)
	g.log.WithField("player", target.Name).Info("penalty card drawn")
	return nil
}

// scoreRound adds each hand's value to the cumulative scores. A caller who
// is strictly below every opponent scores zero for the round; otherwise
// their total is doubled.
func (g *Game) scoreRound() {
	g.state = StateRoundScoring
	sums := make([]int, len(g.players))
	for i, p := range g.players {
		sums[i] = p.HandValue()
	}
	if g.callerIdx >= 0 {
		callerSum := sums[g.callerIdx]
		lowestOpp := -1
		for i, s := range sums {
			if i == g.callerIdx {
				continue
			}
			if lowestOpp < 0 || s < lowestOpp {
				lowestOpp = s
			}
		}
		if lowestOpp > callerSum {
			sums[g.callerIdx] = 0
		} else {
			sums[g.callerIdx] = callerSum * 2
		}
	}
	for i, p := range g.players {
		g.scores[p.Name] += sums[i]
	}
	g.round++
	g.record("", "round_scored", map[string]interface{}{
		"round": g.round, "scores": g.Scores(),
	})
	g.log.WithFields(logrus.Fields{"round": g.round, "scores": g.Scores()}).Info("round scored")
}

// fault wraps a decision error with the offending player, turn, and method.
func (g *Game) fault(p *Player, method string, err error) error {
	return &StrategyFault{Player: p.Name, Turn: g.turn, Method: method, Err: err}
}

// record publishes an ActionRecord to the configured recorder, if any.
// Recording failures are logged and swallowed; history capture must never
// change a game's outcome.
func (g *Game) record(player, actionType string, payload map[string]interface{}) {
	if g.recorder == nil {
		g.actionIndex++
		return
	}
	rec := ActionRecord{
		GameID:      g.id,
		ActionIndex: g.actionIndex,
		Player:      player,
		ActionType:  actionType,
		Payload:     payload,
		Timestamp:   time.Now().UnixMilli(),
	}
	g.actionIndex++
	if err := g.recorder.Record(context.Background(), rec); err != nil {
		g.log.WithError(err).Warn("failed to record action")
	}
}
