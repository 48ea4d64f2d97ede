package blackjack

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/coder/quartz"
	"github.com/fadedpez/tucojack/internal/logging"
	"github.com/fadedpez/tucojack/internal/randutil"
	"github.com/fadedpez/tucojack/internal/types"
	"github.com/fadedpez/tucojack/pkg/entities"
	"github.com/fadedpez/tucojack/pkg/repositories/game"
	"github.com/google/uuid"
)

// Bankroll defines the wallet operations the round needs
type Bankroll interface {
	Balance() int64
	IsBroke() bool
	Bet() int64
	SetBet(amount int64) error
	IncreaseBet() int64
	DecreaseBet() int64
	ClampBet()
	Debit(ctx context.Context, amount int64, roundID string) error
	ApplyPayout(ctx context.Context, outcome entities.Outcome, bet int64, roundID string) (int64, error)
}

// Config holds the table rules and collaborators of a Game
type Config struct {
	DeckCount          int
	ReplenishThreshold int
	Rand               *rand.Rand
	Clock              quartz.Clock
	Logger             *logging.Logger
}

// DefaultConfig returns the standard four-deck table
func DefaultConfig() Config {
	return Config{
		DeckCount:          StandardDecks,
		ReplenishThreshold: ReshuffleThreshold,
	}
}

// Game is the round state machine for one player against the dealer.
// It owns the shoe and both hands; the bankroll belongs to the session and is
// only touched through debit and payout. Every action returns a State snapshot.
type Game struct {
	SessionID string

	bankroll Bankroll
	repo     game.Repository
	rng      *rand.Rand
	clock    quartz.Clock
	log      *logging.Logger

	deckCount int
	threshold int
	shoe      *entities.Shoe

	phase   entities.Phase
	roundID string
	player  *Hand
	dealer  *Hand
	bet     int64 // wager at risk in the current round
	outcome entities.Outcome
	message string

	cutCard          bool
	payoutsProcessed bool
}

// NewGame creates a game waiting for a bet, with a freshly built shoe
func NewGame(sessionID string, bankroll Bankroll, repo game.Repository, cfg Config) *Game {
	if cfg.DeckCount <= 0 {
		cfg.DeckCount = StandardDecks
	}
	if cfg.ReplenishThreshold < 0 {
		cfg.ReplenishThreshold = 0
	}
	if cfg.Rand == nil {
		cfg.Rand = randutil.NewFromClock()
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default
	}

	g := &Game{
		SessionID: sessionID,
		bankroll:  bankroll,
		repo:      repo,
		rng:       cfg.Rand,
		clock:     cfg.Clock,
		log:       cfg.Logger.WithPrefix("[BLACKJACK]"),
		deckCount: cfg.DeckCount,
		threshold: cfg.ReplenishThreshold,
		phase:     entities.PhaseAwaitingBet,
		player:    NewHand(OwnerPlayer),
		dealer:    NewHand(OwnerDealer),
	}
	g.rebuildShoe()
	return g
}

// Phase returns the current phase
func (g *Game) Phase() entities.Phase {
	return g.phase
}

// State returns a snapshot of the table
func (g *Game) State() State {
	hidden := g.phase == entities.PhasePlayerTurn && len(g.dealer.Cards) > 0

	dealerValue := g.dealer.Value()
	if hidden {
		dealerValue = HandValue(g.dealer.Cards[1:])
	}

	currentBet := g.bankroll.Bet()
	if g.phase != entities.PhaseAwaitingBet {
		currentBet = g.bet
	}

	remaining := 0
	if g.shoe != nil {
		remaining = g.shoe.Remaining()
	}

	return State{
		RoundID:              g.roundID,
		Phase:                g.phase,
		PlayerHand:           g.player.Snapshot(),
		DealerHand:           g.dealer.Snapshot(),
		DealerHoleCardHidden: hidden,
		PlayerValue:          g.player.Value(),
		PlayerSoft:           g.player.IsSoft(),
		DealerValue:          dealerValue,
		Bankroll:             g.bankroll.Balance(),
		CurrentBet:           currentBet,
		Outcome:              g.outcome,
		ResultMessage:        g.message,
		ShoeRemaining:        remaining,
		GameOver:             g.bankroll.IsBroke() && !g.phase.InRound(),
	}
}

// PlaceBet stages an exact wager for the next deal
func (g *Game) PlaceBet(amount int64) (State, error) {
	if g.phase != entities.PhaseAwaitingBet {
		return g.illegal("place a bet")
	}
	if err := g.bankroll.SetBet(amount); err != nil {
		return g.State(), err
	}
	return g.State(), nil
}

// IncreaseBet raises the staged wager by one step
func (g *Game) IncreaseBet() (State, error) {
	if g.phase != entities.PhaseAwaitingBet {
		return g.illegal("change the bet")
	}
	g.bankroll.IncreaseBet()
	return g.State(), nil
}

// DecreaseBet lowers the staged wager by one step
func (g *Game) DecreaseBet() (State, error) {
	if g.phase != entities.PhaseAwaitingBet {
		return g.illegal("change the bet")
	}
	g.bankroll.DecreaseBet()
	return g.State(), nil
}

// Deal debits the staged wager and deals player, dealer, player, dealer.
// A blackjack on either side settles the round immediately.
func (g *Game) Deal(ctx context.Context) (State, error) {
	if g.phase != entities.PhaseAwaitingBet {
		return g.illegal("deal")
	}
	if g.bankroll.IsBroke() {
		return g.State(), types.NewGameError(types.ErrBankrollEmpty, MessageGameOver)
	}

	bet := g.bankroll.Bet()
	if bet <= 0 {
		return g.State(), types.NewGameError(types.ErrInvalidBet, "Place a bet before dealing")
	}
	if bet > g.bankroll.Balance() {
		return g.State(), types.NewGameError(types.ErrInvalidBet,
			fmt.Sprintf("Bet of $%d exceeds bankroll of $%d", bet, g.bankroll.Balance()))
	}

	if ShouldReshuffle(g.shoe, g.threshold) {
		g.rebuildShoe()
	}

	roundID := uuid.New().String()
	if err := g.bankroll.Debit(ctx, bet, roundID); err != nil {
		return g.State(), err
	}
	g.startRound(roundID, bet)

	for _, hand := range []*Hand{g.player, g.dealer, g.player, g.dealer} {
		if !g.drawInto(ctx, hand) {
			// the round was pushed; nothing from the aborted deal stays on the table
			g.player.Reset()
			g.dealer.Reset()
			g.phase = entities.PhaseAwaitingBet
			return g.State(), nil
		}
	}

	g.phase = entities.PhasePlayerTurn
	g.log.Debug("Round %s dealt: player %v (%d), dealer up %s",
		g.roundID, g.player.Cards, g.player.Value(), g.dealer.Cards[1].Short())

	playerBJ := g.player.IsBlackjack()
	dealerBJ := g.dealer.IsBlackjack()
	switch {
	case playerBJ && dealerBJ:
		g.settle(ctx, entities.OutcomePush, MessageBothBlackjack)
	case playerBJ:
		g.settle(ctx, entities.OutcomeBlackjack, MessagePlayerBlackjack)
	case dealerBJ:
		g.settle(ctx, entities.OutcomeLose, MessageDealerBlackjack)
	}

	return g.State(), nil
}

// Hit draws one card for the player
func (g *Game) Hit(ctx context.Context) (State, error) {
	if g.phase != entities.PhasePlayerTurn {
		return g.illegal("hit")
	}

	if !g.drawInto(ctx, g.player) {
		return g.State(), nil
	}

	if g.player.IsBust() {
		g.settle(ctx, entities.OutcomeLose, MessagePlayerBust)
	}
	return g.State(), nil
}

// Stand ends the player's turn and plays the dealer's hand to completion
func (g *Game) Stand(ctx context.Context) (State, error) {
	if g.phase != entities.PhasePlayerTurn {
		return g.illegal("stand")
	}

	g.phase = entities.PhaseDealerTurn

	// Dealer must hit on 16 and below, stand on 17 and above
	for g.dealer.Value() < DealerStandsOn {
		if !g.drawInto(ctx, g.dealer) {
			return g.State(), nil
		}
	}

	outcome := CompareHands(g.player.Cards, g.dealer.Cards)
	message := MessagePlayerWins
	switch {
	case g.dealer.IsBust():
		message = MessageDealerBust
	case outcome == entities.OutcomePush:
		message = MessagePush
	case outcome == entities.OutcomeLose:
		message = MessageDealerWins
	}

	g.settle(ctx, outcome, message)
	return g.State(), nil
}

// NewRound clears the table for the next bet. Bankroll, staged bet and shoe carry over.
func (g *Game) NewRound() (State, error) {
	if g.phase != entities.PhaseSettled && g.phase != entities.PhaseAwaitingBet {
		return g.illegal("start a new round")
	}

	g.player.Reset()
	g.dealer.Reset()
	g.roundID = ""
	g.bet = 0
	g.outcome = entities.OutcomeNone
	g.message = ""
	g.cutCard = false
	g.phase = entities.PhaseAwaitingBet
	g.bankroll.ClampBet()

	return g.State(), nil
}

func (g *Game) startRound(roundID string, bet int64) {
	g.player.Reset()
	g.dealer.Reset()
	g.roundID = roundID
	g.bet = bet
	g.outcome = entities.OutcomeNone
	g.message = ""
	g.cutCard = false
	g.payoutsProcessed = false
	g.phase = entities.PhaseDealing
}

// drawInto deals the next card into hand. When the shoe yields the cut card or
// runs dry the round is settled as a push and false is returned.
func (g *Game) drawInto(ctx context.Context, hand *Hand) bool {
	card, status, err := g.shoe.Draw()
	if err != nil {
		g.log.LogError(types.WrapError(types.ErrEmptyShoe, "shoe exhausted mid-round", err))
		g.settle(ctx, entities.OutcomePush, MessageEmptyShoe)
		return false
	}

	if status == entities.DrawCutCard {
		g.log.Info("Cut card drawn in round %s with %d cards left", g.roundID, g.shoe.Remaining())
		g.cutCard = true
		g.settle(ctx, entities.OutcomePush, MessageCutCard)
		return false
	}

	if err := hand.AddCard(card); err != nil {
		// Draw never hands out the cut card with DrawCard
		g.log.LogError(types.WrapError(types.ErrInternalError, "rejected card "+card.String(), err))
		g.settle(ctx, entities.OutcomePush, MessageCutCard)
		return false
	}
	return true
}

// settle fixes the outcome and pays out exactly once per round
func (g *Game) settle(ctx context.Context, outcome entities.Outcome, message string) {
	g.phase = entities.PhaseSettled
	g.outcome = outcome
	g.message = message

	if g.payoutsProcessed {
		g.log.Warn("Payout already processed for round %s, skipping", g.roundID)
		return
	}
	g.payoutsProcessed = true

	payout, err := g.bankroll.ApplyPayout(ctx, outcome, g.bet, g.roundID)
	if err != nil {
		g.log.LogError(err)
	}
	g.bankroll.ClampBet()

	g.log.Info("Round %s settled: %s (%d vs %d), bet $%d, payout $%d, bankroll $%d",
		g.roundID, outcome, g.player.Value(), g.dealer.Value(), g.bet, payout, g.bankroll.Balance())

	g.recordResult(ctx, payout)
}

func (g *Game) recordResult(ctx context.Context, payout int64) {
	if g.repo == nil {
		return
	}

	result := &entities.RoundResult{
		ID:          g.roundID,
		SessionID:   g.SessionID,
		Outcome:     g.outcome,
		Bet:         g.bet,
		Payout:      payout,
		PlayerCards: g.player.Snapshot(),
		DealerCards: g.dealer.Snapshot(),
		PlayerScore: g.player.Value(),
		DealerScore: g.dealer.Value(),
		PlayerBust:  g.player.IsBust(),
		DealerBust:  g.dealer.IsBust(),
		CutCard:     g.cutCard,
		CompletedAt: g.clock.Now(),
	}

	if err := g.repo.SaveRoundResult(ctx, result); err != nil {
		g.log.LogError(types.WrapError(types.ErrDatabaseError, "failed to save round result", err))
	}
}

func (g *Game) rebuildShoe() {
	g.shoe = NewBlackjackShoe(g.deckCount, g.rng)
	g.log.Info("Built a new %d-deck shoe with %d cards", g.deckCount, g.shoe.Remaining())
}

func (g *Game) illegal(action string) (State, error) {
	g.log.Debug("Ignoring %s during %s", action, g.phase)
	return g.State(), types.NewGameError(types.ErrIllegalTransition,
		fmt.Sprintf("Cannot %s while %s", action, g.phase))
}
