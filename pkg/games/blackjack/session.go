package blackjack

import (
	"context"
	"fmt"
	"sync"

	"github.com/fadedpez/tucojack/internal/logging"
	"github.com/fadedpez/tucojack/internal/types"
	"github.com/fadedpez/tucojack/pkg/entities"
	"github.com/fadedpez/tucojack/pkg/repositories/game"
	bjService "github.com/fadedpez/tucojack/pkg/services/blackjack"
	"github.com/fadedpez/tucojack/pkg/services/statistics"
	"github.com/fadedpez/tucojack/pkg/services/wallet"
)

// Action is a player intent coming from the presentation layer
type Action string

const (
	ActionPlaceBet    Action = "place_bet"
	ActionIncreaseBet Action = "increase_bet"
	ActionDecreaseBet Action = "decrease_bet"
	ActionDeal        Action = "deal"
	ActionHit         Action = "hit"
	ActionStand       Action = "stand"
	ActionNewRound    Action = "new_round"
)

// Intent is one action plus its argument. Amount is only read by ActionPlaceBet.
type Intent struct {
	Action Action
	Amount int64
}

// Session is one player's sitting at the table. It owns the bankroll and the
// round state machine and applies intents one at a time.
type Session struct {
	ID string

	game     *bjService.Game
	bankroll *wallet.Bankroll
	stats    *statistics.Service
	history  game.Repository
	log      *logging.Logger

	mu sync.Mutex
}

// Dispatch applies a single intent and returns the resulting table state.
// Intents that are not legal in the current phase are ignored.
func (s *Session) Dispatch(ctx context.Context, intent Intent) (bjService.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.apply(ctx, intent)
	if types.IsGameError(err, types.ErrIllegalTransition) {
		s.log.Debug("Ignored %s: %v", intent.Action, err)
		return state, nil
	}
	if err != nil {
		s.log.Debug("Rejected %s: %v", intent.Action, err)
	}
	return state, err
}

func (s *Session) apply(ctx context.Context, intent Intent) (bjService.State, error) {
	switch intent.Action {
	case ActionPlaceBet:
		return s.game.PlaceBet(intent.Amount)
	case ActionIncreaseBet:
		return s.game.IncreaseBet()
	case ActionDecreaseBet:
		return s.game.DecreaseBet()
	case ActionDeal:
		return s.game.Deal(ctx)
	case ActionHit:
		return s.game.Hit(ctx)
	case ActionStand:
		return s.game.Stand(ctx)
	case ActionNewRound:
		return s.game.NewRound()
	default:
		return s.game.State(), types.NewGameError(types.ErrInvalidAction, fmt.Sprintf("Unknown action %q", intent.Action))
	}
}

// State returns the current table snapshot
func (s *Session) State() bjService.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.State()
}

// BetStep returns the amount one increase or decrease intent moves the bet
func (s *Session) BetStep() int64 {
	return s.bankroll.Step()
}

// Summary returns statistics for the rounds settled so far
func (s *Session) Summary(ctx context.Context) (*statistics.SessionSummary, error) {
	return s.stats.GetSessionSummary(ctx, s.ID, statistics.DefaultRecentRounds)
}

// Rounds returns the latest settled rounds of this session, oldest first
func (s *Session) Rounds(ctx context.Context, limit int) ([]*entities.RoundResult, error) {
	return s.history.GetSessionResults(ctx, s.ID, limit)
}

// Transactions returns the latest bankroll ledger entries, oldest first
func (s *Session) Transactions(ctx context.Context, limit int) ([]*entities.Transaction, error) {
	return s.bankroll.Transactions(ctx, limit)
}

// Close ends the session. Shared repositories are left open for the factory to close.
func (s *Session) Close() {
	state := s.State()
	s.log.Info("Session %s closed with bankroll $%d", s.ID, state.Bankroll)
}
