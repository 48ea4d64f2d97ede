package blackjack

import (
	"context"

	"github.com/fadedpez/tucojack/pkg/entities"
	bjService "github.com/fadedpez/tucojack/pkg/services/blackjack"
)

// Strategy picks the player's move during PlayerTurn. Anything other than
// ActionHit is played as a stand.
type Strategy interface {
	Decide(state bjService.State) Action
}

// MimicDealer plays the player's hand by the house rule: hit below 17
type MimicDealer struct{}

func (MimicDealer) Decide(state bjService.State) Action {
	if state.PlayerValue < bjService.DealerStandsOn {
		return ActionHit
	}
	return ActionStand
}

// BasicStrategy is the hard/soft total part of basic strategy without
// doubling or splitting. DealerValue is the visible up card while the hole
// card is hidden.
type BasicStrategy struct{}

func (BasicStrategy) Decide(state bjService.State) Action {
	up := state.DealerValue
	total := state.PlayerValue

	if state.PlayerSoft {
		switch {
		case total >= 19:
			return ActionStand
		case total == 18 && up <= 8:
			return ActionStand
		default:
			return ActionHit
		}
	}

	switch {
	case total >= 17:
		return ActionStand
	case total >= 13 && up <= 6:
		return ActionStand
	case total == 12 && up >= 4 && up <= 6:
		return ActionStand
	default:
		return ActionHit
	}
}

// Strategies lists the built-in strategies by name
var Strategies = map[string]Strategy{
	"dealer": MimicDealer{},
	"basic":  BasicStrategy{},
}

// Play runs up to rounds complete rounds at a flat bet, capped by the bankroll.
// It stops early when the bankroll is empty or ctx is done and returns the
// number of rounds played.
func Play(ctx context.Context, s *Session, strategy Strategy, rounds int, bet int64) (int, error) {
	return PlayObserved(ctx, s, strategy, rounds, bet, nil)
}

// PlayObserved is Play with observe called on every settled round before the
// table is cleared. A nil observe is ignored.
func PlayObserved(ctx context.Context, s *Session, strategy Strategy, rounds int, bet int64, observe func(bjService.State)) (int, error) {
	played := 0
	for played < rounds {
		if err := ctx.Err(); err != nil {
			return played, err
		}

		state := s.State()
		if state.GameOver {
			break
		}

		wager := bet
		if wager > state.Bankroll {
			wager = state.Bankroll
		}
		if _, err := s.Dispatch(ctx, Intent{Action: ActionPlaceBet, Amount: wager}); err != nil {
			return played, err
		}

		state, err := s.Dispatch(ctx, Intent{Action: ActionDeal})
		if err != nil {
			return played, err
		}

		for state.Phase == entities.PhasePlayerTurn {
			action := ActionStand
			if strategy.Decide(state) == ActionHit {
				action = ActionHit
			}
			if state, err = s.Dispatch(ctx, Intent{Action: action}); err != nil {
				return played, err
			}
		}

		if observe != nil && state.HasResult() {
			observe(state)
		}

		if _, err := s.Dispatch(ctx, Intent{Action: ActionNewRound}); err != nil {
			return played, err
		}
		played++
	}
	return played, nil
}
