package blackjack

import (
	"fmt"
	"strings"

	"github.com/fadedpez/tucojack/pkg/entities"
	bjService "github.com/fadedpez/tucojack/pkg/services/blackjack"
)

// AvailableActions returns the intents that do something in the current phase
func AvailableActions(state bjService.State) []Action {
	if state.CanAdjustBet() {
		if state.GameOver {
			return nil
		}
		actions := []Action{ActionIncreaseBet, ActionDecreaseBet}
		if state.CurrentBet > 0 {
			actions = append(actions, ActionDeal)
		}
		return actions
	}

	switch state.Phase {
	case entities.PhasePlayerTurn:
		return []Action{ActionHit, ActionStand}
	case entities.PhaseSettled:
		return []Action{ActionNewRound}
	default:
		return nil
	}
}

// FormatState returns a plain text rendering of the table
func FormatState(state bjService.State) string {
	var sb strings.Builder

	sb.WriteString("Dealer's Hand:\n")
	switch {
	case len(state.DealerHand) == 0:
		sb.WriteString("  (no cards)\n")
	case state.DealerHoleCardHidden:
		sb.WriteString(fmt.Sprintf("  [?], %s (Showing: %d)\n", formatHand(state.DealerHand[1:]), state.DealerValue))
	default:
		sb.WriteString(fmt.Sprintf("  %s (Score: %d)\n", formatHand(state.DealerHand), state.DealerValue))
	}

	sb.WriteString("Player's Hand:\n")
	if len(state.PlayerHand) == 0 {
		sb.WriteString("  (no cards)\n")
	} else {
		soft := ""
		if state.PlayerSoft {
			soft = " soft"
		}
		sb.WriteString(fmt.Sprintf("  %s (Score: %d%s)\n", formatHand(state.PlayerHand), state.PlayerValue, soft))
	}

	sb.WriteString(fmt.Sprintf("Bankroll: $%d  Bet: $%d\n", state.Bankroll, state.CurrentBet))
	if state.HasResult() {
		sb.WriteString(state.ResultMessage + "\n")
	}
	if state.GameOver {
		sb.WriteString(bjService.MessageGameOver + "\n")
	}

	return sb.String()
}

func formatHand(hand []entities.Card) string {
	cards := make([]string, len(hand))
	for i, card := range hand {
		cards[i] = card.Short()
	}
	return strings.Join(cards, ", ")
}
