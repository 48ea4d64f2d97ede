package blackjack

import (
	"math/rand/v2"
	"strconv"

	"github.com/fadedpez/tucojack/pkg/entities"
)

const (
	StandardDecks      = 4  // Standard number of decks in the shoe
	ReshuffleThreshold = 20 // Build a new shoe before the deal when fewer cards remain
	DealerStandsOn     = 17 // Dealer draws below this total and stands on every 17
	BlackjackTotal     = 21
)

// GetCardValue returns the hard value of a card with aces counted as 11.
// The cut card has no value.
func GetCardValue(card entities.Card) int {
	switch card.Rank {
	case entities.Ace:
		return 11
	case entities.Jack, entities.Queen, entities.King:
		return 10
	case entities.Stop:
		return 0
	default:
		val, _ := strconv.Atoi(string(card.Rank))
		return val
	}
}

func IsAce(card entities.Card) bool {
	return card.Rank == entities.Ace
}

// IsTenValue reports whether the card counts 10 (10, J, Q, K)
func IsTenValue(card entities.Card) bool {
	return !IsAce(card) && GetCardValue(card) == 10
}

// handTotal returns the best total and how many aces are still counted as 11
func handTotal(cards []entities.Card) (int, int) {
	total := 0
	softAces := 0

	for _, card := range cards {
		if card.IsCutCard() {
			continue
		}
		if IsAce(card) {
			softAces++
		}
		total += GetCardValue(card)
	}

	for total > BlackjackTotal && softAces > 0 {
		total -= 10
		softAces--
	}

	return total, softAces
}

// HandValue returns the blackjack total of a hand. It may exceed 21.
func HandValue(cards []entities.Card) int {
	total, _ := handTotal(cards)
	return total
}

// IsSoft reports whether an ace is still counted as 11 in the total
func IsSoft(cards []entities.Card) bool {
	_, softAces := handTotal(cards)
	return softAces > 0
}

// IsBlackjack is true only for a two-card hand of one ace and one ten-value card
func IsBlackjack(cards []entities.Card) bool {
	if len(cards) != 2 {
		return false
	}
	aces, tens := 0, 0
	for _, card := range cards {
		switch {
		case IsAce(card):
			aces++
		case IsTenValue(card):
			tens++
		}
	}
	return aces == 1 && tens == 1
}

// IsBust checks if a hand exceeds 21
func IsBust(cards []entities.Card) bool {
	return HandValue(cards) > BlackjackTotal
}

// CompareHands settles two standing hands from the player's side.
// Blackjacks and player busts are decided before the dealer plays and are
// not handled here.
func CompareHands(player, dealer []entities.Card) entities.Outcome {
	if IsBust(dealer) {
		return entities.OutcomeWin
	}

	playerScore := HandValue(player)
	dealerScore := HandValue(dealer)
	switch {
	case playerScore > dealerScore:
		return entities.OutcomeWin
	case playerScore < dealerScore:
		return entities.OutcomeLose
	default:
		return entities.OutcomePush
	}
}

// NewBlackjackShoe creates a new shuffled shoe with the cut card included
func NewBlackjackShoe(decks int, rng *rand.Rand) *entities.Shoe {
	return entities.NewShoe(decks, true, rng)
}

// ShouldReshuffle checks if the shoe must be rebuilt before the next deal
func ShouldReshuffle(shoe *entities.Shoe, threshold int) bool {
	return shoe == nil || shoe.NeedsReplenish(threshold)
}
