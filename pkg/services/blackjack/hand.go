package blackjack

import (
	"errors"

	"github.com/fadedpez/tucojack/pkg/entities"
)

var (
	ErrInvalidCard = errors.New("invalid card")
)

// Owner identifies which side of the table a hand belongs to
type Owner string

const (
	OwnerPlayer Owner = "player"
	OwnerDealer Owner = "dealer"
)

// Hand represents one side's cards in a round of blackjack

type Hand struct {
	Owner Owner
	Cards []entities.Card
}

// NewHand creates a new empty hand
func NewHand(owner Owner) *Hand {
	return &Hand{
		Owner: owner,
		Cards: make([]entities.Card, 0, 5),
	}
}

// AddCard adds a card to the hand. The cut card is never accepted.
func (h *Hand) AddCard(card entities.Card) error {
	if card.IsCutCard() {
		return ErrInvalidCard
	}
	h.Cards = append(h.Cards, card)
	return nil
}

// Reset empties the hand
func (h *Hand) Reset() {
	h.Cards = h.Cards[:0]
}

// Snapshot returns a copy of the cards safe to hand to callers
func (h *Hand) Snapshot() []entities.Card {
	out := make([]entities.Card, len(h.Cards))
	copy(out, h.Cards)
	return out
}

// Value returns the best possible score for the hand
func (h *Hand) Value() int {
	return HandValue(h.Cards)
}

func (h *Hand) IsBlackjack() bool {
	return IsBlackjack(h.Cards)
}

func (h *Hand) IsBust() bool {
	return IsBust(h.Cards)
}

func (h *Hand) IsSoft() bool {
	return IsSoft(h.Cards)
}
