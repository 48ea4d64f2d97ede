package entities

import (
	"errors"
	"math/rand/v2"
)

// ErrEmptyShoe is returned when drawing from a shoe with no cards left
var ErrEmptyShoe = errors.New("shoe is empty")

// DeckSize is the number of cards in one standard deck
const DeckSize = 52

// NewDeck creates a new deck of 52 cards, one of each rank and suit
func NewDeck() []Card {
	cards := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			cards = append(cards, NewCard(suit, rank))
		}
	}
	return cards
}

// DrawStatus tells the caller what kind of card came off the shoe
type DrawStatus int

const (
	// DrawCard is a normal playable card
	DrawCard DrawStatus = iota
	// DrawCutCard means the cut card was reached for the first time in this shoe
	DrawCutCard
)

// Shoe holds the cards dealt from during play, possibly several decks plus the cut card
type Shoe struct {
	Cards     []Card
	DeckCount int

	// latched the first time the cut card is drawn, cleared only by building a new shoe
	cutCardSeen bool
}

// NewShoe builds deckCount decks, adds the cut card if requested and shuffles the result
func NewShoe(deckCount int, includeCutCard bool, rng *rand.Rand) *Shoe {
	size := deckCount * DeckSize
	if includeCutCard {
		size++
	}

	cards := make([]Card, 0, size)
	for i := 0; i < deckCount; i++ {
		cards = append(cards, NewDeck()...)
	}
	if includeCutCard {
		cards = append(cards, CutCard())
	}

	shoe := &Shoe{Cards: cards, DeckCount: deckCount}
	shoe.Shuffle(rng)
	return shoe
}

// NewShoeFromCards wraps an already ordered sequence; the first card is drawn first
func NewShoeFromCards(cards []Card) *Shoe {
	ordered := make([]Card, len(cards))
	copy(ordered, cards)
	return &Shoe{Cards: ordered}
}

// Shuffle applies a Fisher-Yates permutation to the remaining cards
func (s *Shoe) Shuffle(rng *rand.Rand) {
	for i := len(s.Cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		s.Cards[i], s.Cards[j] = s.Cards[j], s.Cards[i]
	}
}

// Draw removes and returns the front card of the shoe.
// The cut card is returned with DrawCutCard the first time it is reached; it is
// never meant to be placed in a hand.
func (s *Shoe) Draw() (Card, DrawStatus, error) {
	for len(s.Cards) > 0 {
		card := s.Cards[0]
		s.Cards = s.Cards[1:]

		if !card.IsCutCard() {
			return card, DrawCard, nil
		}
		if !s.cutCardSeen {
			s.cutCardSeen = true
			return card, DrawCutCard, nil
		}
	}
	return Card{}, DrawCard, ErrEmptyShoe
}

// Remaining returns the number of cards left in the shoe
func (s *Shoe) Remaining() int {
	return len(s.Cards)
}

// CutCardSeen reports whether the cut card has already been drawn from this shoe
func (s *Shoe) CutCardSeen() bool {
	return s.cutCardSeen
}

// NeedsReplenish reports whether a fresh shoe should be built before the next deal
func (s *Shoe) NeedsReplenish(threshold int) bool {
	return len(s.Cards) == 0 || len(s.Cards) < threshold || s.cutCardSeen
}
