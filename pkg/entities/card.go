package entities

import "fmt"

// Suit represents a card suit

type Suit string

const (
	Hearts   Suit = "HEARTS"
	Diamonds Suit = "DIAMONDS"
	Clubs    Suit = "CLUBS"
	Spades   Suit = "SPADES"

	// NoSuit only appears on the cut card
	NoSuit Suit = "NONE"
)

// Symbol returns the pip used when a card is printed compactly
func (s Suit) Symbol() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	default:
		return ""
	}
}

// IsRed reports whether the suit is printed in red
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank

type Rank string

const (
	Ace   Rank = "A"
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"

	// Stop marks the cut card placed in the shoe
	Stop Rank = "STOP"
)

// Suits and Ranks list the playable values in deck order
var (
	Suits = []Suit{Hearts, Diamonds, Clubs, Spades}
	Ranks = []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}
)

// Card represents a playing card

type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a new card

func NewCard(suit Suit, rank Rank) Card {
	return Card{
		Suit: suit,
		Rank: rank,
	}
}

// CutCard returns the sentinel that marks shoe depletion
func CutCard() Card {
	return Card{Suit: NoSuit, Rank: Stop}
}

// IsCutCard reports whether the card is the shoe sentinel rather than a playable card
func (c Card) IsCutCard() bool {
	return c.Rank == Stop
}

// String returns the string representation of the card

func (c Card) String() string {
	if c.IsCutCard() {
		return "cut card"
	}
	return fmt.Sprintf("%s of %s", c.Rank, c.Suit)
}

// Short returns the compact form, e.g. "A♠"
func (c Card) Short() string {
	if c.IsCutCard() {
		return string(Stop)
	}
	return string(c.Rank) + c.Suit.Symbol()
}
