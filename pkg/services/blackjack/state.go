package blackjack

import "github.com/fadedpez/tucojack/pkg/entities"

// Result messages shown to the player when a round settles
const (
	MessagePlayerBlackjack = "Blackjack! Player Wins!"
	MessageDealerBlackjack = "Dealer has Blackjack. Dealer Wins."
	MessageBothBlackjack   = "Both have Blackjack! Push."
	MessagePlayerBust      = "Player Busts! Dealer Wins."
	MessageDealerBust      = "Dealer Busts! Player Wins!"
	MessagePush            = "Push! It's a tie."
	MessageDealerWins      = "Dealer Wins."
	MessagePlayerWins      = "Player Wins!"
	MessageCutCard         = "Cut card drawn! Round is a push."
	MessageEmptyShoe       = "The shoe ran out! Round is a push."
	MessageGameOver        = "Out of money! Game over."
)

// State is an immutable snapshot of the table handed to the presentation layer
type State struct {
	RoundID string
	Phase   entities.Phase

	PlayerHand []entities.Card
	DealerHand []entities.Card

	// DealerHoleCardHidden asks the renderer to mask the first dealer card
	DealerHoleCardHidden bool

	PlayerValue int
	PlayerSoft  bool
	// DealerValue only counts visible cards while the hole card is hidden
	DealerValue int

	Bankroll   int64
	CurrentBet int64

	Outcome       entities.Outcome
	ResultMessage string

	ShoeRemaining int
	GameOver      bool
}

// HasResult reports whether a result message should be shown
func (s State) HasResult() bool {
	return s.ResultMessage != ""
}

// CanAdjustBet reports whether bet changes are accepted
func (s State) CanAdjustBet() bool {
	return s.Phase == entities.PhaseAwaitingBet
}
