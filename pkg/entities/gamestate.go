package entities

import "time"

// Phase is the step a blackjack round is currently in
type Phase string

const (
	PhaseAwaitingBet Phase = "AWAITING_BET"
	PhaseDealing     Phase = "DEALING"
	PhasePlayerTurn  Phase = "PLAYER_TURN"
	PhaseDealerTurn  Phase = "DEALER_TURN"
	PhaseSettled     Phase = "SETTLED"
)

// InRound returns true while a wager is at risk
func (p Phase) InRound() bool {
	return p == PhaseDealing || p == PhasePlayerTurn || p == PhaseDealerTurn
}

// Outcome represents the result of a settled round from the player's side
type Outcome string

// Common outcome constants
const (
	OutcomeNone      Outcome = ""
	OutcomeWin       Outcome = "WIN"
	OutcomeLose      Outcome = "LOSE"
	OutcomePush      Outcome = "PUSH"
	OutcomeBlackjack Outcome = "BLACKJACK"
)

// String returns the string representation of the outcome
func (o Outcome) String() string {
	return string(o)
}

// IsWin returns true if this outcome represents a win
func (o Outcome) IsWin() bool {
	return o == OutcomeWin || o == OutcomeBlackjack
}

// RoundResult is the record kept for every settled round
type RoundResult struct {
	ID          string
	SessionID   string
	Outcome     Outcome
	Bet         int64
	Payout      int64
	PlayerCards []Card
	DealerCards []Card
	PlayerScore int
	DealerScore int
	PlayerBust  bool
	DealerBust  bool
	CutCard     bool // settled early because the cut card came out
	CompletedAt time.Time
}

// Net returns what the round won or lost relative to the wager
func (r *RoundResult) Net() int64 {
	return r.Payout - r.Bet
}
