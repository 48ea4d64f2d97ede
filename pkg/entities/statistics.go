package entities

import "time"

// SessionStatistics represents aggregated results for one table session
type SessionStatistics struct {
	SessionID    string
	RoundsPlayed int
	Wins         int
	Losses       int
	Pushes       int
	Blackjacks   int
	Busts        int
	CutCards     int
	TotalBet     int64
	TotalPayout  int64
	LastUpdated  time.Time
}

// Add folds one settled round into the totals
func (s *SessionStatistics) Add(r *RoundResult) {
	s.RoundsPlayed++
	switch r.Outcome {
	case OutcomeWin:
		s.Wins++
	case OutcomeBlackjack:
		s.Wins++
		s.Blackjacks++
	case OutcomePush:
		s.Pushes++
	case OutcomeLose:
		s.Losses++
	}
	if r.PlayerBust {
		s.Busts++
	}
	if r.CutCard {
		s.CutCards++
	}
	s.TotalBet += r.Bet
	s.TotalPayout += r.Payout
	if r.CompletedAt.After(s.LastUpdated) {
		s.LastUpdated = r.CompletedAt
	}
}

// NetProfit calculates the session's net profit
func (s *SessionStatistics) NetProfit() int64 {
	return s.TotalPayout - s.TotalBet
}

// WinRate calculates the win rate as a percentage
func (s *SessionStatistics) WinRate() float64 {
	if s.RoundsPlayed == 0 {
		return 0.0
	}
	return float64(s.Wins) / float64(s.RoundsPlayed) * 100.0
}
