package statistics

import (
	"context"
	"sort"
	"time"

	"github.com/coder/quartz"
	"github.com/fadedpez/tucojack/pkg/entities"
	"github.com/fadedpez/tucojack/pkg/repositories/game"
)

// DefaultRecentRounds is how many settled rounds a summary carries
const DefaultRecentRounds = 5

// Service provides methods for retrieving and processing session statistics
type Service struct {
	repository game.Repository
	clock      quartz.Clock
}

// NewService creates a new statistics service. A nil clock uses the wall clock.
func NewService(repository game.Repository, clock quartz.Clock) *Service {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Service{
		repository: repository,
		clock:      clock,
	}
}

// SessionSummary is the statistics view of one session
type SessionSummary struct {
	*entities.SessionStatistics
	WinRate       float64                 `json:"win_rate"`
	ProfitRate    float64                 `json:"profit_rate"`
	CurrentStreak int                     `json:"current_streak"` // positive for wins, negative for losses
	LongestStreak int                     `json:"longest_streak"`
	Recent        []*entities.RoundResult `json:"recent"`
}

// GetSessionSummary aggregates a session and attaches its most recent rounds
func (s *Service) GetSessionSummary(ctx context.Context, sessionID string, recent int) (*SessionSummary, error) {
	if recent < 1 {
		recent = DefaultRecentRounds
	}

	stats, err := s.repository.GetSessionStatistics(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// Streaks need the whole session in order
	results, err := s.repository.GetSessionResults(ctx, sessionID, 0)
	if err != nil {
		return nil, err
	}

	current, longest := streaks(results)

	tail := results
	if len(tail) > recent {
		tail = tail[len(tail)-recent:]
	}

	return &SessionSummary{
		SessionStatistics: stats,
		WinRate:           stats.WinRate(),
		ProfitRate:        profitRate(stats),
		CurrentStreak:     current,
		LongestStreak:     longest,
		Recent:            tail,
	}, nil
}

// SessionRank represents a session's statistics with ranking information
type SessionRank struct {
	*entities.SessionStatistics
	Rank         int     `json:"rank"`
	WinRate      float64 `json:"win_rate"`
	ProfitRate   float64 `json:"profit_rate"`
	IsTopWinner  bool    `json:"is_top_winner"`
	IsMostPlayed bool    `json:"is_most_played"`
}

// Leaderboard represents a paginated ranking of sessions by net profit
type Leaderboard struct {
	Sessions        []*SessionRank `json:"sessions"`
	TotalSessions   int            `json:"total_sessions"`
	CurrentPage     int            `json:"current_page"`
	TotalPages      int            `json:"total_pages"`
	SessionsPerPage int            `json:"sessions_per_page"`
	LastUpdated     time.Time      `json:"last_updated"`
}

// GetLeaderboard ranks the given sessions and returns one page of them
func (s *Service) GetLeaderboard(ctx context.Context, sessionIDs []string, page, sessionsPerPage int) (*Leaderboard, error) {
	// Default values
	if page < 1 {
		page = 1
	}
	if sessionsPerPage < 1 {
		sessionsPerPage = 10
	}

	ranks := make([]*SessionRank, 0, len(sessionIDs))
	for _, id := range sessionIDs {
		stats, err := s.repository.GetSessionStatistics(ctx, id)
		if err != nil {
			return nil, err
		}

		// Skip sessions with no rounds
		if stats.RoundsPlayed == 0 {
			continue
		}

		ranks = append(ranks, &SessionRank{
			SessionStatistics: stats,
			WinRate:           stats.WinRate(),
			ProfitRate:        profitRate(stats),
		})
	}

	// Sort by net profit (descending), ties broken by session ID for stable output
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].NetProfit() != ranks[j].NetProfit() {
			return ranks[i].NetProfit() > ranks[j].NetProfit()
		}
		return ranks[i].SessionID < ranks[j].SessionID
	})

	if len(ranks) > 0 {
		ranks[0].IsTopWinner = true

		mostPlayed := 0
		for i := 1; i < len(ranks); i++ {
			if ranks[i].RoundsPlayed > ranks[mostPlayed].RoundsPlayed {
				mostPlayed = i
			}
		}
		ranks[mostPlayed].IsMostPlayed = true
	}

	for i := range ranks {
		ranks[i].Rank = i + 1
	}

	// Calculate pagination
	total := len(ranks)
	totalPages := (total + sessionsPerPage - 1) / sessionsPerPage
	if page > totalPages && totalPages > 0 {
		page = totalPages
	}

	start := (page - 1) * sessionsPerPage
	end := start + sessionsPerPage
	if end > total {
		end = total
	}

	pageSessions := []*SessionRank{}
	if start < total {
		pageSessions = ranks[start:end]
	}

	return &Leaderboard{
		Sessions:        pageSessions,
		TotalSessions:   total,
		CurrentPage:     page,
		TotalPages:      totalPages,
		SessionsPerPage: sessionsPerPage,
		LastUpdated:     s.clock.Now(),
	}, nil
}

// Totals folds several sessions into one set of statistics
func (s *Service) Totals(ctx context.Context, sessionIDs []string) (*entities.SessionStatistics, error) {
	totals := &entities.SessionStatistics{SessionID: "all"}
	for _, id := range sessionIDs {
		stats, err := s.repository.GetSessionStatistics(ctx, id)
		if err != nil {
			return nil, err
		}
		totals.RoundsPlayed += stats.RoundsPlayed
		totals.Wins += stats.Wins
		totals.Losses += stats.Losses
		totals.Pushes += stats.Pushes
		totals.Blackjacks += stats.Blackjacks
		totals.Busts += stats.Busts
		totals.CutCards += stats.CutCards
		totals.TotalBet += stats.TotalBet
		totals.TotalPayout += stats.TotalPayout
		if stats.LastUpdated.After(totals.LastUpdated) {
			totals.LastUpdated = stats.LastUpdated
		}
	}
	return totals, nil
}

// profitRate is net profit per unit wagered
func profitRate(stats *entities.SessionStatistics) float64 {
	if stats.TotalBet == 0 {
		return 0
	}
	return float64(stats.NetProfit()) / float64(stats.TotalBet)
}

// streaks walks results oldest first. Pushes neither extend nor break a streak.
func streaks(results []*entities.RoundResult) (current, longest int) {
	for _, r := range results {
		switch {
		case r.Outcome.IsWin():
			if current < 0 {
				current = 0
			}
			current++
		case r.Outcome == entities.OutcomeLose:
			if current > 0 {
				current = 0
			}
			current--
		default:
			continue
		}

		length := current
		if length < 0 {
			length = -length
		}
		if length > longest {
			longest = length
		}
	}
	return current, longest
}
