package game

import (
	"context"

	"github.com/fadedpez/tucojack/pkg/entities"
)

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_game

// Repository defines storage operations for settled rounds
type Repository interface {
	// SaveRoundResult records one settled round
	SaveRoundResult(ctx context.Context, result *entities.RoundResult) error

	// GetSessionResults returns the most recent rounds of a session, oldest first.
	// A limit of zero or less returns every round.
	GetSessionResults(ctx context.Context, sessionID string, limit int) ([]*entities.RoundResult, error)

	// GetSessionStatistics aggregates every round of a session
	GetSessionStatistics(ctx context.Context, sessionID string) (*entities.SessionStatistics, error)

	// Close closes any resources used by the repository
	Close() error
}
