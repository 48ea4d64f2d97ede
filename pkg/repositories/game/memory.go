package game

import (
	"context"
	"sync"

	"github.com/fadedpez/tucojack/pkg/entities"
)

// MemoryRepository implements Repository interface with in-memory storage
type MemoryRepository struct {
	mu sync.RWMutex
	// Map of sessionID to settled rounds in completion order
	results map[string][]*entities.RoundResult
}

// NewMemoryRepository creates a new in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		results: make(map[string][]*entities.RoundResult),
	}
}

// SaveRoundResult stores a settled round
func (r *MemoryRepository) SaveRoundResult(ctx context.Context, result *entities.RoundResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.results[result.SessionID] = append(r.results[result.SessionID], copyResult(result))
	return nil
}

// GetSessionResults retrieves recent rounds for a session
func (r *MemoryRepository) GetSessionResults(ctx context.Context, sessionID string, limit int) ([]*entities.RoundResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := r.results[sessionID]

	// If we have more results than the limit, return only the most recent ones
	start := 0
	if limit > 0 && len(results) > limit {
		start = len(results) - limit
	}

	out := make([]*entities.RoundResult, 0, len(results)-start)
	for _, result := range results[start:] {
		out = append(out, copyResult(result))
	}
	return out, nil
}

// GetSessionStatistics folds every stored round of a session into totals
func (r *MemoryRepository) GetSessionStatistics(ctx context.Context, sessionID string) (*entities.SessionStatistics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &entities.SessionStatistics{SessionID: sessionID}
	for _, result := range r.results[sessionID] {
		stats.Add(result)
	}
	return stats, nil
}

// Close is a no-op for memory repository since there are no resources to close
func (r *MemoryRepository) Close() error {
	return nil
}

func copyResult(result *entities.RoundResult) *entities.RoundResult {
	c := *result
	c.PlayerCards = append([]entities.Card(nil), result.PlayerCards...)
	c.DealerCards = append([]entities.Card(nil), result.DealerCards...)
	return &c
}
