package game

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fadedpez/tucojack/pkg/entities"
	_ "github.com/mattn/go-sqlite3"
)

// MemoryDSN opens a private in-memory SQLite database
const MemoryDSN = ":memory:"

// SQLite table schemas
const (
	createRoundResultsTableSQL = `
	CREATE TABLE IF NOT EXISTS round_results (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		session_id TEXT NOT NULL,
		outcome TEXT NOT NULL,
		bet INTEGER NOT NULL,
		payout INTEGER NOT NULL,
		player_cards TEXT NOT NULL,  -- JSON array of cards
		dealer_cards TEXT NOT NULL,  -- JSON array of cards
		player_score INTEGER NOT NULL,
		dealer_score INTEGER NOT NULL,
		player_bust BOOLEAN NOT NULL,
		dealer_bust BOOLEAN NOT NULL,
		cut_card BOOLEAN NOT NULL,
		completed_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_round_results_session ON round_results(session_id)`

	insertRoundResultSQL = `
	INSERT INTO round_results (
		id, session_id, outcome, bet, payout, player_cards, dealer_cards,
		player_score, dealer_score, player_bust, dealer_bust, cut_card, completed_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectSessionResultsSQL = `
	SELECT id, session_id, outcome, bet, payout, player_cards, dealer_cards,
		player_score, dealer_score, player_bust, dealer_bust, cut_card, completed_at
	FROM (
		SELECT * FROM round_results
		WHERE session_id = ?
		ORDER BY seq DESC
		LIMIT ?
	) ORDER BY seq ASC`

	selectSessionStatisticsSQL = `
	SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN outcome IN ('WIN', 'BLACKJACK') THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN outcome = 'LOSE' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN outcome = 'PUSH' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN outcome = 'BLACKJACK' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN player_bust THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN cut_card THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(bet), 0),
		COALESCE(SUM(payout), 0)
	FROM round_results
	WHERE session_id = ?`

	selectLastCompletedSQL = `
	SELECT completed_at FROM round_results
	WHERE session_id = ?
	ORDER BY seq DESC
	LIMIT 1`
)

// SQLiteRepository implements the Repository interface using SQLite
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens dsn and creates the schema. Use MemoryDSN to keep
// history for the lifetime of the process only.
func NewSQLiteRepository(dsn string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// every connection to :memory: is its own database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createRoundResultsTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating round_results table: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// SaveRoundResult stores a settled round
func (r *SQLiteRepository) SaveRoundResult(ctx context.Context, result *entities.RoundResult) error {
	playerJSON, err := json.Marshal(result.PlayerCards)
	if err != nil {
		return err
	}
	dealerJSON, err := json.Marshal(result.DealerCards)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, insertRoundResultSQL,
		result.ID, result.SessionID, string(result.Outcome), result.Bet, result.Payout,
		string(playerJSON), string(dealerJSON),
		result.PlayerScore, result.DealerScore,
		result.PlayerBust, result.DealerBust, result.CutCard,
		result.CompletedAt.UTC())
	if err != nil {
		return fmt.Errorf("error saving round %s: %w", result.ID, err)
	}
	return nil
}

// GetSessionResults retrieves recent rounds for a session
func (r *SQLiteRepository) GetSessionResults(ctx context.Context, sessionID string, limit int) ([]*entities.RoundResult, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}

	rows, err := r.db.QueryContext(ctx, selectSessionResultsSQL, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*entities.RoundResult, 0)
	for rows.Next() {
		var (
			result     entities.RoundResult
			outcome    string
			playerJSON string
			dealerJSON string
		)
		if err := rows.Scan(
			&result.ID, &result.SessionID, &outcome, &result.Bet, &result.Payout,
			&playerJSON, &dealerJSON,
			&result.PlayerScore, &result.DealerScore,
			&result.PlayerBust, &result.DealerBust, &result.CutCard,
			&result.CompletedAt,
		); err != nil {
			return nil, err
		}
		result.Outcome = entities.Outcome(outcome)
		if err := json.Unmarshal([]byte(playerJSON), &result.PlayerCards); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(dealerJSON), &result.DealerCards); err != nil {
			return nil, err
		}
		results = append(results, &result)
	}

	return results, rows.Err()
}

// GetSessionStatistics aggregates every round of a session in SQL
func (r *SQLiteRepository) GetSessionStatistics(ctx context.Context, sessionID string) (*entities.SessionStatistics, error) {
	stats := &entities.SessionStatistics{SessionID: sessionID}

	err := r.db.QueryRowContext(ctx, selectSessionStatisticsSQL, sessionID).Scan(
		&stats.RoundsPlayed,
		&stats.Wins,
		&stats.Losses,
		&stats.Pushes,
		&stats.Blackjacks,
		&stats.Busts,
		&stats.CutCards,
		&stats.TotalBet,
		&stats.TotalPayout,
	)
	if err != nil {
		return nil, err
	}

	if stats.RoundsPlayed > 0 {
		if err := r.db.QueryRowContext(ctx, selectLastCompletedSQL, sessionID).Scan(&stats.LastUpdated); err != nil {
			return nil, err
		}
	}

	return stats, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
