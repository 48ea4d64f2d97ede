package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fadedpez/tucojack/pkg/entities"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// MemoryDSN opens a private in-memory SQLite database
const MemoryDSN = ":memory:"

// SQLite table schemas
const (
	createWalletsTableSQL = `
	CREATE TABLE IF NOT EXISTS wallets (
		user_id TEXT PRIMARY KEY,
		balance INTEGER NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`

	createTransactionsTableSQL = `
	CREATE TABLE IF NOT EXISTS transactions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		user_id TEXT NOT NULL,
		amount INTEGER NOT NULL,
		type TEXT NOT NULL,
		reference_id TEXT NOT NULL,
		description TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		balance_after INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_transactions_user_id ON transactions(user_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_reference ON transactions(user_id, reference_id)`

	selectWalletSQL = `SELECT user_id, balance, updated_at FROM wallets WHERE user_id = ?`

	upsertWalletSQL = `
	INSERT INTO wallets (user_id, balance, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		balance = excluded.balance,
		updated_at = excluded.updated_at`

	insertTransactionSQL = `
	INSERT INTO transactions (
		id, user_id, amount, type, reference_id, description, timestamp, balance_after
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	selectRecentTransactionsSQL = `
	SELECT id, user_id, amount, type, reference_id, description, timestamp, balance_after
	FROM (
		SELECT * FROM transactions
		WHERE user_id = ?
		ORDER BY seq DESC
		LIMIT ?
	) ORDER BY seq ASC`

	selectReferenceTransactionsSQL = `
	SELECT id, user_id, amount, type, reference_id, description, timestamp, balance_after
	FROM transactions
	WHERE user_id = ? AND reference_id = ?
	ORDER BY seq ASC`
)

// SQLiteRepository implements Repository using SQLite
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens dsn and creates the ledger schema
func NewSQLiteRepository(dsn string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// every connection to :memory: is its own database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createWalletsTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating wallets table: %w", err)
	}

	if _, err := db.Exec(createTransactionsTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating transactions table: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// GetWallet retrieves a wallet by user ID
func (r *SQLiteRepository) GetWallet(ctx context.Context, userID string) (*entities.Wallet, error) {
	var wallet entities.Wallet
	err := r.db.QueryRowContext(ctx, selectWalletSQL, userID).Scan(
		&wallet.UserID,
		&wallet.Balance,
		&wallet.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("error getting wallet: %w", err)
	}

	return &wallet, nil
}

// SaveWallet creates or updates a wallet
func (r *SQLiteRepository) SaveWallet(ctx context.Context, wallet *entities.Wallet) error {
	_, err := r.db.ExecContext(ctx, upsertWalletSQL, wallet.UserID, wallet.Balance, wallet.LastUpdated.UTC())
	if err != nil {
		return fmt.Errorf("error saving wallet: %w", err)
	}
	return nil
}

// AddTransaction records a new transaction
func (r *SQLiteRepository) AddTransaction(ctx context.Context, transaction *entities.Transaction) error {
	if transaction.ID == "" {
		transaction.ID = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx, insertTransactionSQL,
		transaction.ID,
		transaction.UserID,
		transaction.Amount,
		string(transaction.Type),
		transaction.ReferenceID,
		transaction.Description,
		transaction.Timestamp.UTC(),
		transaction.BalanceAfter,
	)
	if err != nil {
		return fmt.Errorf("error adding transaction: %w", err)
	}

	return nil
}

// GetTransactions retrieves recent transactions for a user, oldest first
func (r *SQLiteRepository) GetTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}

	rows, err := r.db.QueryContext(ctx, selectRecentTransactionsSQL, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions: %w", err)
	}
	return scanTransactions(rows)
}

// GetTransactionsByReference retrieves every transaction recorded for one round
func (r *SQLiteRepository) GetTransactionsByReference(ctx context.Context, userID, referenceID string) ([]*entities.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, selectReferenceTransactionsSQL, userID, referenceID)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions by reference: %w", err)
	}
	return scanTransactions(rows)
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func scanTransactions(rows *sql.Rows) ([]*entities.Transaction, error) {
	defer rows.Close()

	transactions := make([]*entities.Transaction, 0)
	for rows.Next() {
		var (
			tx     entities.Transaction
			txType string
		)
		if err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.Amount,
			&txType,
			&tx.ReferenceID,
			&tx.Description,
			&tx.Timestamp,
			&tx.BalanceAfter,
		); err != nil {
			return nil, fmt.Errorf("error scanning transaction row: %w", err)
		}
		tx.Type = entities.TransactionType(txType)
		transactions = append(transactions, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return transactions, nil
}
