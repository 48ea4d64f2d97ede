package wallet

import (
	"context"
	"errors"

	"github.com/fadedpez/tucojack/pkg/entities"
)

// ErrWalletNotFound is returned when no wallet exists for a user
var ErrWalletNotFound = errors.New("wallet not found")

// Repository defines the interface for wallet data operations
type Repository interface {
	// GetWallet retrieves a wallet by user ID
	GetWallet(ctx context.Context, userID string) (*entities.Wallet, error)

	// SaveWallet creates or updates a wallet
	SaveWallet(ctx context.Context, wallet *entities.Wallet) error

	// AddTransaction records a new transaction
	AddTransaction(ctx context.Context, transaction *entities.Transaction) error

	// GetTransactions retrieves recent transactions for a user
	GetTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error)

	// GetTransactionsByReference retrieves every transaction recorded for one round
	GetTransactionsByReference(ctx context.Context, userID, referenceID string) ([]*entities.Transaction, error)
}
