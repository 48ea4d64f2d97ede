package wallet

import (
	"context"
	"sync"

	"github.com/fadedpez/tucojack/pkg/entities"
	"github.com/google/uuid"
)

// MemoryRepository implements Repository using in-memory storage
type MemoryRepository struct {
	wallets      map[string]*entities.Wallet
	transactions map[string][]*entities.Transaction
	mu           sync.RWMutex
}

// NewMemoryRepository creates a new in-memory wallet repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		wallets:      make(map[string]*entities.Wallet),
		transactions: make(map[string][]*entities.Transaction),
	}
}

// GetWallet retrieves a wallet by user ID
func (r *MemoryRepository) GetWallet(ctx context.Context, userID string) (*entities.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wallet, exists := r.wallets[userID]
	if !exists {
		return nil, ErrWalletNotFound
	}

	// Return a copy to prevent concurrent modification
	walletCopy := *wallet
	return &walletCopy, nil
}

// SaveWallet creates or updates a wallet
func (r *MemoryRepository) SaveWallet(ctx context.Context, wallet *entities.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	walletCopy := *wallet
	r.wallets[wallet.UserID] = &walletCopy

	return nil
}

// AddTransaction records a new transaction
func (r *MemoryRepository) AddTransaction(ctx context.Context, transaction *entities.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if transaction.ID == "" {
		transaction.ID = uuid.New().String()
	}

	txCopy := *transaction
	r.transactions[transaction.UserID] = append(r.transactions[transaction.UserID], &txCopy)

	return nil
}

// GetTransactions retrieves recent transactions for a user, oldest first
func (r *MemoryRepository) GetTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	transactions := r.transactions[userID]

	start := 0
	if limit > 0 && len(transactions) > limit {
		start = len(transactions) - limit
	}

	result := make([]*entities.Transaction, 0, len(transactions)-start)
	for _, tx := range transactions[start:] {
		txCopy := *tx
		result = append(result, &txCopy)
	}

	return result, nil
}

// GetTransactionsByReference retrieves every transaction recorded for one round
func (r *MemoryRepository) GetTransactionsByReference(ctx context.Context, userID, referenceID string) ([]*entities.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	filtered := make([]*entities.Transaction, 0)
	for _, tx := range r.transactions[userID] {
		if tx.ReferenceID == referenceID {
			txCopy := *tx
			filtered = append(filtered, &txCopy)
		}
	}

	return filtered, nil
}
