package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/coder/quartz"
	"github.com/fadedpez/tucojack/internal/logging"
	"github.com/fadedpez/tucojack/internal/types"
	"github.com/fadedpez/tucojack/pkg/entities"
	walletRepo "github.com/fadedpez/tucojack/pkg/repositories/wallet"
	"github.com/google/uuid"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNegativeAmount    = errors.New("amount must be positive")
)

// Options configures a new Bankroll
type Options struct {
	UserID          string
	StartingBalance int64
	BetStep         int64
	Clock           quartz.Clock
	Logger          *logging.Logger
}

// Bankroll tracks the player's money and the wager staged for the next deal.
// Every debit and credit is written to the wallet repository as a transaction.
type Bankroll struct {
	repo   walletRepo.Repository
	clock  quartz.Clock
	log    *logging.Logger
	userID string

	balance int64
	bet     int64
	step    int64
}

// NewBankroll creates the wallet record and returns a bankroll with no bet staged
func NewBankroll(ctx context.Context, repo walletRepo.Repository, opts Options) (*Bankroll, error) {
	if opts.StartingBalance < 0 {
		return nil, types.WrapError(types.ErrInvalidArgument, "starting balance cannot be negative", ErrNegativeAmount)
	}
	if opts.BetStep <= 0 {
		return nil, types.WrapError(types.ErrInvalidArgument, "bet step must be positive", ErrNegativeAmount)
	}
	if opts.UserID == "" {
		opts.UserID = uuid.New().String()
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default
	}

	b := &Bankroll{
		repo:    repo,
		clock:   opts.Clock,
		log:     opts.Logger.WithPrefix("[WALLET]"),
		userID:  opts.UserID,
		balance: opts.StartingBalance,
		step:    opts.BetStep,
	}

	if err := b.saveWallet(ctx); err != nil {
		return nil, types.WrapError(types.ErrDatabaseError, "could not create wallet", err)
	}
	return b, nil
}

// UserID returns the wallet owner
func (b *Bankroll) UserID() string {
	return b.userID
}

// Balance returns the money outside of any active wager
func (b *Bankroll) Balance() int64 {
	return b.balance
}

// Bet returns the wager staged for the next deal
func (b *Bankroll) Bet() int64 {
	return b.bet
}

// Step returns the increment used by IncreaseBet and DecreaseBet
func (b *Bankroll) Step() int64 {
	return b.step
}

// IsBroke reports whether the balance has reached zero
func (b *Bankroll) IsBroke() bool {
	return b.balance == 0
}

// SetBet stages an exact wager
func (b *Bankroll) SetBet(amount int64) error {
	if amount <= 0 {
		return types.NewGameError(types.ErrInvalidBet, "Bet must be greater than zero")
	}
	if amount > b.balance {
		return types.NewGameError(types.ErrInvalidBet,
			fmt.Sprintf("Bet of $%d exceeds bankroll of $%d", amount, b.balance))
	}
	b.bet = amount
	return nil
}

// IncreaseBet raises the staged wager by one step, never past the balance
func (b *Bankroll) IncreaseBet() int64 {
	b.bet = min(b.bet+b.step, b.balance)
	return b.bet
}

// DecreaseBet lowers the staged wager by one step, never below zero
func (b *Bankroll) DecreaseBet() int64 {
	b.bet = max(b.bet-b.step, 0)
	return b.bet
}

// ClampBet pulls the staged wager back inside [0, balance]
func (b *Bankroll) ClampBet() {
	b.bet = min(max(b.bet, 0), b.balance)
}

// Debit takes a wager out of the balance for roundID
func (b *Bankroll) Debit(ctx context.Context, amount int64, roundID string) error {
	if amount <= 0 {
		return types.WrapError(types.ErrInvalidBet, "Bet must be greater than zero", ErrNegativeAmount)
	}
	if amount > b.balance {
		return types.WrapError(types.ErrInsufficientFunds,
			fmt.Sprintf("Bet of $%d exceeds bankroll of $%d", amount, b.balance), ErrInsufficientFunds)
	}

	b.balance -= amount
	if err := b.saveWallet(ctx); err != nil {
		b.balance += amount
		return types.WrapError(types.ErrDatabaseError, "could not record bet", err)
	}

	b.log.Debug("Debited $%d for round %s, balance $%d", amount, roundID, b.balance)
	b.addTransaction(ctx, -amount, entities.TransactionTypeBet, roundID, "Blackjack bet")
	return nil
}

// PayoutFor returns what a settled round hands back to the player.
// The wager has already been debited, so a loss pays nothing.
func PayoutFor(outcome entities.Outcome, bet int64) int64 {
	switch outcome {
	case entities.OutcomeWin:
		return bet * 2
	case entities.OutcomeBlackjack:
		return bet + (bet * 3 / 2)
	case entities.OutcomePush:
		return bet
	default:
		return 0
	}
}

// ApplyPayout credits the payout for a settled round and returns it.
// The balance is credited even when the ledger write fails; the error is
// returned so the caller can log it.
func (b *Bankroll) ApplyPayout(ctx context.Context, outcome entities.Outcome, bet int64, roundID string) (int64, error) {
	payout := PayoutFor(outcome, bet)
	if payout == 0 {
		b.log.Debug("Round %s lost, no payout", roundID)
		return 0, nil
	}

	b.balance += payout
	b.log.Debug("Paid $%d for %s on round %s, balance $%d", payout, outcome, roundID, b.balance)

	txType, description := entities.TransactionTypePayout, "Blackjack winnings"
	if outcome == entities.OutcomePush {
		txType, description = entities.TransactionTypeRefund, "Blackjack push refund"
	}

	if err := b.saveWallet(ctx); err != nil {
		return payout, types.WrapError(types.ErrDatabaseError, "could not record payout", err)
	}
	b.addTransaction(ctx, payout, txType, roundID, description)
	return payout, nil
}

// Transactions returns the most recent ledger entries, oldest first
func (b *Bankroll) Transactions(ctx context.Context, limit int) ([]*entities.Transaction, error) {
	return b.repo.GetTransactions(ctx, b.userID, limit)
}

func (b *Bankroll) saveWallet(ctx context.Context) error {
	return b.repo.SaveWallet(ctx, &entities.Wallet{
		UserID:      b.userID,
		Balance:     b.balance,
		LastUpdated: b.clock.Now(),
	})
}

func (b *Bankroll) addTransaction(ctx context.Context, amount int64, txType entities.TransactionType, roundID, description string) {
	transaction := &entities.Transaction{
		ID:           uuid.New().String(),
		UserID:       b.userID,
		Amount:       amount,
		Type:         txType,
		ReferenceID:  roundID,
		Description:  description,
		Timestamp:    b.clock.Now(),
		BalanceAfter: b.balance,
	}

	if err := b.repo.AddTransaction(ctx, transaction); err != nil {
		b.log.Error("Error adding transaction for user %s: %v", b.userID, err)
	}
}
