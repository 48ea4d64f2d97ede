package blackjack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/coder/quartz"
	"github.com/fadedpez/tucojack/internal/config"
	"github.com/fadedpez/tucojack/internal/logging"
	"github.com/fadedpez/tucojack/internal/randutil"
	"github.com/fadedpez/tucojack/internal/types"
	"github.com/fadedpez/tucojack/pkg/repositories/game"
	walletRepo "github.com/fadedpez/tucojack/pkg/repositories/wallet"
	bjService "github.com/fadedpez/tucojack/pkg/services/blackjack"
	"github.com/fadedpez/tucojack/pkg/services/statistics"
	"github.com/fadedpez/tucojack/pkg/services/wallet"
	"github.com/google/uuid"
)

// OpenHistory creates the round history store named by backend
func OpenHistory(backend string) (game.Repository, error) {
	switch backend {
	case "", config.HistoryMemory:
		return game.NewMemoryRepository(), nil
	case config.HistorySQLite:
		repo, err := game.NewSQLiteRepository(game.MemoryDSN)
		if err != nil {
			return nil, types.WrapError(types.ErrDatabaseError, "could not open round history", err)
		}
		return repo, nil
	default:
		return nil, types.NewGameError(types.ErrInvalidArgument, fmt.Sprintf("unknown history backend %q", backend))
	}
}

// OpenWallets creates the bankroll ledger store named by backend
func OpenWallets(backend string) (walletRepo.Repository, error) {
	switch backend {
	case "", config.HistoryMemory:
		return walletRepo.NewMemoryRepository(), nil
	case config.HistorySQLite:
		repo, err := walletRepo.NewSQLiteRepository(walletRepo.MemoryDSN)
		if err != nil {
			return nil, types.WrapError(types.ErrDatabaseError, "could not open wallet ledger", err)
		}
		return repo, nil
	default:
		return nil, types.NewGameError(types.ErrInvalidArgument, fmt.Sprintf("unknown history backend %q", backend))
	}
}

// Factory creates table sessions that share one history, ledger, clock and logger
type Factory struct {
	cfg     *config.Config
	history game.Repository
	wallets walletRepo.Repository
	stats   *statistics.Service
	clock   quartz.Clock
	log     *logging.Logger
}

// NewFactory creates a new blackjack session factory
func NewFactory(cfg *config.Config, history game.Repository, wallets walletRepo.Repository, clock quartz.Clock, logger *logging.Logger) *Factory {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if logger == nil {
		logger = logging.Default
	}
	return &Factory{
		cfg:     cfg,
		history: history,
		wallets: wallets,
		stats:   statistics.NewService(history, clock),
		clock:   clock,
		log:     logger,
	}
}

// CreateSession seats a new player with the configured starting bankroll.
// A nil rng falls back to SHUFFLE_SEED, or the clock when no seed is set.
func (f *Factory) CreateSession(ctx context.Context, rng *rand.Rand) (*Session, error) {
	if rng == nil {
		rng = f.seededRand()
	}

	id := uuid.New().String()
	log := f.log.WithPrefix("[SESSION]")

	bankroll, err := wallet.NewBankroll(ctx, f.wallets, wallet.Options{
		UserID:          id,
		StartingBalance: f.cfg.StartingBankroll,
		BetStep:         f.cfg.BetStep,
		Clock:           f.clock,
		Logger:          f.log,
	})
	if err != nil {
		return nil, err
	}

	g := bjService.NewGame(id, bankroll, f.history, bjService.Config{
		DeckCount:          f.cfg.DeckCount,
		ReplenishThreshold: f.cfg.ReplenishThreshold,
		Rand:               rng,
		Clock:              f.clock,
		Logger:             f.log,
	})

	log.Info("Session %s opened with bankroll $%d", id, bankroll.Balance())

	return &Session{
		ID:       id,
		game:     g,
		bankroll: bankroll,
		stats:    f.stats,
		history:  f.history,
		log:      log,
	}, nil
}

// Stats returns the statistics service over the shared history
func (f *Factory) Stats() *statistics.Service {
	return f.stats
}

// Close releases the shared history and ledger stores
func (f *Factory) Close() error {
	err := f.history.Close()
	if closer, ok := f.wallets.(io.Closer); ok {
		err = errors.Join(err, closer.Close())
	}
	return err
}

func (f *Factory) seededRand() *rand.Rand {
	if f.cfg.ShuffleSeed != 0 {
		return randutil.New(f.cfg.ShuffleSeed)
	}
	return randutil.NewFromClock()
}
