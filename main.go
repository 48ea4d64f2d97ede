package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fadedpez/tucojack/internal/config"
	"github.com/fadedpez/tucojack/internal/logging"
	"github.com/fadedpez/tucojack/internal/tui"
	"github.com/fadedpez/tucojack/pkg/games/blackjack"
)

var CLI struct {
	Bankroll int64  `short:"b" help:"Starting bankroll (overrides STARTING_BANKROLL)"`
	BetStep  int64  `help:"Bet adjustment step (overrides BET_STEP)"`
	Decks    int    `short:"d" help:"Decks in the shoe (overrides DECK_COUNT)"`
	Seed     int64  `help:"Shuffle seed, 0 for random (overrides SHUFFLE_SEED)"`
	History  string `help:"Round history backend: memory or sqlite (overrides HISTORY_BACKEND)"`
	LogLevel string `short:"l" help:"Log level (overrides LOG_LEVEL)"`
	LogFile  string `help:"Log file path (overrides LOG_FILE); logs are discarded when empty"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("tucojack"),
		kong.Description("Single player blackjack at the terminal."),
		kong.UsageOnError(),
	)

	cfg, err := config.Load()
	kctx.FatalIfErrorf(err)
	kctx.FatalIfErrorf(applyOverrides(cfg))

	logger, logFile, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel, cfg.LogFormat())
	kctx.FatalIfErrorf(err)
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.LogError(err)
		fmt.Fprintf(os.Stderr, "tucojack: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logging.Logger) error {
	history, err := blackjack.OpenHistory(cfg.HistoryBackend)
	if err != nil {
		return err
	}

	wallets, err := blackjack.OpenWallets(cfg.HistoryBackend)
	if err != nil {
		history.Close()
		return err
	}

	factory := blackjack.NewFactory(cfg, history, wallets, nil, logger)
	defer factory.Close()

	session, err := factory.CreateSession(ctx, nil)
	if err != nil {
		return err
	}
	defer session.Close()

	logger.Info("Starting %s table: %d decks, bankroll $%d, history %s",
		cfg.Environment, cfg.DeckCount, cfg.StartingBankroll, cfg.HistoryBackend)

	return tui.Run(ctx, session, logger)
}

// applyOverrides layers command line flags over the environment configuration
func applyOverrides(cfg *config.Config) error {
	if CLI.Bankroll != 0 {
		cfg.StartingBankroll = CLI.Bankroll
	}
	if CLI.BetStep != 0 {
		cfg.BetStep = CLI.BetStep
	}
	if CLI.Decks != 0 {
		cfg.DeckCount = CLI.Decks
	}
	if CLI.Seed != 0 {
		cfg.ShuffleSeed = CLI.Seed
	}
	if CLI.History != "" {
		cfg.HistoryBackend = CLI.History
	}
	if CLI.LogLevel != "" {
		level, err := logging.ParseLevel(CLI.LogLevel)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	}
	if CLI.LogFile != "" {
		cfg.LogFile = CLI.LogFile
	}
	return cfg.Validate()
}
