package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fadedpez/tucojack/internal/config"
	"github.com/fadedpez/tucojack/internal/logging"
	"github.com/fadedpez/tucojack/internal/randutil"
	"github.com/fadedpez/tucojack/pkg/entities"
	"github.com/fadedpez/tucojack/pkg/games/blackjack"
	bjService "github.com/fadedpez/tucojack/pkg/services/blackjack"
	"github.com/fadedpez/tucojack/pkg/services/statistics"
	"golang.org/x/sync/errgroup"
)

type CLI struct {
	Sessions int    `default:"8" help:"Number of independent sessions to play"`
	Rounds   int    `default:"1000" help:"Rounds per session (stops early when a bankroll runs out)"`
	Bet      int64  `default:"10" help:"Flat bet per round"`
	Strategy string `default:"basic" enum:"basic,dealer" help:"Player strategy: basic or dealer"`
	Parallel int    `default:"0" help:"Sessions played at once (0 for one per CPU)"`
	Seed     int64  `default:"0" help:"RNG seed (0 for random)"`
	Top      int    `default:"10" help:"Sessions listed in the leaderboard"`
	Verbose  bool   `short:"v" help:"Print every settled round and log to stderr"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("simulate"),
		kong.Description("Play many blackjack sessions with a fixed strategy and report the results."),
		kong.UsageOnError(),
	)

	cfg, err := config.Load()
	kctx.FatalIfErrorf(err)

	level := logging.ERROR
	if cli.Verbose {
		level = logging.DEBUG
	}
	logger := logging.NewWithFormat(os.Stderr, level, "", cfg.LogFormat())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kctx.FatalIfErrorf(run(ctx, cli, cfg, logger))
}

func run(ctx context.Context, cli CLI, cfg *config.Config, logger *logging.Logger) error {
	if cli.Sessions < 1 || cli.Rounds < 1 || cli.Bet < 1 {
		return fmt.Errorf("sessions, rounds and bet must be positive")
	}
	strategy, ok := blackjack.Strategies[cli.Strategy]
	if !ok {
		return fmt.Errorf("unknown strategy %q", cli.Strategy)
	}

	seed := cli.Seed
	if seed == 0 {
		seed = cfg.ShuffleSeed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	parallel := cli.Parallel
	if parallel < 1 {
		parallel = runtime.NumCPU()
	}

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

	ids := make([]string, cli.Sessions)
	played := make([]int, cli.Sessions)
	start := time.Now()

	var printMu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i := 0; i < cli.Sessions; i++ {
		g.Go(func() error {
			session, err := factory.CreateSession(gctx, randutil.Derive(seed, i))
			if err != nil {
				return err
			}
			defer session.Close()

			ids[i] = session.ID
			var observe func(bjService.State)
			if cli.Verbose {
				observe = printRound(&printMu, session.ID)
			}
			played[i], err = blackjack.PlayObserved(gctx, session, strategy, cli.Rounds, cli.Bet, observe)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	return report(ctx, factory.Stats(), cli, cfg, seed, ids, played, elapsed)
}

// printRound writes each settled table to stdout, one session at a time
func printRound(mu *sync.Mutex, sessionID string) func(bjService.State) {
	round := 0
	return func(state bjService.State) {
		round++
		mu.Lock()
		defer mu.Unlock()
		fmt.Printf("--- %s round %d ---\n%s\n", sessionID, round, blackjack.FormatState(state))
	}
}

func report(ctx context.Context, stats *statistics.Service, cli CLI, cfg *config.Config, seed int64, ids []string, played []int, elapsed time.Duration) error {
	totals, err := stats.Totals(ctx, ids)
	if err != nil {
		return err
	}
	board, err := stats.GetLeaderboard(ctx, ids, 1, cli.Top)
	if err != nil {
		return err
	}

	busted := 0
	for _, n := range played {
		if n < cli.Rounds {
			busted++
		}
	}

	fmt.Printf("Simulated %d sessions x %d rounds (%s strategy, $%d bet, %d decks, seed %d) in %s\n",
		cli.Sessions, cli.Rounds, cli.Strategy, cli.Bet, cfg.DeckCount, seed, elapsed.Round(time.Millisecond))
	fmt.Println(strings.Repeat("=", 72))
	printStats(totals)
	fmt.Printf("Sessions out of money: %d\n", busted)
	fmt.Println()

	fmt.Printf("%-4s %-36s %7s %7s %9s %8s\n", "Rank", "Session", "Rounds", "Win %", "Net", "ROI")
	for _, s := range board.Sessions {
		marker := ""
		if s.IsTopWinner {
			marker = " *"
		}
		fmt.Printf("%-4d %-36s %7d %6.1f%% %+9d %+7.2f%%%s\n",
			s.Rank, s.SessionID, s.RoundsPlayed, s.WinRate, s.NetProfit(), s.ProfitRate*100, marker)
	}
	return nil
}

func printStats(s *entities.SessionStatistics) {
	rate := 0.0
	if s.TotalBet > 0 {
		rate = float64(s.NetProfit()) / float64(s.TotalBet) * 100
	}
	fmt.Printf("Rounds:     %d\n", s.RoundsPlayed)
	fmt.Printf("Wins:       %d (%.2f%%)\n", s.Wins, s.WinRate())
	fmt.Printf("Blackjacks: %d\n", s.Blackjacks)
	fmt.Printf("Losses:     %d (busts %d)\n", s.Losses, s.Busts)
	fmt.Printf("Pushes:     %d (cut card %d)\n", s.Pushes, s.CutCards)
	fmt.Printf("Wagered:    $%d\n", s.TotalBet)
	fmt.Printf("Net:        $%+d (%+.3f%% of action)\n", s.NetProfit(), rate)
}
