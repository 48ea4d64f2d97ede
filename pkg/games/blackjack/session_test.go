package blackjack

import (
	"context"
	"testing"

	"github.com/coder/quartz"
	"github.com/fadedpez/tucojack/internal/config"
	"github.com/fadedpez/tucojack/internal/logging"
	"github.com/fadedpez/tucojack/internal/randutil"
	"github.com/fadedpez/tucojack/internal/types"
	"github.com/fadedpez/tucojack/pkg/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, backend string, seed int64) *Session {
	t.Helper()

	history, err := OpenHistory(backend)
	require.NoError(t, err)

	wallets, err := OpenWallets(backend)
	require.NoError(t, err)

	factory := NewFactory(config.Default(), history, wallets, quartz.NewMock(t), logging.Discard())
	t.Cleanup(func() { factory.Close() })

	session, err := factory.CreateSession(context.Background(), randutil.New(seed))
	require.NoError(t, err)
	return session
}

func TestDispatchIgnoresIllegalIntents(t *testing.T) {
	ctx := context.Background()
	session := newTestSession(t, config.HistoryMemory, 3)
	before := session.State()

	for _, action := range []Action{ActionHit, ActionStand} {
		state, err := session.Dispatch(ctx, Intent{Action: action})
		assert.NoError(t, err, "%s before a deal is a no-op", action)
		assert.Equal(t, before, state)
	}
}

func TestDispatchSurfacesRejectedIntents(t *testing.T) {
	ctx := context.Background()
	session := newTestSession(t, config.HistoryMemory, 3)

	_, err := session.Dispatch(ctx, Intent{Action: ActionDeal})
	assert.True(t, types.IsGameError(err, types.ErrInvalidBet))

	_, err = session.Dispatch(ctx, Intent{Action: ActionPlaceBet, Amount: 501})
	assert.True(t, types.IsGameError(err, types.ErrInvalidBet))

	_, err = session.Dispatch(ctx, Intent{Action: "double_down"})
	assert.True(t, types.IsGameError(err, types.ErrInvalidAction))
}

func TestDispatchBetSteps(t *testing.T) {
	ctx := context.Background()
	session := newTestSession(t, config.HistoryMemory, 3)
	assert.Equal(t, int64(5), session.BetStep())

	state, err := session.Dispatch(ctx, Intent{Action: ActionIncreaseBet})
	require.NoError(t, err)
	assert.Equal(t, session.BetStep(), state.CurrentBet)

	state, err = session.Dispatch(ctx, Intent{Action: ActionIncreaseBet})
	require.NoError(t, err)
	assert.Equal(t, int64(10), state.CurrentBet)

	state, err = session.Dispatch(ctx, Intent{Action: ActionDecreaseBet})
	require.NoError(t, err)
	assert.Equal(t, int64(5), state.CurrentBet)
}

func TestDispatchRound(t *testing.T) {
	ctx := context.Background()
	session := newTestSession(t, config.HistoryMemory, 11)

	_, err := session.Dispatch(ctx, Intent{Action: ActionPlaceBet, Amount: 20})
	require.NoError(t, err)

	state, err := session.Dispatch(ctx, Intent{Action: ActionDeal})
	require.NoError(t, err)

	for state.Phase == entities.PhasePlayerTurn {
		state, err = session.Dispatch(ctx, Intent{Action: ActionStand})
		require.NoError(t, err)
	}

	assert.NotEqual(t, entities.OutcomeNone, state.Outcome)
	assert.NotEmpty(t, state.ResultMessage)

	rounds, err := session.Rounds(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	assert.Equal(t, state.Outcome, rounds[0].Outcome)
	assert.Equal(t, int64(20), rounds[0].Bet)

	state, err = session.Dispatch(ctx, Intent{Action: ActionNewRound})
	require.NoError(t, err)
	assert.Equal(t, entities.PhaseAwaitingBet, state.Phase)
	assert.Empty(t, state.PlayerHand)
}

// The bankroll always equals the starting balance plus the recorded net result
func TestBankrollMatchesHistoryAndLedger(t *testing.T) {
	for _, backend := range []string{config.HistoryMemory, config.HistorySQLite} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			session := newTestSession(t, backend, 2026)

			played, err := Play(ctx, session, BasicStrategy{}, 100, 5)
			require.NoError(t, err)
			assert.Equal(t, 100, played)

			state := session.State()
			summary, err := session.Summary(ctx)
			require.NoError(t, err)
			assert.Equal(t, played, summary.RoundsPlayed)
			assert.Equal(t, int64(500)+summary.NetProfit(), state.Bankroll)
			assert.LessOrEqual(t, len(summary.Recent), 5)

			txs, err := session.Transactions(ctx, 0)
			require.NoError(t, err)
			var sum int64
			for _, tx := range txs {
				sum += tx.Amount
			}
			assert.Equal(t, state.Bankroll-500, sum)
			if len(txs) > 0 {
				assert.Equal(t, state.Bankroll, txs[len(txs)-1].BalanceAfter)
			}
		})
	}
}
