package blackjack

import (
	"context"
	"errors"
	"testing"

	"github.com/coder/quartz"
	"github.com/fadedpez/tucojack/internal/logging"
	"github.com/fadedpez/tucojack/internal/randutil"
	"github.com/fadedpez/tucojack/internal/types"
	"github.com/fadedpez/tucojack/pkg/entities"
	gameRepo "github.com/fadedpez/tucojack/pkg/repositories/game"
	mock_game "github.com/fadedpez/tucojack/pkg/repositories/game/mock"
	walletRepo "github.com/fadedpez/tucojack/pkg/repositories/wallet"
	"github.com/fadedpez/tucojack/pkg/services/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type testTable struct {
	game     *Game
	bankroll *wallet.Bankroll
	clock    *quartz.Mock
}

// newTestTable builds a game whose shoe deals exactly the given cards in order.
// Deal order is player, dealer, player, dealer.
func newTestTable(t *testing.T, balance int64, repo gameRepo.Repository, deck ...entities.Card) *testTable {
	t.Helper()

	clock := quartz.NewMock(t)
	bankroll, err := wallet.NewBankroll(context.Background(), walletRepo.NewMemoryRepository(), wallet.Options{
		UserID:          "player",
		StartingBalance: balance,
		BetStep:         5,
		Clock:           clock,
		Logger:          logging.Discard(),
	})
	require.NoError(t, err)

	g := NewGame("session-1", bankroll, repo, Config{
		DeckCount:          StandardDecks,
		ReplenishThreshold: 0,
		Rand:               randutil.New(42),
		Clock:              clock,
		Logger:             logging.Discard(),
	})
	g.shoe = entities.NewShoeFromCards(deck)

	return &testTable{game: g, bankroll: bankroll, clock: clock}
}

func (tt *testTable) dealWithBet(t *testing.T, bet int64) State {
	t.Helper()
	_, err := tt.game.PlaceBet(bet)
	require.NoError(t, err)
	state, err := tt.game.Deal(context.Background())
	require.NoError(t, err)
	return state
}

func TestRoundPayouts(t *testing.T) {
	testCases := []struct {
		name            string
		deck            []entities.Card
		stand           bool
		expectedOutcome entities.Outcome
		expectedMessage string
		expectedBalance int64
	}{
		{
			name:            "Player wins",
			deck:            cards(entities.Ten, entities.Ten, entities.Nine, entities.Seven),
			stand:           true,
			expectedOutcome: entities.OutcomeWin,
			expectedMessage: MessagePlayerWins,
			expectedBalance: 510,
		},
		{
			name:            "Push",
			deck:            cards(entities.Ten, entities.Ten, entities.Eight, entities.Eight),
			stand:           true,
			expectedOutcome: entities.OutcomePush,
			expectedMessage: MessagePush,
			expectedBalance: 500,
		},
		{
			name:            "Dealer wins",
			deck:            cards(entities.Ten, entities.Ten, entities.Seven, entities.Nine),
			stand:           true,
			expectedOutcome: entities.OutcomeLose,
			expectedMessage: MessageDealerWins,
			expectedBalance: 490,
		},
		{
			name:            "Player blackjack",
			deck:            cards(entities.Ace, entities.Ten, entities.King, entities.Seven),
			expectedOutcome: entities.OutcomeBlackjack,
			expectedMessage: MessagePlayerBlackjack,
			expectedBalance: 515,
		},
		{
			name:            "Dealer blackjack",
			deck:            cards(entities.Ten, entities.Ace, entities.Nine, entities.King),
			expectedOutcome: entities.OutcomeLose,
			expectedMessage: MessageDealerBlackjack,
			expectedBalance: 490,
		},
		{
			name:            "Both blackjack",
			deck:            cards(entities.Ace, entities.Ace, entities.King, entities.Queen),
			expectedOutcome: entities.OutcomePush,
			expectedMessage: MessageBothBlackjack,
			expectedBalance: 500,
		},
		{
			name:            "Dealer busts",
			deck:            cards(entities.Ten, entities.Ten, entities.Eight, entities.Six, entities.King),
			stand:           true,
			expectedOutcome: entities.OutcomeWin,
			expectedMessage: MessageDealerBust,
			expectedBalance: 510,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tt := newTestTable(t, 500, gameRepo.NewMemoryRepository(), tc.deck...)

			state := tt.dealWithBet(t, 10)
			if tc.stand {
				assert.Equal(t, entities.PhasePlayerTurn, state.Phase)
				assert.Equal(t, int64(490), state.Bankroll, "the bet is debited on deal")

				var err error
				state, err = tt.game.Stand(context.Background())
				require.NoError(t, err)
			}

			assert.Equal(t, entities.PhaseSettled, state.Phase)
			assert.Equal(t, tc.expectedOutcome, state.Outcome)
			assert.Equal(t, tc.expectedMessage, state.ResultMessage)
			assert.Equal(t, tc.expectedBalance, state.Bankroll)
			assert.Equal(t, int64(10), state.CurrentBet)
			assert.False(t, state.DealerHoleCardHidden)
		})
	}
}

func TestPlayerBustsOnHit(t *testing.T) {
	tt := newTestTable(t, 500, nil, cards(entities.Ten, entities.Ten, entities.Six, entities.Seven, entities.King)...)
	tt.dealWithBet(t, 10)

	state, err := tt.game.Hit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entities.PhaseSettled, state.Phase)
	assert.Equal(t, entities.OutcomeLose, state.Outcome)
	assert.Equal(t, MessagePlayerBust, state.ResultMessage)
	assert.Equal(t, 26, state.PlayerValue)
	assert.Len(t, state.DealerHand, 2, "the dealer does not play after a player bust")
	assert.Equal(t, int64(490), state.Bankroll)
}

func TestHitBelowTwentyOneContinues(t *testing.T) {
	tt := newTestTable(t, 500, nil, cards(entities.Two, entities.Ten, entities.Three, entities.Seven, entities.Four)...)
	tt.dealWithBet(t, 10)

	state, err := tt.game.Hit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entities.PhasePlayerTurn, state.Phase)
	assert.Equal(t, 9, state.PlayerValue)
	assert.Len(t, state.PlayerHand, 3)
	assert.Equal(t, entities.OutcomeNone, state.Outcome)
}

func TestCutCardDuringHitForcesPush(t *testing.T) {
	deck := cards(entities.Ten, entities.Ten, entities.Two, entities.Seven)
	deck = append(deck, entities.CutCard(), card(entities.Five))
	tt := newTestTable(t, 500, nil, deck...)
	tt.dealWithBet(t, 10)

	state, err := tt.game.Hit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entities.PhaseSettled, state.Phase)
	assert.Equal(t, entities.OutcomePush, state.Outcome)
	assert.Equal(t, MessageCutCard, state.ResultMessage)
	assert.Equal(t, int64(500), state.Bankroll, "the bet is refunded")
	assert.Len(t, state.PlayerHand, 2)
	for _, c := range state.PlayerHand {
		assert.False(t, c.IsCutCard())
	}

	// the next deal starts from a rebuilt shoe
	_, err = tt.game.NewRound()
	require.NoError(t, err)
	_, err = tt.game.Deal(context.Background())
	require.NoError(t, err)
	assert.Greater(t, tt.game.State().ShoeRemaining, StandardDecks*entities.DeckSize-10)
}

func TestCutCardDuringStandForcesPush(t *testing.T) {
	deck := cards(entities.Ten, entities.Ten, entities.Nine, entities.Four)
	deck = append(deck, entities.CutCard(), card(entities.Five))
	tt := newTestTable(t, 500, nil, deck...)
	tt.dealWithBet(t, 10)

	state, err := tt.game.Stand(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entities.PhaseSettled, state.Phase)
	assert.Equal(t, entities.OutcomePush, state.Outcome)
	assert.Equal(t, int64(500), state.Bankroll)
	assert.Len(t, state.DealerHand, 2)
}

func TestCutCardDuringInitialDeal(t *testing.T) {
	deck := []entities.Card{card(entities.Ten), entities.CutCard()}
	deck = append(deck, cards(entities.Nine, entities.Seven, entities.Six)...)
	tt := newTestTable(t, 500, nil, deck...)

	state := tt.dealWithBet(t, 10)

	assert.Equal(t, entities.PhaseAwaitingBet, state.Phase)
	assert.Equal(t, entities.OutcomePush, state.Outcome)
	assert.Equal(t, MessageCutCard, state.ResultMessage)
	assert.Empty(t, state.PlayerHand)
	assert.Empty(t, state.DealerHand)
	assert.Equal(t, int64(500), state.Bankroll)
	assert.Equal(t, int64(10), state.CurrentBet, "the staged bet survives the aborted deal")

	// a deal is accepted right away and uses a fresh shoe
	state, err := tt.game.Deal(context.Background())
	require.NoError(t, err)
	assert.Greater(t, state.ShoeRemaining, StandardDecks*entities.DeckSize-10)
}

func TestEmptyShoeMidRoundForcesPush(t *testing.T) {
	tt := newTestTable(t, 500, nil, cards(entities.Ten, entities.Ten, entities.Six, entities.Seven)...)
	tt.dealWithBet(t, 10)

	state, err := tt.game.Hit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entities.PhaseSettled, state.Phase)
	assert.Equal(t, entities.OutcomePush, state.Outcome)
	assert.Equal(t, MessageEmptyShoe, state.ResultMessage)
	assert.Equal(t, int64(500), state.Bankroll)
	assert.True(t, ShouldReshuffle(tt.game.shoe, tt.game.threshold))
}

func TestDealerAutoPlay(t *testing.T) {
	testCases := []struct {
		name          string
		deck          []entities.Card
		dealerCards   int
		shoeRemaining int
	}{
		{
			name:          "Sixteen draws",
			deck:          cards(entities.Ten, entities.Ten, entities.Nine, entities.Six, entities.Two, entities.Five),
			dealerCards:   3,
			shoeRemaining: 1,
		},
		{
			name:          "Hard seventeen stands",
			deck:          cards(entities.Ten, entities.Ten, entities.Nine, entities.Seven, entities.Five),
			dealerCards:   2,
			shoeRemaining: 1,
		},
		{
			name:          "Soft seventeen stands",
			deck:          cards(entities.Ten, entities.Ace, entities.Nine, entities.Six, entities.Five),
			dealerCards:   2,
			shoeRemaining: 1,
		},
		{
			name:          "Draws until seventeen",
			deck:          cards(entities.Ten, entities.Two, entities.Nine, entities.Three, entities.Two, entities.Four, entities.Six, entities.Five),
			dealerCards:   5,
			shoeRemaining: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tt := newTestTable(t, 500, nil, tc.deck...)
			tt.dealWithBet(t, 10)

			state, err := tt.game.Stand(context.Background())
			require.NoError(t, err)

			assert.Equal(t, entities.PhaseSettled, state.Phase)
			assert.Len(t, state.DealerHand, tc.dealerCards)
			assert.GreaterOrEqual(t, state.DealerValue, DealerStandsOn)
			assert.Equal(t, tc.shoeRemaining, state.ShoeRemaining)
		})
	}
}

func TestDealerHoleCardHidden(t *testing.T) {
	tt := newTestTable(t, 500, nil, cards(entities.Ten, entities.Ace, entities.Nine, entities.Six, entities.Ten)...)

	before := tt.game.State()
	assert.False(t, before.DealerHoleCardHidden, "nothing to hide before the deal")

	state := tt.dealWithBet(t, 10)
	assert.True(t, state.DealerHoleCardHidden)
	assert.Equal(t, 6, state.DealerValue, "only the up card counts while hidden")
	assert.Equal(t, 19, state.PlayerValue)

	state, err := tt.game.Stand(context.Background())
	require.NoError(t, err)
	assert.False(t, state.DealerHoleCardHidden)
	assert.Equal(t, 17, state.DealerValue)
}

func TestNewRoundIsIdempotent(t *testing.T) {
	tt := newTestTable(t, 500, nil, cards(entities.Ten, entities.Ten, entities.Nine, entities.Seven)...)
	tt.dealWithBet(t, 10)
	_, err := tt.game.Stand(context.Background())
	require.NoError(t, err)

	first, err := tt.game.NewRound()
	require.NoError(t, err)
	second, err := tt.game.NewRound()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, entities.PhaseAwaitingBet, second.Phase)
	assert.Empty(t, second.PlayerHand)
	assert.Empty(t, second.DealerHand)
	assert.Equal(t, entities.OutcomeNone, second.Outcome)
	assert.Empty(t, second.ResultMessage)
	assert.Equal(t, int64(510), second.Bankroll)
	assert.Equal(t, int64(10), second.CurrentBet, "the bet carries into the next round")
}

func TestZeroBankrollBlocksDeal(t *testing.T) {
	tt := newTestTable(t, 10, nil, cards(entities.Ten, entities.Ten, entities.Seven, entities.Nine)...)
	tt.dealWithBet(t, 10)

	state, err := tt.game.Stand(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), state.Bankroll)
	assert.True(t, state.GameOver)

	state, err = tt.game.NewRound()
	require.NoError(t, err)
	assert.Equal(t, int64(0), state.CurrentBet, "the bet is clamped to the empty bankroll")

	state, err = tt.game.Deal(context.Background())
	assert.True(t, types.IsGameError(err, types.ErrBankrollEmpty))
	assert.Equal(t, MessageGameOver, types.UserMessage(err))
	assert.Equal(t, entities.PhaseAwaitingBet, state.Phase)
	assert.True(t, state.GameOver)
}

func TestDealRequiresBet(t *testing.T) {
	tt := newTestTable(t, 500, nil, cards(entities.Ten, entities.Ten, entities.Nine, entities.Seven)...)

	state, err := tt.game.Deal(context.Background())
	assert.True(t, types.IsGameError(err, types.ErrInvalidBet))
	assert.Equal(t, entities.PhaseAwaitingBet, state.Phase)
	assert.Equal(t, int64(500), state.Bankroll)
	assert.Equal(t, 4, state.ShoeRemaining, "no cards were drawn")
}

func TestBetAdjustments(t *testing.T) {
	tt := newTestTable(t, 12, nil, cards(entities.Ten, entities.Ten, entities.Nine, entities.Seven)...)

	state, err := tt.game.IncreaseBet()
	require.NoError(t, err)
	assert.Equal(t, int64(5), state.CurrentBet)

	tt.game.IncreaseBet()
	state, err = tt.game.IncreaseBet()
	require.NoError(t, err)
	assert.Equal(t, int64(12), state.CurrentBet)

	state, err = tt.game.DecreaseBet()
	require.NoError(t, err)
	assert.Equal(t, int64(7), state.CurrentBet)

	_, err = tt.game.PlaceBet(13)
	assert.True(t, types.IsGameError(err, types.ErrInvalidBet))
	_, err = tt.game.PlaceBet(0)
	assert.True(t, types.IsGameError(err, types.ErrInvalidBet))
	assert.Equal(t, int64(7), tt.game.State().CurrentBet)
}

func TestIllegalTransitions(t *testing.T) {
	ctx := context.Background()
	tt := newTestTable(t, 500, nil, cards(entities.Ten, entities.Ten, entities.Nine, entities.Seven)...)

	before := tt.game.State()
	testCases := []struct {
		name   string
		action func() (State, error)
	}{
		{"Hit before deal", func() (State, error) { return tt.game.Hit(ctx) }},
		{"Stand before deal", func() (State, error) { return tt.game.Stand(ctx) }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			state, err := tc.action()
			assert.True(t, types.IsGameError(err, types.ErrIllegalTransition))
			assert.Equal(t, before, state)
		})
	}

	during := tt.dealWithBet(t, 10)
	inRound := []struct {
		name   string
		action func() (State, error)
	}{
		{"Deal during player turn", func() (State, error) { return tt.game.Deal(ctx) }},
		{"Place bet during player turn", func() (State, error) { return tt.game.PlaceBet(20) }},
		{"Increase bet during player turn", tt.game.IncreaseBet},
		{"Decrease bet during player turn", tt.game.DecreaseBet},
		{"New round during player turn", tt.game.NewRound},
	}
	for _, tc := range inRound {
		t.Run(tc.name, func(t *testing.T) {
			state, err := tc.action()
			assert.True(t, types.IsGameError(err, types.ErrIllegalTransition))
			assert.Equal(t, during, state)
		})
	}

	settled, err := tt.game.Stand(ctx)
	require.NoError(t, err)
	state, err := tt.game.Hit(ctx)
	assert.True(t, types.IsGameError(err, types.ErrIllegalTransition))
	assert.Equal(t, settled, state)
	_, err = tt.game.Deal(ctx)
	assert.True(t, types.IsGameError(err, types.ErrIllegalTransition), "a settled round needs a new round first")
}

func TestRoundIsRecordedOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_game.NewMockRepository(ctrl)

	tt := newTestTable(t, 500, repo, cards(entities.Ace, entities.Ten, entities.King, entities.Seven)...)

	repo.EXPECT().
		SaveRoundResult(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, result *entities.RoundResult) error {
			assert.Equal(t, "session-1", result.SessionID)
			assert.Equal(t, entities.OutcomeBlackjack, result.Outcome)
			assert.Equal(t, int64(10), result.Bet)
			assert.Equal(t, int64(25), result.Payout)
			assert.Equal(t, 21, result.PlayerScore)
			assert.Equal(t, 17, result.DealerScore)
			assert.Len(t, result.PlayerCards, 2)
			assert.False(t, result.CutCard)
			assert.True(t, result.CompletedAt.Equal(tt.clock.Now()))
			assert.NotEmpty(t, result.ID)
			return nil
		}).
		Times(1)

	state := tt.dealWithBet(t, 10)
	assert.NotEmpty(t, state.RoundID)

	_, err := tt.game.NewRound()
	require.NoError(t, err)
	_, err = tt.game.NewRound()
	require.NoError(t, err)
}

func TestHistoryFailureDoesNotBlockSettlement(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_game.NewMockRepository(ctrl)
	repo.EXPECT().SaveRoundResult(gomock.Any(), gomock.Any()).Return(errors.New("database is locked")).Times(1)

	tt := newTestTable(t, 500, repo, cards(entities.Ten, entities.Ten, entities.Nine, entities.Seven)...)
	tt.dealWithBet(t, 10)

	state, err := tt.game.Stand(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entities.PhaseSettled, state.Phase)
	assert.Equal(t, int64(510), state.Bankroll)
}

func TestRoundsAccumulateInHistory(t *testing.T) {
	ctx := context.Background()
	repo := gameRepo.NewMemoryRepository()
	deck := cards(
		entities.Ten, entities.Ten, entities.Nine, entities.Seven, // win
		entities.Ten, entities.Ten, entities.Seven, entities.Nine, // lose
		entities.Ace, entities.Ten, entities.King, entities.Seven, // blackjack
	)
	tt := newTestTable(t, 500, repo, deck...)

	tt.dealWithBet(t, 10)
	_, err := tt.game.Stand(ctx)
	require.NoError(t, err)

	_, err = tt.game.NewRound()
	require.NoError(t, err)
	_, err = tt.game.Deal(ctx)
	require.NoError(t, err)
	_, err = tt.game.Stand(ctx)
	require.NoError(t, err)

	_, err = tt.game.NewRound()
	require.NoError(t, err)
	state, err := tt.game.Deal(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(515), state.Bankroll)

	results, err := repo.GetSessionResults(ctx, "session-1", 0)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, entities.OutcomeWin, results[0].Outcome)
	assert.Equal(t, entities.OutcomeLose, results[1].Outcome)
	assert.Equal(t, entities.OutcomeBlackjack, results[2].Outcome)
	assert.Equal(t, state.RoundID, results[2].ID)

	stats, err := repo.GetSessionStatistics(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.RoundsPlayed)
	assert.Equal(t, int64(15), stats.NetProfit())
}
