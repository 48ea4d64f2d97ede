package types_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fadedpez/tucojack/internal/types"
	"github.com/fadedpez/tucojack/pkg/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyShoeKeepsSentinel(t *testing.T) {
	err := types.WrapError(types.ErrEmptyShoe, "shoe exhausted mid-round", entities.ErrEmptyShoe)

	assert.ErrorIs(t, err, entities.ErrEmptyShoe)
	assert.True(t, types.IsGameError(err, types.ErrEmptyShoe))
	assert.Equal(t, "EMPTY_SHOE: shoe exhausted mid-round (shoe is empty)", err.Error())
	assert.Equal(t, "shoe exhausted mid-round", types.UserMessage(err))
}

func TestBankrollEmptyMessage(t *testing.T) {
	err := types.NewGameError(types.ErrBankrollEmpty, "Out of money! Game over.")

	assert.Nil(t, err.Unwrap())
	assert.Equal(t, "BANKROLL_EMPTY: Out of money! Game over.", err.Error())
	assert.Equal(t, "Out of money! Game over.", types.UserMessage(err))
	assert.False(t, types.IsGameError(err, types.ErrInvalidBet))
}

func TestCodeSurvivesCallerWrapping(t *testing.T) {
	bet := types.NewGameError(types.ErrInvalidBet, "Bet of $600 exceeds bankroll of $500")
	dispatched := fmt.Errorf("dispatch deal: %w", bet)

	var target *types.GameError
	require.True(t, types.As(dispatched, &target))
	assert.Same(t, bet, target)
	assert.True(t, types.IsGameError(dispatched, types.ErrInvalidBet))
	assert.Equal(t, "Bet of $600 exceeds bankroll of $500", types.UserMessage(dispatched))
}

func TestIsGameErrorCodes(t *testing.T) {
	illegal := types.NewGameError(types.ErrIllegalTransition, "Cannot hit while AWAITING_BET")
	ledger := types.WrapError(types.ErrDatabaseError, "could not record round", errors.New("database is locked"))

	testCases := []struct {
		name     string
		err      error
		code     types.ErrorCode
		expected bool
	}{
		{"illegal hit", illegal, types.ErrIllegalTransition, true},
		{"illegal hit is not a bet error", illegal, types.ErrInvalidBet, false},
		{"ledger failure", ledger, types.ErrDatabaseError, true},
		{"plain error", errors.New("database is locked"), types.ErrDatabaseError, false},
		{"nil", nil, types.ErrIllegalTransition, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, types.IsGameError(tc.err, tc.code))
		})
	}
}

func TestAsRejectsNilTarget(t *testing.T) {
	assert.False(t, types.As(types.NewGameError(types.ErrInternalError, "boom"), nil))
}

func TestUserMessageHidesInternals(t *testing.T) {
	assert.Equal(t, "An unexpected error occurred", types.UserMessage(errors.New("sql: connection refused")))
}
