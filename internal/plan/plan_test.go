package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValid(t *testing.T) {
	assert.True(t, Valid(Pro))
	assert.True(t, Valid(Team))
	assert.True(t, Valid(Enterprise))
	assert.False(t, Valid(Type("free")))
	assert.False(t, Valid(Type("")))
}

func TestPrefixFor(t *testing.T) {
	for plan, want := range map[Type]string{
		Pro:        "DPRO",
		Team:       "DTEAM",
		Enterprise: "DENT",
	} {
		prefix, err := PrefixFor(plan)
		require.NoError(t, err)
		assert.Equal(t, want, prefix)
	}

	_, err := PrefixFor(Type("free"))
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestMaxActivationsFor(t *testing.T) {
	got, err := MaxActivationsFor(Pro, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	// Seat count is ignored for pro.
	got, err = MaxActivationsFor(Pro, 50)
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	got, err = MaxActivationsFor(Team, 5)
	require.NoError(t, err)
	assert.Equal(t, 10, got)

	got, err = MaxActivationsFor(Team, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, got, "zero seats falls back to the team default of 5")

	got, err = MaxActivationsFor(Enterprise, 20)
	require.NoError(t, err)
	assert.Equal(t, 60, got)

	_, err = MaxActivationsFor(Type("free"), 1)
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestValidateSeatCount(t *testing.T) {
	got, err := ValidateSeatCount(Pro, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	got, err = ValidateSeatCount(Pro, 25)
	require.NoError(t, err)
	assert.Equal(t, 1, got, "pro has no seat concept")

	got, err = ValidateSeatCount(Team, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, got)

	got, err = ValidateSeatCount(Team, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	got, err = ValidateSeatCount(Enterprise, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, got)

	_, err = ValidateSeatCount(Team, 2)
	var seatErr *ErrInvalidSeatCount
	require.ErrorAs(t, err, &seatErr)
	assert.Equal(t, Team, seatErr.Plan)
	assert.Equal(t, 2, seatErr.Requested)
	assert.Equal(t, 3, seatErr.Min)
	assert.Equal(t, 100, seatErr.Max)

	_, err = ValidateSeatCount(Team, 101)
	assert.ErrorAs(t, err, &seatErr)

	_, err = ValidateSeatCount(Enterprise, 9)
	assert.ErrorAs(t, err, &seatErr)

	_, err = ValidateSeatCount(Type("free"), 5)
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestIsSeatBased(t *testing.T) {
	assert.False(t, IsSeatBased(Pro))
	assert.True(t, IsSeatBased(Team))
	assert.True(t, IsSeatBased(Enterprise))
}
