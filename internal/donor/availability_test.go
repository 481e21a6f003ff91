package donor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateFor(t *testing.T) {
	assert.Equal(t, State{Status: StatusAvailableNow, Available: true}, StateFor(StatusAvailableNow))
	assert.Equal(t, State{Status: StatusEmergencyOnly, Available: true}, StateFor(StatusEmergencyOnly))
	assert.Equal(t, State{Status: StatusNotAvailable, Available: false}, StateFor(StatusNotAvailable))
}

func TestTransition_BlockedWhileIneligible(t *testing.T) {
	ineligible := Evaluate(Answers{})

	for _, to := range []Status{StatusAvailableNow, StatusEmergencyOnly} {
		st, err := Transition(to, ineligible)
		assert.ErrorIs(t, err, ErrAvailabilityBlocked, to)
		assert.Equal(t, State{}, st)
	}

	st, err := Transition(StatusNotAvailable, ineligible)
	require.NoError(t, err)
	assert.False(t, st.Available)
}

func TestTransition_AllowedWhenEligible(t *testing.T) {
	eligible := Evaluate(AllPassing())
	for _, to := range Statuses {
		st, err := Transition(to, eligible)
		require.NoError(t, err)
		assert.Equal(t, StateFor(to), st)
	}
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("emergency_only")
	require.NoError(t, err)
	assert.Equal(t, StatusEmergencyOnly, s)

	_, err = ParseStatus("")
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, MsgSelectAvailability, fe[FieldAvailabilityStatus])

	_, err = ParseStatus("sometimes")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestToggleStatus(t *testing.T) {
	assert.Equal(t, StatusAvailableNow, ToggleStatus(true))
	assert.Equal(t, StatusNotAvailable, ToggleStatus(false))
	assert.False(t, StateFor(ToggleStatus(false)).Available)
}

func TestTransition_BlockedErrorCarriesReasons(t *testing.T) {
	a := AllPassing()
	a[RuleRecentFever] = false

	_, err := Transition(StatusEmergencyOnly, Evaluate(a))
	var blocked *BlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, []string{"You must be free from fever/infection/COVID for 14 days"}, blocked.Reasons)
	assert.Equal(t, ErrAvailabilityBlocked.Error(), err.Error())
}
