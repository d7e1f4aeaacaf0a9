package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionEffect_ForwardFlowHasNoStockEffect(t *testing.T) {
	steps := []struct {
		from, to Status
	}{
		{StatusPending, StatusProcessing},
		{StatusProcessing, StatusShipping},
		{StatusShipping, StatusCompleted},
		{StatusProcessing, StatusPending},
		{StatusPending, StatusCompleted},
	}

	for _, step := range steps {
		effect, err := TransitionEffect(step.from, step.to)
		require.NoError(t, err, "%s → %s", step.from, step.to)
		assert.Equal(t, EffectNone, effect, "%s → %s", step.from, step.to)
	}
}

func TestTransitionEffect_CancellationRestoresStock(t *testing.T) {
	for _, from := range []Status{StatusPending, StatusProcessing, StatusShipping, StatusCompleted} {
		effect, err := TransitionEffect(from, StatusCancelled)
		require.NoError(t, err, "%s → CANCELLED", from)
		assert.Equal(t, EffectRestore, effect, "%s → CANCELLED", from)
	}
}

func TestTransitionEffect_UncancelDeductsStock(t *testing.T) {
	for _, to := range []Status{StatusPending, StatusProcessing, StatusShipping, StatusCompleted} {
		effect, err := TransitionEffect(StatusCancelled, to)
		require.NoError(t, err, "CANCELLED → %s", to)
		assert.Equal(t, EffectDeduct, effect, "CANCELLED → %s", to)
	}
}

func TestTransitionEffect_RejectsNoop(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusProcessing, StatusShipping, StatusCompleted, StatusCancelled} {
		_, err := TransitionEffect(s, s)
		assert.Error(t, err, "%s → %s", s, s)
	}
}

func TestTransitionEffect_RejectsUnknownStatus(t *testing.T) {
	_, err := TransitionEffect(StatusPending, Status("REFUNDED"))
	require.Error(t, err)

	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, Status("REFUNDED"), invalid.To)
}

func TestCanDelete(t *testing.T) {
	assert.True(t, StatusCompleted.CanDelete())
	assert.True(t, StatusCancelled.CanDelete())
	assert.False(t, StatusPending.CanDelete())
	assert.False(t, StatusProcessing.CanDelete())
	assert.False(t, StatusShipping.CanDelete())
}
