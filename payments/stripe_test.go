package payments

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trademark-backend/apperrors"
)

func TestIntentStatusSucceeded(t *testing.T) {
	assert.True(t, (&IntentStatus{Status: "succeeded"}).Succeeded())

	// Everything that is not succeeded collapses to unpaid.
	for _, status := range []string{
		"processing",
		"requires_payment_method",
		"requires_confirmation",
		"requires_action",
		"canceled",
		"",
	} {
		assert.False(t, (&IntentStatus{Status: status}).Succeeded(), status)
	}
}

func TestMissingSecretKeyIsConfigError(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "")

	g := NewStripeGateway()
	_, err := g.OpenIntent(19900, "usd", IntentMetadata{InvoiceID: "inv-1"})

	var gErr *apperrors.GatewayError
	require.ErrorAs(t, err, &gErr)
	assert.True(t, gErr.Config, "missing credential is a configuration problem")

	// Subsequent calls surface the same cached error, no panic at startup.
	_, err = g.GetIntent("pi_123")
	require.ErrorAs(t, err, &gErr)
	assert.True(t, gErr.Config)
}

func TestWrapStripeErrKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := wrapStripeErr("retrieve intent", cause)

	var gErr *apperrors.GatewayError
	require.ErrorAs(t, err, &gErr)
	assert.False(t, gErr.Config)
	assert.ErrorIs(t, err, cause)
}
