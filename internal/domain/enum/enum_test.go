package enum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStore(t *testing.T) {
	s, err := ParseStore(" Garches ")
	require.NoError(t, err)
	assert.Equal(t, StoreGarches, s)
	assert.Equal(t, "Ville d'Avray", StoreVilleAvray.DisplayName())

	_, err = ParseStore("paris")
	assert.Error(t, err)
}

func TestParsePaymentMethod(t *testing.T) {
	p, err := ParsePaymentMethod("INSTALLMENT")
	require.NoError(t, err)
	assert.Equal(t, PaymentInstallment, p)

	_, err = ParsePaymentMethod("bitcoin")
	assert.Error(t, err)
}

func TestCheckoutOutcome_JSON(t *testing.T) {
	data, err := json.Marshal(OutcomePartialSuccess)
	require.NoError(t, err)
	assert.JSONEq(t, `"PartialSuccess"`, string(data))

	var o CheckoutOutcome
	require.NoError(t, json.Unmarshal([]byte(`"Failure"`), &o))
	assert.Equal(t, OutcomeFailure, o)
	require.NoError(t, json.Unmarshal([]byte(`1`), &o))
	assert.Equal(t, OutcomePartialSuccess, o)

	assert.True(t, OutcomePartialSuccess.OrderCreated())
	assert.False(t, OutcomeFailure.OrderCreated())
}

func TestCheckoutState_IsTerminal(t *testing.T) {
	assert.True(t, CheckoutDone.IsTerminal())
	assert.True(t, CheckoutFailed.IsTerminal())
	assert.False(t, CheckoutCreatingOrder.IsTerminal())
}
