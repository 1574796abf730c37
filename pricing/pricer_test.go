package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trademark-backend/apperrors"
)

func TestPriceRoundsPerLineBeforeSumming(t *testing.T) {
	// round(2*10.005*100) + round(1*0.01*100) = 2005 + 1 = 2006
	res, err := Price([]ItemInput{
		{Description: "Filing", Quantity: "2", UnitPrice: "10.005"},
		{Description: "Fee", Quantity: "1", UnitPrice: "0.01"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2006), res.TotalCents)
	assert.Equal(t, 20.06, res.Amount)
}

func TestPriceSingleItem(t *testing.T) {
	res, err := Price([]ItemInput{
		{Description: "Trademark filing", Quantity: "1", UnitPrice: "199.00"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(19900), res.TotalCents)
	assert.Equal(t, 199.00, res.Amount)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Trademark filing", res.Items[0].Description)
	assert.Equal(t, 1.0, res.Items[0].Quantity)
	assert.Equal(t, 199.0, res.Items[0].UnitPrice)
}

func TestPriceSubCentLineRoundsToWholeCents(t *testing.T) {
	// 3 * 0.333 = 0.999 -> round(99.9) = 100 cents
	res, err := Price([]ItemInput{
		{Description: "Search", Quantity: "3", UnitPrice: "0.333"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), res.TotalCents)
	assert.Equal(t, 1.00, res.Amount)
}

func TestPriceTrimsDescriptions(t *testing.T) {
	res, err := Price([]ItemInput{
		{Description: "  Filing  ", Quantity: " 1 ", UnitPrice: " 50 "},
	})
	require.NoError(t, err)
	assert.Equal(t, "Filing", res.Items[0].Description)
	assert.Equal(t, int64(5000), res.TotalCents)
}

func TestPriceRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name  string
		items []ItemInput
	}{
		{"no items", nil},
		{"empty list", []ItemInput{}},
		{"blank description", []ItemInput{{Description: "   ", Quantity: "1", UnitPrice: "10"}}},
		{"zero quantity", []ItemInput{{Description: "Filing", Quantity: "0", UnitPrice: "10"}}},
		{"negative quantity", []ItemInput{{Description: "Filing", Quantity: "-2", UnitPrice: "10"}}},
		{"non-numeric quantity", []ItemInput{{Description: "Filing", Quantity: "two", UnitPrice: "10"}}},
		{"zero price", []ItemInput{{Description: "Filing", Quantity: "1", UnitPrice: "0"}}},
		{"negative price", []ItemInput{{Description: "Filing", Quantity: "1", UnitPrice: "-5"}}},
		{"non-numeric price", []ItemInput{{Description: "Filing", Quantity: "1", UnitPrice: "ten"}}},
		{"empty quantity", []ItemInput{{Description: "Filing", Quantity: "", UnitPrice: "10"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Price(tc.items)
			assert.Nil(t, res)
			var vErr *apperrors.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, "items", vErr.Field)
		})
	}
}

func TestPriceFailsFastOnFirstInvalidItem(t *testing.T) {
	_, err := Price([]ItemInput{
		{Description: "Valid", Quantity: "1", UnitPrice: "10"},
		{Description: "", Quantity: "1", UnitPrice: "10"},
		{Description: "Also broken", Quantity: "-1", UnitPrice: "10"},
	})
	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Message, "line item 2")
}
