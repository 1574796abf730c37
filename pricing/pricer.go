package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"trademark-backend/apperrors"
	"trademark-backend/utils"
)

// ItemInput is a raw line item as submitted by the admin form. Quantity and
// unit price arrive as strings and are only trusted after parsing.
type ItemInput struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
}

// Item is a validated line item with parsed numbers.
type Item struct {
	Description string
	Quantity    float64
	UnitPrice   float64
}

// Result is the priced outcome of a validated item list. TotalCents is the
// authoritative figure: it is what the payment gateway will be asked to
// charge, and Amount is derived from it, never the other way around.
type Result struct {
	Items      []Item
	TotalCents int64
	Amount     float64
}

var hundred = decimal.NewFromInt(100)

// Price validates raw items in order and computes the invoice total in
// integer cents. Each line rounds quantity*unitPrice to whole cents before
// summing, so cross-item floating point drift cannot occur. The first
// invalid item aborts the whole operation.
func Price(inputs []ItemInput) (*Result, error) {
	if len(inputs) == 0 {
		return nil, apperrors.NewValidation("items", "add at least one line item")
	}

	items := make([]Item, 0, len(inputs))
	totalCents := decimal.Zero

	for i, in := range inputs {
		desc := strings.TrimSpace(in.Description)
		if desc == "" {
			return nil, apperrors.NewValidation("items", "line item %d needs a description", i+1)
		}

		qty, err := decimal.NewFromString(strings.TrimSpace(in.Quantity))
		if err != nil || !qty.IsPositive() {
			return nil, apperrors.NewValidation("items", "quantity of %q must be a positive number", desc)
		}

		price, err := decimal.NewFromString(strings.TrimSpace(in.UnitPrice))
		if err != nil || !price.IsPositive() {
			return nil, apperrors.NewValidation("items", "unit price of %q must be a positive number", desc)
		}

		// cents_i = round(quantity * unitPrice * 100)
		cents := qty.Mul(price).Mul(hundred).Round(0)
		totalCents = totalCents.Add(cents)

		qf, _ := qty.Float64()
		pf, _ := price.Float64()
		items = append(items, Item{Description: desc, Quantity: qf, UnitPrice: pf})
	}

	if !totalCents.IsPositive() || !totalCents.IsInteger() {
		return nil, apperrors.NewValidation("items", "unable to calculate invoice total, check the line items")
	}

	cents := totalCents.IntPart()
	return &Result{
		Items:      items,
		TotalCents: cents,
		Amount:     utils.CentsToAmount(cents),
	}, nil
}
