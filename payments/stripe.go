package payments

import (
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"trademark-backend/apperrors"
)

// IntentMetadata is attached to every payment intent so a charge can be
// traced back to its invoice from the processor dashboard.
type IntentMetadata struct {
	InvoiceID   string
	ClientName  string
	ClientEmail string
}

// Intent is the result of opening a payment intent. ClientSecret is handed
// to the payer-facing widget to complete the charge.
type Intent struct {
	ID           string
	ClientSecret string
}

// IntentStatus is the processor's current view of an intent. Status is kept
// verbatim; only Succeeded() drives the stored invoice status.
type IntentStatus struct {
	Status       string
	Amount       int64
	Currency     string
	ClientSecret string
}

func (s *IntentStatus) Succeeded() bool {
	return s.Status == string(stripe.PaymentIntentStatusSucceeded)
}

// StripeGateway adapts the Stripe API. The underlying client is built
// lazily on first use and reused afterwards; a missing secret key is a
// configuration error, not a startup panic.
type StripeGateway struct {
	once sync.Once
	api  *client.API
	err  error
}

func NewStripeGateway() *StripeGateway {
	return &StripeGateway{}
}

func (g *StripeGateway) client() (*client.API, error) {
	g.once.Do(func() {
		key := strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY"))
		if key == "" {
			g.err = &apperrors.GatewayError{
				Op:     "init",
				Config: true,
				Err:    errors.New("STRIPE_SECRET_KEY is not set"),
			}
			return
		}
		api := &client.API{}
		api.Init(key, nil)
		g.api = api
	})
	return g.api, g.err
}

// OpenIntent requests authorization for amountCents in the given currency.
func (g *StripeGateway) OpenIntent(amountCents int64, currency string, meta IntentMetadata) (*Intent, error) {
	api, err := g.client()
	if err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if meta.ClientEmail != "" {
		params.ReceiptEmail = stripe.String(meta.ClientEmail)
	}
	params.AddMetadata("invoice_id", meta.InvoiceID)
	params.AddMetadata("client_name", meta.ClientName)
	params.AddMetadata("client_email", meta.ClientEmail)

	pi, err := api.PaymentIntents.New(params)
	if err != nil {
		return nil, wrapStripeErr("create intent", err)
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// GetIntent retrieves the current status of an intent by its reference.
func (g *StripeGateway) GetIntent(ref string) (*IntentStatus, error) {
	api, err := g.client()
	if err != nil {
		return nil, err
	}

	pi, err := api.PaymentIntents.Get(ref, nil)
	if err != nil {
		return nil, wrapStripeErr("retrieve intent", err)
	}
	return &IntentStatus{
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		ClientSecret: pi.ClientSecret,
	}, nil
}

func wrapStripeErr(op string, err error) error {
	var se *stripe.Error
	if errors.As(err, &se) && se.Type == stripe.ErrorType("authentication_error") {
		return &apperrors.GatewayError{Op: op, Config: true, Err: err}
	}
	return &apperrors.GatewayError{Op: op, Err: err}
}
