package services

import (
	"encoding/json"
	"errors"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"trademark-backend/apperrors"
	"trademark-backend/models"
	"trademark-backend/payments"
	"trademark-backend/pricing"
)

// ErrNoPaymentIntent means an invoice has no payment intent attached, so
// there is nothing for a payer widget to confirm against.
var ErrNoPaymentIntent = errors.New("payment intent not configured for this invoice")

// InvoiceStore is what the coordinator needs from durable storage.
type InvoiceStore interface {
	List() ([]models.Invoice, error)
	FindByID(id string) (*models.Invoice, error)
	Create(invoice *models.Invoice) error
	AttachPaymentDetails(id, intentID, linkURL string) (*models.Invoice, error)
	MarkPaid(id string) (*models.Invoice, error)
	RecordStatusDetail(id string, detail models.PaymentStatusDetailPayload) error
	Delete(id string) error
}

// PaymentGateway is what the coordinator needs from the payment processor.
type PaymentGateway interface {
	OpenIntent(amountCents int64, currency string, meta payments.IntentMetadata) (*payments.Intent, error)
	GetIntent(ref string) (*payments.IntentStatus, error)
}

// InvoiceService orchestrates invoice creation, reconciliation and
// deletion. It is the only component talking to both the store and the
// gateway.
type InvoiceService struct {
	store   InvoiceStore
	gateway PaymentGateway
}

func NewInvoiceService(store InvoiceStore, gateway PaymentGateway) *InvoiceService {
	return &InvoiceService{store: store, gateway: gateway}
}

// CreateInvoiceInput is the creation request as it arrives from the admin
// form. Quantity and unit price stay strings until the pricer parses them.
type CreateInvoiceInput struct {
	ClientName  string              `json:"client_name"`
	ClientEmail string              `json:"client_email"`
	Currency    string              `json:"currency"`
	Description string              `json:"description"`
	Items       []pricing.ItemInput `json:"items"`
}

// PaymentSession is what a payer-facing widget needs to complete payment.
type PaymentSession struct {
	Invoice      *models.Invoice `json:"invoice"`
	ClientSecret string          `json:"client_secret"`
	Status       string          `json:"status"`
	Amount       int64           `json:"amount"`
	Currency     string          `json:"currency"`
}

// Create runs validate -> price -> open intent -> persist. Any failing step
// aborts with nothing persisted; validation failures never reach the
// gateway or the store.
func (s *InvoiceService) Create(input CreateInvoiceInput) (*models.Invoice, error) {
	clientName := strings.TrimSpace(input.ClientName)
	if clientName == "" {
		return nil, apperrors.NewValidation("client_name", "client name is required")
	}
	clientEmail := strings.TrimSpace(input.ClientEmail)
	if clientEmail == "" {
		return nil, apperrors.NewValidation("client_email", "client email is required")
	}
	if _, err := mail.ParseAddress(clientEmail); err != nil {
		return nil, apperrors.NewValidation("client_email", "client email is not a valid address")
	}
	currency := strings.ToLower(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "usd"
	}
	if len(currency) != 3 {
		return nil, apperrors.NewValidation("currency", "currency must be a 3-letter code")
	}

	priced, err := pricing.Price(input.Items)
	if err != nil {
		return nil, err
	}

	// The id is generated before the intent so the intent metadata can
	// carry it for correlation.
	invoiceID := uuid.NewString()

	intent, err := s.gateway.OpenIntent(priced.TotalCents, currency, payments.IntentMetadata{
		InvoiceID:   invoiceID,
		ClientName:  clientName,
		ClientEmail: clientEmail,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	items := make([]models.InvoiceItem, len(priced.Items))
	for i, it := range priced.Items {
		items[i] = models.InvoiceItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Position:    i,
			CreatedAt:   now,
		}
	}

	invoice := &models.Invoice{
		ID:              invoiceID,
		ClientName:      clientName,
		ClientEmail:     clientEmail,
		Currency:        currency,
		Description:     strings.TrimSpace(input.Description),
		Amount:          priced.Amount,
		Status:          models.StatusUnpaid,
		Items:           items,
		PaymentIntentID: intent.ID,
	}

	if err := s.store.Create(invoice); err != nil {
		// The intent already exists at the processor with no invoice
		// behind it. There is no compensating cancel; log the reference
		// so an operator can void it by hand.
		log.Printf("orphaned payment intent %s: invoice %s was not persisted: %v", intent.ID, invoiceID, err)
		return nil, err
	}

	return invoice, nil
}

// List returns all invoices, newest first. No reconciliation happens here;
// a list view must not fan out one gateway call per row.
func (s *InvoiceService) List() ([]models.Invoice, error) {
	return s.store.List()
}

// Get loads an invoice and reconciles its status against the gateway.
// Reconciliation is best-effort: a gateway failure is logged and the stored
// state returned, so viewing an invoice never hard-fails on a hiccup.
func (s *InvoiceService) Get(id string) (*models.Invoice, error) {
	invoice, err := s.store.FindByID(id)
	if err != nil {
		return nil, err
	}
	if invoice.PaymentIntentID == "" {
		return invoice, nil
	}

	status, err := s.gateway.GetIntent(invoice.PaymentIntentID)
	if err != nil {
		log.Printf("reconciliation skipped for invoice %s: %v", id, err)
		return invoice, nil
	}

	return s.applyStatus(invoice, status)
}

// PaymentSession reconciles and returns the detail a payer widget needs.
// Unlike Get, a gateway failure here is fatal: there is no session to hand
// out without the processor.
func (s *InvoiceService) PaymentSession(id string) (*PaymentSession, error) {
	invoice, err := s.store.FindByID(id)
	if err != nil {
		return nil, err
	}
	if invoice.PaymentIntentID == "" {
		return nil, ErrNoPaymentIntent
	}

	status, err := s.gateway.GetIntent(invoice.PaymentIntentID)
	if err != nil {
		return nil, err
	}

	invoice, err = s.applyStatus(invoice, status)
	if err != nil {
		return nil, err
	}

	return &PaymentSession{
		Invoice:      invoice,
		ClientSecret: status.ClientSecret,
		Status:       status.Status,
		Amount:       status.Amount,
		Currency:     status.Currency,
	}, nil
}

// AttachPaymentLink merges a hosted payment-link reference into the
// record. Status and items are untouched; the intent id stays write-once.
func (s *InvoiceService) AttachPaymentLink(id, linkURL string) (*models.Invoice, error) {
	linkURL = strings.TrimSpace(linkURL)
	if linkURL == "" {
		return nil, apperrors.NewValidation("payment_link_url", "payment link is required")
	}
	return s.store.AttachPaymentDetails(id, "", linkURL)
}

// Delete removes the invoice record. The external payment intent is left
// untouched; no gateway call is made.
func (s *InvoiceService) Delete(id string) error {
	return s.store.Delete(id)
}

// applyStatus persists the gateway's verbatim status detail and flips the
// invoice to paid when (and only when) the gateway reports success. Every
// other external state leaves the stored status alone.
func (s *InvoiceService) applyStatus(invoice *models.Invoice, status *payments.IntentStatus) (*models.Invoice, error) {
	detail := models.PaymentStatusDetailPayload{
		Status:     status.Status,
		Amount:     status.Amount,
		Currency:   status.Currency,
		ObservedAt: time.Now().UTC(),
	}
	if err := s.store.RecordStatusDetail(invoice.ID, detail); err != nil {
		log.Printf("could not record status detail for invoice %s: %v", invoice.ID, err)
	} else if blob, mErr := json.Marshal(detail); mErr == nil {
		invoice.PaymentStatusDetail = datatypes.JSON(blob)
	}

	if status.Succeeded() && !invoice.Paid() {
		return s.store.MarkPaid(invoice.ID)
	}
	return invoice, nil
}
