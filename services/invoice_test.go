package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trademark-backend/apperrors"
	"trademark-backend/models"
	"trademark-backend/payments"
	"trademark-backend/pricing"
)

// fakeStore is an in-memory InvoiceStore that counts calls so tests can
// assert which collaborators a flow touched.
type fakeStore struct {
	mu       sync.Mutex
	invoices map[string]*models.Invoice

	createCalls     int
	markPaidCalls   int
	deleteCalls     int
	detailCalls     int
	paidTransitions int

	failCreate error
	failFind   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{invoices: map[string]*models.Invoice{}}
}

func (f *fakeStore) List() ([]models.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Invoice, 0, len(f.invoices))
	for _, inv := range f.invoices {
		out = append(out, *inv)
	}
	return out, nil
}

func (f *fakeStore) FindByID(id string) (*models.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFind != nil {
		return nil, f.failFind
	}
	inv, ok := f.invoices[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeStore) Create(invoice *models.Invoice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.failCreate != nil {
		return f.failCreate
	}
	cp := *invoice
	f.invoices[invoice.ID] = &cp
	return nil
}

func (f *fakeStore) AttachPaymentDetails(id, intentID, linkURL string) (*models.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invoices[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if intentID != "" && inv.PaymentIntentID == "" {
		inv.PaymentIntentID = intentID
	}
	if linkURL != "" {
		inv.PaymentLinkURL = linkURL
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeStore) MarkPaid(id string) (*models.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markPaidCalls++
	inv, ok := f.invoices[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if inv.Status != models.StatusPaid {
		inv.Status = models.StatusPaid
		f.paidTransitions++
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeStore) RecordStatusDetail(id string, detail models.PaymentStatusDetailPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls++
	return nil
}

func (f *fakeStore) Delete(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if _, ok := f.invoices[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.invoices, id)
	return nil
}

// fakeGateway counts calls and reports a fixed status.
type fakeGateway struct {
	mu        sync.Mutex
	openCalls int
	getCalls  int

	status   string
	failOpen error
	failGet  error
}

func (f *fakeGateway) OpenIntent(amountCents int64, currency string, meta payments.IntentMetadata) (*payments.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openCalls++
	if f.failOpen != nil {
		return nil, f.failOpen
	}
	return &payments.Intent{ID: "pi_test_123", ClientSecret: "pi_test_123_secret"}, nil
}

func (f *fakeGateway) GetIntent(ref string) (*payments.IntentStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.failGet != nil {
		return nil, f.failGet
	}
	return &payments.IntentStatus{
		Status:       f.status,
		Amount:       19900,
		Currency:     "usd",
		ClientSecret: "pi_test_123_secret",
	}, nil
}

func validInput() CreateInvoiceInput {
	return CreateInvoiceInput{
		ClientName:  "Jane Doe",
		ClientEmail: "jane@x.com",
		Currency:    "usd",
		Items: []pricing.ItemInput{
			{Description: "Filing", Quantity: "1", UnitPrice: "199.00"},
		},
	}
}

func TestCreateEndToEnd(t *testing.T) {
	store := newFakeStore()
	gateway := &fakeGateway{status: "requires_payment_method"}
	svc := NewInvoiceService(store, gateway)

	invoice, err := svc.Create(validInput())
	require.NoError(t, err)

	assert.Equal(t, 199.00, invoice.Amount)
	assert.Equal(t, models.StatusUnpaid, invoice.Status)
	assert.Equal(t, "usd", invoice.Currency)
	assert.NotEmpty(t, invoice.ID)
	assert.NotEmpty(t, invoice.PaymentIntentID)
	require.Len(t, invoice.Items, 1)
	assert.Equal(t, "Filing", invoice.Items[0].Description)

	assert.Equal(t, 1, gateway.openCalls)
	assert.Equal(t, 1, store.createCalls)

	stored, err := store.FindByID(invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.ID, stored.ID)
}

func TestCreateDefaultsCurrency(t *testing.T) {
	svc := NewInvoiceService(newFakeStore(), &fakeGateway{})
	input := validInput()
	input.Currency = ""

	invoice, err := svc.Create(input)
	require.NoError(t, err)
	assert.Equal(t, "usd", invoice.Currency)
}

func TestCreateValidationMakesNoCalls(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(*CreateInvoiceInput)
		field string
	}{
		{"missing name", func(in *CreateInvoiceInput) { in.ClientName = "  " }, "client_name"},
		{"missing email", func(in *CreateInvoiceInput) { in.ClientEmail = "" }, "client_email"},
		{"bad email", func(in *CreateInvoiceInput) { in.ClientEmail = "not-an-address" }, "client_email"},
		{"bad currency", func(in *CreateInvoiceInput) { in.Currency = "dollars" }, "currency"},
		{"no items", func(in *CreateInvoiceInput) { in.Items = nil }, "items"},
		{"zero quantity", func(in *CreateInvoiceInput) {
			in.Items = []pricing.ItemInput{{Description: "Filing", Quantity: "0", UnitPrice: "10"}}
		}, "items"},
		{"non-numeric quantity", func(in *CreateInvoiceInput) {
			in.Items = []pricing.ItemInput{{Description: "Filing", Quantity: "x", UnitPrice: "10"}}
		}, "items"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			gateway := &fakeGateway{}
			svc := NewInvoiceService(store, gateway)

			input := validInput()
			tc.mut(&input)

			_, err := svc.Create(input)
			var vErr *apperrors.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
			assert.Zero(t, gateway.openCalls, "validation failures must not reach the gateway")
			assert.Zero(t, store.createCalls, "validation failures must not reach the store")
		})
	}
}

func TestCreateGatewayFailureAbortsBeforePersisting(t *testing.T) {
	store := newFakeStore()
	gateway := &fakeGateway{failOpen: &apperrors.GatewayError{Op: "create intent", Err: errors.New("down")}}
	svc := NewInvoiceService(store, gateway)

	_, err := svc.Create(validInput())
	var gErr *apperrors.GatewayError
	require.ErrorAs(t, err, &gErr)
	assert.Zero(t, store.createCalls)
}

func TestCreateStorageFailurePersistsNothing(t *testing.T) {
	store := newFakeStore()
	store.failCreate = &apperrors.StorageError{Op: "create invoice", Err: errors.New("connection reset")}
	gateway := &fakeGateway{}
	svc := NewInvoiceService(store, gateway)

	_, err := svc.Create(validInput())
	var sErr *apperrors.StorageError
	require.ErrorAs(t, err, &sErr)
	// The intent was opened before persistence failed: the documented
	// orphaned-intent window. Nothing must be stored.
	assert.Equal(t, 1, gateway.openCalls)
	assert.Empty(t, store.invoices)
}

func seedUnpaid(store *fakeStore, intentID string) *models.Invoice {
	inv := &models.Invoice{
		ID:              "inv-1",
		ClientName:      "Jane Doe",
		ClientEmail:     "jane@x.com",
		Currency:        "usd",
		Amount:          199.00,
		Status:          models.StatusUnpaid,
		PaymentIntentID: intentID,
	}
	store.invoices[inv.ID] = inv
	return inv
}

func TestGetReconcilesSucceededToPaid(t *testing.T) {
	store := newFakeStore()
	seedUnpaid(store, "pi_test_123")
	gateway := &fakeGateway{status: "succeeded"}
	svc := NewInvoiceService(store, gateway)

	invoice, err := svc.Get("inv-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, invoice.Status)
	assert.Equal(t, 1, store.paidTransitions)

	// A second reconciliation is a no-op on status.
	invoice, err = svc.Get("inv-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, invoice.Status)
	assert.Equal(t, 1, store.paidTransitions, "paid is monotonic, only one logical transition")
}

func TestGetConcurrentReconciliationsOneTransition(t *testing.T) {
	store := newFakeStore()
	seedUnpaid(store, "pi_test_123")
	gateway := &fakeGateway{status: "succeeded"}
	svc := NewInvoiceService(store, gateway)

	var wg sync.WaitGroup
	results := make([]*models.Invoice, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			inv, err := svc.Get("inv-1")
			assert.NoError(t, err)
			results[i] = inv
		}(i)
	}
	wg.Wait()

	for _, inv := range results {
		require.NotNil(t, inv)
		assert.Equal(t, models.StatusPaid, inv.Status)
	}
	assert.Equal(t, 1, store.paidTransitions)
}

func TestGetProcessingLeavesUnpaid(t *testing.T) {
	store := newFakeStore()
	seedUnpaid(store, "pi_test_123")
	gateway := &fakeGateway{status: "processing"}
	svc := NewInvoiceService(store, gateway)

	invoice, err := svc.Get("inv-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnpaid, invoice.Status)
	assert.Zero(t, store.markPaidCalls)
	assert.Equal(t, 1, store.detailCalls, "full external status still gets recorded")
}

func TestGetGatewayErrorReturnsStoredState(t *testing.T) {
	store := newFakeStore()
	seedUnpaid(store, "pi_test_123")
	gateway := &fakeGateway{failGet: &apperrors.GatewayError{Op: "retrieve intent", Err: errors.New("timeout")}}
	svc := NewInvoiceService(store, gateway)

	invoice, err := svc.Get("inv-1")
	require.NoError(t, err, "reconciliation is best-effort, reads never fail on it")
	assert.Equal(t, models.StatusUnpaid, invoice.Status)
}

func TestGetWithoutIntentSkipsGateway(t *testing.T) {
	store := newFakeStore()
	seedUnpaid(store, "")
	gateway := &fakeGateway{status: "succeeded"}
	svc := NewInvoiceService(store, gateway)

	invoice, err := svc.Get("inv-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnpaid, invoice.Status)
	assert.Zero(t, gateway.getCalls)
}

func TestGetUnknownInvoiceIsNotFound(t *testing.T) {
	svc := NewInvoiceService(newFakeStore(), &fakeGateway{})
	_, err := svc.Get("missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPaymentSession(t *testing.T) {
	store := newFakeStore()
	seedUnpaid(store, "pi_test_123")
	gateway := &fakeGateway{status: "succeeded"}
	svc := NewInvoiceService(store, gateway)

	session, err := svc.PaymentSession("inv-1")
	require.NoError(t, err)
	assert.Equal(t, "pi_test_123_secret", session.ClientSecret)
	assert.Equal(t, "succeeded", session.Status)
	assert.Equal(t, int64(19900), session.Amount)
	assert.Equal(t, "usd", session.Currency)
	assert.Equal(t, models.StatusPaid, session.Invoice.Status)
}

func TestPaymentSessionWithoutIntent(t *testing.T) {
	store := newFakeStore()
	seedUnpaid(store, "")
	svc := NewInvoiceService(store, &fakeGateway{})

	_, err := svc.PaymentSession("inv-1")
	assert.ErrorIs(t, err, ErrNoPaymentIntent)
}

func TestPaymentSessionGatewayErrorPropagates(t *testing.T) {
	store := newFakeStore()
	seedUnpaid(store, "pi_test_123")
	gateway := &fakeGateway{failGet: &apperrors.GatewayError{Op: "retrieve intent", Err: errors.New("down")}}
	svc := NewInvoiceService(store, gateway)

	_, err := svc.PaymentSession("inv-1")
	var gErr *apperrors.GatewayError
	assert.ErrorAs(t, err, &gErr)
}

func TestDeleteMakesNoGatewayCall(t *testing.T) {
	store := newFakeStore()
	seedUnpaid(store, "pi_test_123")
	gateway := &fakeGateway{}
	svc := NewInvoiceService(store, gateway)

	require.NoError(t, svc.Delete("inv-1"))
	assert.Zero(t, gateway.openCalls)
	assert.Zero(t, gateway.getCalls)

	_, err := store.FindByID("inv-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteUnknownInvoiceIsNotFound(t *testing.T) {
	svc := NewInvoiceService(newFakeStore(), &fakeGateway{})
	assert.ErrorIs(t, svc.Delete("missing"), apperrors.ErrNotFound)
}

func TestAttachPaymentLink(t *testing.T) {
	store := newFakeStore()
	seedUnpaid(store, "pi_test_123")
	svc := NewInvoiceService(store, &fakeGateway{})

	invoice, err := svc.AttachPaymentLink("inv-1", "https://pay.example.com/inv-1")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/inv-1", invoice.PaymentLinkURL)
	assert.Equal(t, "pi_test_123", invoice.PaymentIntentID, "intent id stays write-once")
	assert.Equal(t, models.StatusUnpaid, invoice.Status)

	_, err = svc.AttachPaymentLink("inv-1", "   ")
	var vErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &vErr)
}
