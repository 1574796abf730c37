package database

import (
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"trademark-backend/apperrors"
	"trademark-backend/models"
)

// InvoiceStore is the single source of truth for invoice existence and
// status. Every mutation is a small single-row update; concurrent writers
// are tolerated through MarkPaid's guarded update rather than locks.
type InvoiceStore struct {
	db *gorm.DB
}

func NewInvoiceStore(db *gorm.DB) *InvoiceStore {
	return &InvoiceStore{db: db}
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position ASC")
	})
}

// List returns all invoices, newest first.
func (s *InvoiceStore) List() ([]models.Invoice, error) {
	var invoices []models.Invoice
	if err := withItems(s.db).Order("created_at DESC").Find(&invoices).Error; err != nil {
		return nil, &apperrors.StorageError{Op: "list invoices", Err: err}
	}
	return invoices, nil
}

// FindByID loads one invoice with its items. A miss is ErrNotFound, not a
// storage failure.
func (s *InvoiceStore) FindByID(id string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := withItems(s.db).First(&invoice, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, &apperrors.StorageError{Op: "find invoice", Err: err}
	}
	return &invoice, nil
}

// Create persists a new invoice together with its items in one transaction.
func (s *InvoiceStore) Create(invoice *models.Invoice) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(invoice).Error
	})
	if err != nil {
		return &apperrors.StorageError{Op: "create invoice", Err: err}
	}
	return nil
}

// AttachPaymentDetails merges new external references into the record. It
// never touches status or items, and the intent id is write-once: an
// already-set id is left alone.
func (s *InvoiceStore) AttachPaymentDetails(id, intentID, linkURL string) (*models.Invoice, error) {
	existing, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if intentID != "" && existing.PaymentIntentID == "" {
		updates["payment_intent_id"] = intentID
	}
	if linkURL != "" {
		updates["payment_link_url"] = linkURL
	}
	if len(updates) == 0 {
		return existing, nil
	}

	if err := s.db.Model(&models.Invoice{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, &apperrors.StorageError{Op: "attach payment details", Err: err}
	}
	return s.FindByID(id)
}

// MarkPaid flips the invoice to paid. Idempotent: the guarded WHERE means
// two racing reconciliations produce exactly one logical transition, and
// re-marking an already-paid invoice succeeds without another update.
func (s *InvoiceStore) MarkPaid(id string) (*models.Invoice, error) {
	res := s.db.Model(&models.Invoice{}).
		Where("id = ? AND status <> ?", id, models.StatusPaid).
		Update("status", models.StatusPaid)
	if res.Error != nil {
		return nil, &apperrors.StorageError{Op: "mark invoice paid", Err: res.Error}
	}
	// Zero rows means already paid or missing; FindByID settles which.
	return s.FindByID(id)
}

// RecordStatusDetail stores the gateway's latest verbatim status next to
// the collapsed paid/unpaid field. Callers treat failures as best-effort.
func (s *InvoiceStore) RecordStatusDetail(id string, detail models.PaymentStatusDetailPayload) error {
	blob, err := json.Marshal(detail)
	if err != nil {
		return &apperrors.StorageError{Op: "encode status detail", Err: err}
	}
	res := s.db.Model(&models.Invoice{}).
		Where("id = ?", id).
		Update("payment_status_detail", blob)
	if res.Error != nil {
		return &apperrors.StorageError{Op: "record status detail", Err: res.Error}
	}
	return nil
}

// Delete removes the invoice row; items go with it via the FK cascade. The
// external payment intent is deliberately left as-is.
func (s *InvoiceStore) Delete(id string) error {
	res := s.db.Delete(&models.Invoice{}, "id = ?", id)
	if res.Error != nil {
		return &apperrors.StorageError{Op: "delete invoice", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
