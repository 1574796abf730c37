package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusUnpaid = "unpaid"
	StatusPaid   = "paid"
)

// Invoice is a billing record for one client. Status only ever moves
// unpaid -> paid; the payment intent reference is set at creation and
// never reassigned.
type Invoice struct {
	ID          string `json:"id" gorm:"primaryKey;size:64"`
	ClientName  string `json:"client_name" gorm:"not null"`
	ClientEmail string `json:"client_email" gorm:"not null"`
	Currency    string `json:"currency" gorm:"size:3;not null;default:usd"`
	Description string `json:"description"`

	Amount float64 `json:"amount" gorm:"type:numeric(12,2)"`
	Status string  `json:"status" gorm:"size:10;not null;default:unpaid;index"`

	Items []InvoiceItem `json:"items" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`

	// External payment references. The intent id is write-once.
	PaymentIntentID string `json:"payment_intent_id,omitempty"`
	PaymentLinkURL  string `json:"payment_link_url,omitempty"`

	// Last status reported by the gateway, kept verbatim so the binary
	// paid/unpaid collapse loses no information for display or debugging.
	PaymentStatusDetail datatypes.JSON `json:"payment_status_detail,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (inv *Invoice) BeforeCreate(tx *gorm.DB) (err error) {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if inv.Currency == "" {
		inv.Currency = "usd"
	}
	if inv.Status == "" {
		inv.Status = StatusUnpaid
	}
	return
}

func (inv *Invoice) Paid() bool { return inv.Status == StatusPaid }

// InvoiceItem is one billable line. Items are written once at invoice
// creation and never mutated afterwards; order is preserved for display.
type InvoiceItem struct {
	ID          string    `json:"id" gorm:"primaryKey;size:64"`
	InvoiceID   string    `json:"-" gorm:"size:64;index"`
	Description string    `json:"description" gorm:"not null"`
	Quantity    float64   `json:"quantity" gorm:"type:numeric(12,4)"`
	UnitPrice   float64   `json:"unit_price" gorm:"type:numeric(12,2)"`
	Position    int       `json:"-" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at"`
}

func (item *InvoiceItem) BeforeCreate(tx *gorm.DB) (err error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	return
}

// PaymentStatusDetailPayload is what gets serialized into
// Invoice.PaymentStatusDetail after each reconciliation.
type PaymentStatusDetailPayload struct {
	Status     string    `json:"status"`
	Amount     int64     `json:"amount"`
	Currency   string    `json:"currency"`
	ObservedAt time.Time `json:"observed_at"`
}
