package models

import (
	"time"

	"gorm.io/datatypes"
)

// Stored invoice statuses. Anything other than Paid means "not yet paid";
// Overdue is derived at query time and never stored.
const (
	StatusPaid   = "Paid"
	StatusUnpaid = "Unpaid"
)

// BillFrom identifies the issuing business on an invoice.
type BillFrom struct {
	BusinessName string `json:"businessName"`
	Email        string `json:"email"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
}

// BillTo identifies the billed client. Email (preferred) or ClientName
// determine the derived client identity used by the clients/stats rollups.
type BillTo struct {
	ClientName string `json:"clientName"`
	Email      string `json:"email" gorm:"index"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
}

// InvoiceItem is one line on an invoice. Items live in a jsonb column;
// nothing queries them relationally.
type InvoiceItem struct {
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
	TaxPercent float64 `json:"taxPercent"`
	Total      float64 `json:"total"`
}

// Invoice is the stored invoice document. UserID is set at creation and
// never reassigned; every aggregate query filters on it first.
type Invoice struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	UserID        string     `json:"-" gorm:"not null;index"`
	InvoiceNumber string     `json:"invoiceNumber"`
	InvoiceDate   time.Time  `json:"invoiceDate" gorm:"index"`
	DueDate       *time.Time `json:"dueDate"`

	BillFrom BillFrom `json:"billFrom" gorm:"embedded;embeddedPrefix:bill_from_"`
	BillTo   BillTo   `json:"billTo" gorm:"embedded;embeddedPrefix:bill_to_"`

	Items datatypes.JSONSlice[InvoiceItem] `json:"items" gorm:"type:jsonb"`

	Notes        string `json:"notes"`
	PaymentTerms string `json:"paymentTerms"`
	Status       string `json:"status" gorm:"type:VARCHAR(20);default:Unpaid"`

	Subtotal float64 `json:"subtotal" gorm:"type:numeric(12,2)"`
	TaxTotal float64 `json:"taxTotal" gorm:"type:numeric(12,2)"`
	Total    float64 `json:"total" gorm:"type:numeric(12,2)"`

	ShareEnabled bool `json:"shareEnabled"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
