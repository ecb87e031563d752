package utils

import (
	"time"

	"github.com/sanchawla17/Invosight/models"
)

// paymentTermDays maps the supported payment-terms labels to day offsets.
var paymentTermDays = map[string]int{
	"Net 15":         15,
	"Net 30":         30,
	"Net 60":         60,
	"Due on receipt": 0,
}

// CalculateDueDate derives a due date from the invoice date and payment
// terms. Unknown terms (or a zero invoice date) yield nil, meaning the
// invoice is never considered due.
func CalculateDueDate(invoiceDate time.Time, paymentTerms string) *time.Time {
	if invoiceDate.IsZero() {
		return nil
	}
	days, ok := paymentTermDays[paymentTerms]
	if !ok {
		return nil
	}
	due := invoiceDate.AddDate(0, 0, days)
	return &due
}

// CalculateTotals sums line items into subtotal, tax total and grand total.
// Per-item totals are filled in as a side effect so stored items stay
// consistent with the invoice header.
func CalculateTotals(items []models.InvoiceItem) (subtotal, taxTotal, total float64) {
	for i := range items {
		line := items[i].UnitPrice * items[i].Quantity
		tax := line * items[i].TaxPercent / 100
		subtotal += line
		taxTotal += tax
		items[i].Total = Round2(line + tax)
	}
	subtotal = Round2(subtotal)
	taxTotal = Round2(taxTotal)
	total = Round2(subtotal + taxTotal)
	return subtotal, taxTotal, total
}
