package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sanchawla17/Invosight/models"
)

// ClientSummary is one row of the aggregated clients list.
type ClientSummary struct {
	ClientKey        string    `json:"clientKey"`
	ClientName       string    `json:"clientName"`
	ClientEmail      string    `json:"clientEmail"`
	TotalBilled      float64   `json:"totalBilled"`
	TotalPaid        float64   `json:"totalPaid"`
	TotalOutstanding float64   `json:"totalOutstanding"`
	OverdueCount     int       `json:"overdueCount"`
	InvoiceCount     int       `json:"invoiceCount"`
	LastInvoiceDate  time.Time `json:"lastInvoiceDate"`
}

// ClientInfo is the display identity of a client, taken from the client's
// most recent invoice.
type ClientInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DetailSummary extends the per-client aggregation with the average
// invoice value.
type DetailSummary struct {
	TotalBilled         float64   `json:"totalBilled"`
	TotalPaid           float64   `json:"totalPaid"`
	TotalOutstanding    float64   `json:"totalOutstanding"`
	AverageInvoiceValue float64   `json:"averageInvoiceValue"`
	OverdueCount        int       `json:"overdueCount"`
	InvoiceCount        int       `json:"invoiceCount"`
	LastInvoiceDate     time.Time `json:"lastInvoiceDate"`
}

// ClientDetail is the drill-down payload for one client.
type ClientDetail struct {
	Client   ClientInfo       `json:"client"`
	Summary  DetailSummary    `json:"summary"`
	Invoices []models.Invoice `json:"invoices"`
}

// ListClients groups all of the caller's invoices into client identities
// and aggregates lifetime totals, outstanding balances and overdue counts
// per client, sorted descending by total billed.
func (s *Service) ListClients(ctx context.Context, userID string) ([]ClientSummary, error) {
	now := s.Now()

	// Most recent first, so the first invoice seen per group supplies the
	// display name/email deterministically.
	var invoices []models.Invoice
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("invoice_date DESC, id DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("loading invoices for clients: %w", err)
	}

	groups := make(map[string]*ClientSummary)
	for _, inv := range invoices {
		key := IdentityFor(inv.BillTo).Key()
		g, ok := groups[key]
		if !ok {
			name := inv.BillTo.ClientName
			if name == "" {
				name = unknownClient
			}
			g = &ClientSummary{
				ClientKey:       key,
				ClientName:      name,
				ClientEmail:     inv.BillTo.Email,
				LastInvoiceDate: inv.InvoiceDate,
			}
			groups[key] = g
		}
		g.TotalBilled += inv.Total
		if inv.Status == models.StatusPaid {
			g.TotalPaid += inv.Total
		}
		if IsOverdue(inv.Status, inv.DueDate, now) {
			g.OverdueCount++
		}
		g.InvoiceCount++
		if inv.InvoiceDate.After(g.LastInvoiceDate) {
			g.LastInvoiceDate = inv.InvoiceDate
		}
	}

	clients := make([]ClientSummary, 0, len(groups))
	for _, g := range groups {
		g.TotalOutstanding = g.TotalBilled - g.TotalPaid
		clients = append(clients, *g)
	}
	sort.Slice(clients, func(i, j int) bool {
		if clients[i].TotalBilled != clients[j].TotalBilled {
			return clients[i].TotalBilled > clients[j].TotalBilled
		}
		return clients[i].ClientKey < clients[j].ClientKey
	})
	return clients, nil
}

// GetClientDetail resolves a caller-echoed client key back to its invoice
// group and returns the client's identity, aggregated summary and full
// invoice list (most recent first). A malformed key yields
// ErrInvalidClientKey; a well-formed key matching nothing yields
// ErrClientNotFound.
func (s *Service) GetClientDetail(ctx context.Context, userID, clientKey string) (*ClientDetail, error) {
	id, err := ParseClientKey(clientKey)
	if err != nil {
		return nil, err
	}

	q := s.DB.WithContext(ctx).Where("user_id = ?", userID)
	if id.IsEmail() {
		// Same trimming and case-folding rules as key derivation.
		q = q.Where("LOWER(TRIM(bill_to_email)) = ?", id.Value())
	} else {
		// Name keys only exist for invoices without an email; an invoice
		// with one groups under its email key, so admitting it here would
		// double-count it and break list/detail agreement.
		q = q.Where("TRIM(bill_to_email) = ''")
		if id.Value() == unknownClient {
			// "Unknown" stands in for an absent name at grouping time, so the
			// lookup must admit both spellings or listed keys stop round-tripping.
			q = q.Where("bill_to_client_name IN ?", []string{unknownClient, ""})
		} else {
			q = q.Where("bill_to_client_name = ?", id.Value())
		}
	}

	var invoices []models.Invoice
	if err := q.Order("invoice_date DESC, id DESC").Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("loading invoices for client %q: %w", id.Key(), err)
	}
	if len(invoices) == 0 {
		return nil, ErrClientNotFound
	}

	now := s.Now()
	summary := DetailSummary{
		InvoiceCount:    len(invoices),
		LastInvoiceDate: invoices[0].InvoiceDate,
	}
	for _, inv := range invoices {
		summary.TotalBilled += inv.Total
		if inv.Status == models.StatusPaid {
			summary.TotalPaid += inv.Total
		}
		if IsOverdue(inv.Status, inv.DueDate, now) {
			summary.OverdueCount++
		}
	}
	summary.TotalOutstanding = summary.TotalBilled - summary.TotalPaid
	summary.AverageInvoiceValue = summary.TotalBilled / float64(len(invoices))

	name := invoices[0].BillTo.ClientName
	if name == "" {
		name = unknownClient
	}
	return &ClientDetail{
		Client:   ClientInfo{Name: name, Email: invoices[0].BillTo.Email},
		Summary:  summary,
		Invoices: invoices,
	}, nil
}
