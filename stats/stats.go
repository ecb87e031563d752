// Package stats computes the dashboard aggregations: a bucketed revenue
// series, a derived-status breakdown, and client rollups. All results are
// computed fresh per call from the owner-scoped invoice set; nothing here
// holds mutable state, so a Service is safe for concurrent use.
package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sanchawla17/Invosight/models"

	"gorm.io/gorm"
)

// Service runs aggregation queries against the invoice store. Now is the
// injected clock used for window and overdue computations; it defaults to
// time.Now via NewService and is fixed in tests.
type Service struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db, Now: time.Now}
}

// RevenuePoint is one bucket of the revenue series.
type RevenuePoint struct {
	PeriodStart   time.Time `json:"periodStart"`
	TotalInvoiced float64   `json:"totalInvoiced"`
	TotalPaid     float64   `json:"totalPaid"`
}

// StatusCount is one entry of the three-way status breakdown.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// TopClient is one row of the top-clients ranking.
type TopClient struct {
	ClientName  string  `json:"clientName"`
	TotalBilled float64 `json:"totalBilled"`
	TotalPaid   float64 `json:"totalPaid"`
}

// Totals are the grand totals over the requested window.
type Totals struct {
	TotalInvoiced    float64 `json:"totalInvoiced"`
	TotalPaid        float64 `json:"totalPaid"`
	TotalOutstanding float64 `json:"totalOutstanding"`
}

// Result is the full stats payload for the dashboard.
type Result struct {
	RangeDays       int            `json:"rangeDays"`
	Interval        string         `json:"interval"`
	StartDate       time.Time      `json:"startDate"`
	EndDate         time.Time      `json:"endDate"`
	Totals          Totals         `json:"totals"`
	RevenueSeries   []RevenuePoint `json:"revenueSeries"`
	StatusBreakdown []StatusCount  `json:"statusBreakdown"`
	TopClients      []TopClient    `json:"topClients"`
}

const topClientLimit = 5

// BuildStats aggregates the caller's invoices over the requested lookback
// window. Out-of-range rangeDays/interval values are silently coerced to
// safe defaults, never rejected. A user with no invoices in range gets an
// empty series, an all-zero breakdown and zero totals.
func (s *Service) BuildStats(ctx context.Context, userID, rangeDays, interval string) (*Result, error) {
	safeRange := NormalizeRangeDays(rangeDays)
	safeInterval := NormalizeInterval(interval)
	now := s.Now()
	startDate, endDate := DateRange(now, safeRange)

	var invoices []models.Invoice
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND invoice_date >= ? AND invoice_date <= ?", userID, startDate, endDate).
		Order("invoice_date ASC, id ASC").
		Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("loading invoices for stats: %w", err)
	}

	res := &Result{
		RangeDays:     safeRange,
		Interval:      safeInterval,
		StartDate:     startDate,
		EndDate:       endDate,
		RevenueSeries: s.revenueSeries(invoices, safeInterval),
		TopClients:    s.topClients(invoices),
	}
	for _, p := range res.RevenueSeries {
		res.Totals.TotalInvoiced += p.TotalInvoiced
		res.Totals.TotalPaid += p.TotalPaid
	}
	res.Totals.TotalOutstanding = res.Totals.TotalInvoiced - res.Totals.TotalPaid
	res.StatusBreakdown = s.statusBreakdown(invoices, now)
	return res, nil
}

func (s *Service) revenueSeries(invoices []models.Invoice, interval string) []RevenuePoint {
	buckets := make(map[time.Time]*RevenuePoint)
	for _, inv := range invoices {
		start := Truncate(inv.InvoiceDate, interval)
		p, ok := buckets[start]
		if !ok {
			p = &RevenuePoint{PeriodStart: start}
			buckets[start] = p
		}
		p.TotalInvoiced += inv.Total
		if inv.Status == models.StatusPaid {
			p.TotalPaid += inv.Total
		}
	}

	series := make([]RevenuePoint, 0, len(buckets))
	for _, p := range buckets {
		series = append(series, *p)
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].PeriodStart.Before(series[j].PeriodStart)
	})
	return series
}

// statusBreakdown partitions the windowed invoices into exactly three
// counts, in fixed order Sent, Paid, Overdue. The three always sum to the
// number of invoices in range.
func (s *Service) statusBreakdown(invoices []models.Invoice, now time.Time) []StatusCount {
	var sent, paid, overdue int
	for _, inv := range invoices {
		switch {
		case inv.Status == models.StatusPaid:
			paid++
		case IsOverdue(inv.Status, inv.DueDate, now):
			overdue++
		default:
			sent++
		}
	}
	return []StatusCount{
		{Status: "Sent", Count: sent},
		{Status: "Paid", Count: paid},
		{Status: "Overdue", Count: overdue},
	}
}

// topClients ranks the windowed invoices' clients by total billed, keeping
// the top five. Ties resolve by ascending client key so the ranking is
// deterministic for a given input set. Display names follow each group's
// most recent invoice.
func (s *Service) topClients(invoices []models.Invoice) []TopClient {
	type group struct {
		key      string
		name     string
		nameDate time.Time
		billed   float64
		paid     float64
	}
	groups := make(map[string]*group)
	for _, inv := range invoices {
		key := IdentityFor(inv.BillTo).Key()
		g, ok := groups[key]
		if !ok {
			g = &group{key: key}
			groups[key] = g
		}
		g.billed += inv.Total
		if inv.Status == models.StatusPaid {
			g.paid += inv.Total
		}
		if !inv.InvoiceDate.Before(g.nameDate) {
			g.nameDate = inv.InvoiceDate
			g.name = inv.BillTo.ClientName
		}
	}

	ranked := make([]*group, 0, len(groups))
	for _, g := range groups {
		if g.name == "" {
			g.name = unknownClient
		}
		ranked = append(ranked, g)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].billed != ranked[j].billed {
			return ranked[i].billed > ranked[j].billed
		}
		return ranked[i].key < ranked[j].key
	})
	if len(ranked) > topClientLimit {
		ranked = ranked[:topClientLimit]
	}

	top := make([]TopClient, 0, len(ranked))
	for _, g := range ranked {
		top = append(top, TopClient{ClientName: g.name, TotalBilled: g.billed, TotalPaid: g.paid})
	}
	return top
}
