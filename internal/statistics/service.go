package statistics

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"invoicehub/internal/caching"
	"invoicehub/internal/models"
	"invoicehub/internal/repositories"

	"github.com/google/uuid"
)

// StatisticsService aggregates invoice totals per period and per status for
// the sidebar-style summary views.
type StatisticsService struct {
	invoiceRepo  repositories.InvoiceRepository
	cacheService caching.CacheService
}

func NewStatisticsService(invoiceRepo repositories.InvoiceRepository, cacheService caching.CacheService) *StatisticsService {
	return &StatisticsService{
		invoiceRepo:  invoiceRepo,
		cacheService: cacheService,
	}
}

// StatusSummary is the aggregated amount and count of invoices in one status.
type StatusSummary struct {
	Status string                    `json:"status"`
	Count  int                       `json:"count"`
	Sums   []repositories.CurrencySum `json:"sums"`
}

// PeriodSummary is the aggregated amount of invoices issued in one period.
type PeriodSummary struct {
	Period string                    `json:"period"`
	From   time.Time                 `json:"from"`
	To     time.Time                 `json:"to"`
	Sums   []repositories.CurrencySum `json:"sums"`
}

// Summary is the full statistics payload.
type Summary struct {
	Periods   []PeriodSummary `json:"periods"`
	Statuses  []StatusSummary `json:"statuses"`
	UpdatedAt time.Time       `json:"updated_at"`
}

const cacheTTL = 10 * time.Minute

func cacheKey(projectID *int64, contactID *uuid.UUID) string {
	key := "summary"
	if projectID != nil {
		key += fmt.Sprintf(":project:%d", *projectID)
	}
	if contactID != nil {
		key += fmt.Sprintf(":contact:%s", contactID)
	}
	return key
}

// Summary computes period and status aggregates, reading through the cache.
func (s *StatisticsService) Summary(ctx context.Context, projectID *int64, contactID *uuid.UUID) (*Summary, error) {
	key := cacheKey(projectID, contactID)
	if cached, err := s.cacheService.GetStatistics(ctx, key); cached != nil {
		if summary := decodeSummary(cached); summary != nil {
			return summary, nil
		}
	} else if err != nil {
		log.Printf("statistics cache read failed: %v", err)
	}

	summary, err := s.compute(ctx, projectID, contactID, time.Now())
	if err != nil {
		return nil, err
	}

	if encoded := encodeSummary(summary); encoded != nil {
		if err := s.cacheService.SetStatistics(ctx, key, encoded, cacheTTL); err != nil {
			log.Printf("statistics cache write failed: %v", err)
		}
	}
	return summary, nil
}

// Refresh recomputes and caches the unfiltered summary. The background
// scheduler calls this so interactive requests mostly hit warm cache.
func (s *StatisticsService) Refresh(ctx context.Context) error {
	summary, err := s.compute(ctx, nil, nil, time.Now())
	if err != nil {
		return err
	}
	if encoded := encodeSummary(summary); encoded != nil {
		return s.cacheService.SetStatistics(ctx, cacheKey(nil, nil), encoded, cacheTTL)
	}
	return nil
}

func (s *StatisticsService) compute(ctx context.Context, projectID *int64, contactID *uuid.UUID, now time.Time) (*Summary, error) {
	summary := &Summary{UpdatedAt: now}

	for _, period := range periods(now) {
		sums, err := s.invoiceRepo.SumByPeriod(ctx, projectID, contactID, period.from, period.to)
		if err != nil {
			return nil, err
		}
		summary.Periods = append(summary.Periods, PeriodSummary{
			Period: period.name,
			From:   period.from,
			To:     period.to,
			Sums:   sums,
		})
	}

	for _, status := range []int{models.StatusEstimate, models.StatusDraft, models.StatusSent, models.StatusPaid} {
		sums, count, err := s.invoiceRepo.SumByStatus(ctx, status, projectID, contactID)
		if err != nil {
			return nil, err
		}
		summary.Statuses = append(summary.Statuses, StatusSummary{
			Status: models.StatusNames[status],
			Count:  count,
			Sums:   sums,
		})
	}
	return summary, nil
}

type periodRange struct {
	name string
	from time.Time
	to   time.Time
}

// periods returns the reporting windows. Weeks start on Monday.
func periods(now time.Time) []periodRange {
	year, month, day := now.Date()
	today := time.Date(year, month, day, 0, 0, 0, 0, now.Location())

	weekday := int(today.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	weekStart := today.AddDate(0, 0, -(weekday - 1))
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())
	yearStart := time.Date(year, 1, 1, 0, 0, 0, 0, now.Location())

	return []periodRange{
		{name: "current_week", from: weekStart, to: weekStart.AddDate(0, 0, 7)},
		{name: "last_week", from: weekStart.AddDate(0, 0, -7), to: weekStart},
		{name: "current_month", from: monthStart, to: monthStart.AddDate(0, 1, 0)},
		{name: "last_month", from: monthStart.AddDate(0, -1, 0), to: monthStart},
		{name: "current_year", from: yearStart, to: yearStart.AddDate(1, 0, 0)},
	}
}

func encodeSummary(summary *Summary) map[string]interface{} {
	data, err := json.Marshal(summary)
	if err != nil {
		return nil
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

func decodeSummary(cached map[string]interface{}) *Summary {
	data, err := json.Marshal(cached)
	if err != nil {
		return nil
	}
	summary := &Summary{}
	if err := json.Unmarshal(data, summary); err != nil {
		return nil
	}
	return summary
}
