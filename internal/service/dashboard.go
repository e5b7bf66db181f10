package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"pizzapos/internal/domain"
)

const (
	salesByDayLimit   = 30
	topProductsLimit  = 10
	topCustomersLimit = 10

	defaultMonths = 6
	maxMonths     = 36
)

// DashboardStats summarises completed sales. With both bounds the current
// period is [from, to]; otherwise it is the calendar month containing now.
// The breakdowns use whichever bounds are given, or all time.
func (s *Service) DashboardStats(ctx context.Context, rawFrom string, rawTo string) (*domain.DashboardStats, error) {
	from, to, err := s.parseRange(rawFrom, rawTo)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	period := fmt.Sprintf("%s|%s|%s", now.Format(dateOnly), boundKey(from), boundKey(to))
	cached, ok, err := s.cache.GetStats(ctx, period)
	if err != nil {
		s.log.WithError(err).Warn("dashboard cache read failed")
	} else if ok {
		return cached, nil
	}

	stats, err := s.computeStats(ctx, now, from, to)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetStats(ctx, period, stats, s.cacheTTL); err != nil {
		s.log.WithError(err).Warn("dashboard cache write failed")
	}
	return stats, nil
}

func (s *Service) computeStats(ctx context.Context, now time.Time, from *time.Time, to *time.Time) (*domain.DashboardStats, error) {
	today := startOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	monthStart := startOfMonth(now)
	monthAgo := today.AddDate(0, -1, 0)

	current := domain.SaleFilter{From: &monthStart}.Completed()
	if from != nil && to != nil {
		current = domain.SaleFilter{From: from, To: to}.Completed()
	}
	broad := domain.SaleFilter{From: from, To: to}.Completed()

	month, err := s.repo.SalesTotals(ctx, current)
	if err != nil {
		return nil, err
	}
	previousMonth, err := s.repo.SalesTotals(ctx, domain.Between(monthStart.AddDate(0, -1, 0), monthStart))
	if err != nil {
		return nil, err
	}
	todayTotals, err := s.repo.SalesTotals(ctx, domain.Between(today, tomorrow))
	if err != nil {
		return nil, err
	}
	monthAgoTotals, err := s.repo.SalesTotals(ctx, domain.Between(monthAgo, monthAgo.AddDate(0, 0, 1)))
	if err != nil {
		return nil, err
	}
	overall, err := s.repo.SalesTotals(ctx, broad)
	if err != nil {
		return nil, err
	}
	customers, err := s.repo.CountCustomers(ctx)
	if err != nil {
		return nil, err
	}

	byDay, err := s.repo.SalesByTimestamp(ctx, broad, salesByDayLimit)
	if err != nil {
		return nil, err
	}
	for i := range byDay {
		byDay[i].Date = byDay[i].Date.In(s.loc)
	}
	topProducts, err := s.repo.TopProducts(ctx, broad, topProductsLimit)
	if err != nil {
		return nil, err
	}
	topCustomers, err := s.repo.TopCustomers(ctx, broad, topCustomersLimit)
	if err != nil {
		return nil, err
	}
	byMethod, err := s.repo.SalesByPaymentMethod(ctx, broad)
	if err != nil {
		return nil, err
	}

	return &domain.DashboardStats{
		Summary: domain.DashboardSummary{
			MonthTotal:         month.Total,
			MonthCount:         month.Count,
			PreviousMonthTotal: previousMonth.Total,
			MonthDeltaPercent:  percentDelta(month.Total, previousMonth.Total),
			TodayTotal:         todayTotals.Total,
			TodayCount:         todayTotals.Count,
			MonthAgoTotal:      monthAgoTotals.Total,
			DayDeltaPercent:    percentDelta(todayTotals.Total, monthAgoTotals.Total),
			TotalCustomers:     customers,
			TotalSales:         overall.Total,
			SalesCount:         overall.Count,
			AverageSale:        average(overall.Total, overall.Count),
		},
		SalesByDay:      byDay,
		TopProducts:     topProducts,
		TopCustomers:    topCustomers,
		ByPaymentMethod: byMethod,
	}, nil
}

// percentDelta is the change from previous to current in percent, one decimal.
// Growth from nothing counts as 100.
func percentDelta(current decimal.Decimal, previous decimal.Decimal) float64 {
	if previous.IsPositive() {
		return roundHalfCeil(current.Sub(previous).Div(previous).Mul(hundred), 1).InexactFloat64()
	}
	if current.IsPositive() {
		return 100
	}
	return 0
}

// roundHalfCeil rounds to places decimals with ties going toward positive
// infinity, so -12.25 becomes -12.2.
func roundHalfCeil(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Shift(places).Add(decimal.New(5, -1)).Floor().Shift(-places)
}

func boundKey(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func (s *Service) TodaySales(ctx context.Context) (*domain.TodaySales, error) {
	today := startOfDay(s.clock())
	sales, _, err := s.repo.ListSales(ctx, domain.Between(today, today.AddDate(0, 0, 1)), 0, 0)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, sale := range sales {
		total = total.Add(sale.Total)
	}
	return &domain.TodaySales{Date: today, Count: len(sales), Total: total, Sales: sales}, nil
}

// SalesByMonth reports completed sales for the last months calendar months,
// oldest first, ending with the current one.
func (s *Service) SalesByMonth(ctx context.Context, months int) ([]domain.MonthlySales, error) {
	if months < 1 {
		months = defaultMonths
	}
	months = min(months, maxMonths)

	current := startOfMonth(s.clock())
	result := make([]domain.MonthlySales, 0, months)
	for i := months - 1; i >= 0; i-- {
		start := current.AddDate(0, -i, 0)
		totals, err := s.repo.SalesTotals(ctx, domain.Between(start, start.AddDate(0, 1, 0)))
		if err != nil {
			return nil, err
		}
		result = append(result, domain.MonthlySales{
			Month:     shortMonthLabel(start),
			MonthLong: longMonthLabel(start),
			Count:     totals.Count,
			Total:     roundHalfCeil(totals.Total, 0),
		})
	}
	return result, nil
}
