package service

import (
	"context"
	"time"

	"smartexpense/models"
)

// trendMonths length of the monthly series, current month included
const trendMonths = 6

// StatsQuery reference month for the monthly total. Both fields nil means
// the current month; supplying only one of them is rejected.
type StatsQuery struct {
	Month *int
	Year  *int
}

// StatsService computes the dashboard snapshot.
type StatsService struct {
	store *ExpenseStore
	loc   *time.Location
	now   func() time.Time
}

// NewStatsService creates a statistics service. loc decides calendar
// month boundaries.
func NewStatsService(store *ExpenseStore, loc *time.Location) *StatsService {
	if loc == nil {
		loc = time.UTC
	}
	return &StatsService{store: store, loc: loc, now: time.Now}
}

// WithClock replaces the time source.
func (s *StatsService) WithClock(now func() time.Time) *StatsService {
	s.now = now
	return s
}

// Now returns the current time in the service location.
func (s *StatsService) Now() time.Time {
	return s.now().In(s.loc)
}

// Location returns the location month boundaries are computed in.
func (s *StatsService) Location() *time.Location {
	return s.loc
}

// ReferenceMonth resolves q into a (year, month) pair.
func (s *StatsService) ReferenceMonth(q StatsQuery) (int, int, error) {
	if q.Month == nil && q.Year == nil {
		now := s.Now()
		return now.Year(), int(now.Month()), nil
	}
	if q.Month == nil || q.Year == nil {
		return 0, 0, models.NewValidationError("Month and year must be provided together")
	}

	verr := &models.ValidationError{}
	if *q.Month < 1 || *q.Month > 12 {
		verr.Add("Month must be between 1 and 12")
	}
	if *q.Year < 1970 || *q.Year > 9999 {
		verr.Add("Year must be between 1970 and 9999")
	}
	if !verr.Empty() {
		return 0, 0, verr
	}
	return *q.Year, *q.Month, nil
}

// MonthWindow returns the first and last instant (millisecond precision) of
// the calendar month in loc.
func MonthWindow(year, month int, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return start, end
}

// Compute builds the snapshot for the reference month in q.
func (s *StatsService) Compute(ctx context.Context, q StatsQuery) (*models.StatsSnapshot, error) {
	year, month, err := s.ReferenceMonth(q)
	if err != nil {
		return nil, err
	}

	total, err := s.store.SumAmount(ctx, nil, nil)
	if err != nil {
		return nil, err
	}

	from, to := MonthWindow(year, month, s.loc)
	monthly, err := s.store.SumAmount(ctx, &from, &to)
	if err != nil {
		return nil, err
	}

	// the trend always ends at the current month, whatever the reference
	now := s.Now()
	_, trendEnd := MonthWindow(now.Year(), int(now.Month()), s.loc)
	trendStart, _ := MonthWindow(now.Year(), int(now.Month())-(trendMonths-1), s.loc)
	monthlyData, err := s.store.SumByMonth(ctx, trendStart, trendEnd, s.loc)
	if err != nil {
		return nil, err
	}

	categoryData, err := s.store.SumByCategory(ctx)
	if err != nil {
		return nil, err
	}

	return &models.StatsSnapshot{
		TotalExpenses: total,
		MonthlyTotal:  monthly,
		MonthlyData:   monthlyData,
		CategoryData:  categoryData,
	}, nil
}
