package service

import (
	"context"
	"math"

	"smartexpense/models"
)

// approachingRatio share of the budget at which a month counts as approaching
const approachingRatio = 0.9

// BudgetService checks monthly spending against the saved budget.
type BudgetService struct {
	store    *ExpenseStore
	stats    *StatsService
	settings *SettingsStore
}

// NewBudgetService creates a budget service
func NewBudgetService(store *ExpenseStore, stats *StatsService, settings *SettingsStore) *BudgetService {
	return &BudgetService{store: store, stats: stats, settings: settings}
}

// Status reports the reference month's total against the budget.
func (s *BudgetService) Status(ctx context.Context, q StatsQuery) (*models.BudgetStatus, error) {
	year, month, err := s.stats.ReferenceMonth(q)
	if err != nil {
		return nil, err
	}
	prefs, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}

	from, to := MonthWindow(year, month, s.stats.loc)
	total, err := s.store.SumAmount(ctx, &from, &to)
	if err != nil {
		return nil, err
	}

	status := Classify(total, prefs.MonthlyBudget)
	status.Year = year
	status.Month = month
	return &status, nil
}

// Classify rates total against budget: exceeded at 100%, approaching at 90%.
func Classify(total, budget float64) models.BudgetStatus {
	st := models.BudgetStatus{
		Budget:       budget,
		MonthlyTotal: total,
		Remaining:    RoundCents(budget - total),
	}
	if budget > 0 {
		st.PercentUsed = math.Round(total/budget*10000) / 100
	}
	switch {
	case total >= budget:
		st.Status = models.BudgetExceeded
	case total >= budget*approachingRatio:
		st.Status = models.BudgetApproaching
	default:
		st.Status = models.BudgetWithin
	}
	return st
}
