package service

import (
	"context"
	"time"

	"smartexpense/models"

	"github.com/rs/zerolog/log"
)

// Notifier delivers budget alerts.
type Notifier interface {
	SendBudgetAlert(status models.BudgetStatus) error
}

// BudgetAlerter notifies when a write pushes the current month over budget.
type BudgetAlerter struct {
	budget   *BudgetService
	notifier Notifier
	timeout  time.Duration
}

// NewBudgetAlerter creates an alerter. A nil notifier disables alerts.
func NewBudgetAlerter(budget *BudgetService, notifier Notifier) *BudgetAlerter {
	return &BudgetAlerter{budget: budget, notifier: notifier, timeout: 15 * time.Second}
}

// Observe compares the current month before and after a write of prev -> next
// (either may be nil) and alerts on the crossing. It reports whether an alert
// was sent.
func (a *BudgetAlerter) Observe(ctx context.Context, prev, next *models.Expense) bool {
	if a == nil || a.notifier == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	status, err := a.budget.Status(ctx, StatsQuery{})
	if err != nil {
		log.Error().Err(err).Msg("budget alert: status lookup failed")
		return false
	}

	from, to := MonthWindow(status.Year, status.Month, a.budget.stats.loc)
	before := status.MonthlyTotal - contribution(next, from, to) + contribution(prev, from, to)
	if status.Status != models.BudgetExceeded || before >= status.Budget {
		return false
	}

	if err := a.notifier.SendBudgetAlert(*status); err != nil {
		log.Error().Err(err).Msg("budget alert: send failed")
		return false
	}
	log.Info().
		Float64("budget", status.Budget).
		Float64("monthly_total", status.MonthlyTotal).
		Msg("budget alert sent")
	return true
}

// ObserveAsync runs Observe on its own goroutine, detached from the request.
func (a *BudgetAlerter) ObserveAsync(prev, next *models.Expense) {
	if a == nil || a.notifier == nil {
		return
	}
	go a.Observe(context.Background(), prev, next)
}

func contribution(e *models.Expense, from, to time.Time) float64 {
	if e == nil || e.Date.Before(from) || e.Date.After(to) {
		return 0
	}
	return e.Amount
}
