package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"smartexpense/models"

	"gorm.io/gorm"
)

// ExpenseFilter list filter. Nil fields do not constrain.
type ExpenseFilter struct {
	Category *models.Category
	From     *time.Time
	To       *time.Time
}

// ExpenseStore persists expenses and computes aggregates over them.
type ExpenseStore struct {
	db *gorm.DB
}

// NewExpenseStore creates a store on db
func NewExpenseStore(db *gorm.DB) *ExpenseStore {
	return &ExpenseStore{db: db}
}

// Insert validates e and persists it, filling id and timestamps.
func (s *ExpenseStore) Insert(ctx context.Context, e *models.Expense) error {
	e.ID = ""
	e.Normalize()
	if err := e.Validate(); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

// FindByID loads one expense.
func (s *ExpenseStore) FindByID(ctx context.Context, id string) (*models.Expense, error) {
	if !models.ValidID(id) {
		return nil, models.ErrInvalidID
	}
	var e models.Expense
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("find expense %s: %w", id, err)
	}
	return &e, nil
}

// Find lists expenses matching f, newest first.
func (s *ExpenseStore) Find(ctx context.Context, f ExpenseFilter) ([]models.Expense, error) {
	query := s.db.WithContext(ctx).Model(&models.Expense{})
	if f.Category != nil {
		query = query.Where("category = ?", *f.Category)
	}
	query = applyDateRange(query, f.From, f.To)

	expenses := make([]models.Expense, 0)
	if err := query.Order("date DESC").Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// Update applies the supplied patch fields and returns the stored record.
// updatedAt is refreshed even when the patch is empty.
func (s *ExpenseStore) Update(ctx context.Context, id string, patch models.ExpensePatch) (*models.Expense, error) {
	e, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := patch.Apply(e)
	if err := e.Validate(); err != nil {
		return nil, err
	}
	updates["updated_at"] = s.db.NowFunc()

	err = s.db.WithContext(ctx).Model(&models.Expense{}).Where("id = ?", id).Updates(updates).Error
	if err != nil {
		return nil, fmt.Errorf("update expense %s: %w", id, err)
	}
	return s.FindByID(ctx, id)
}

// Delete removes an expense and returns what was removed.
func (s *ExpenseStore) Delete(ctx context.Context, id string) (*models.Expense, error) {
	e, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Expense{})
	if res.Error != nil {
		return nil, fmt.Errorf("delete expense %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.ErrNotFound
	}
	return e, nil
}

// SumAmount sums amount over the inclusive date window; nil bounds are open.
func (s *ExpenseStore) SumAmount(ctx context.Context, from, to *time.Time) (float64, error) {
	query := applyDateRange(s.db.WithContext(ctx).Model(&models.Expense{}), from, to)

	var total float64
	if err := query.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("sum expenses: %w", err)
	}
	return RoundCents(total), nil
}

// SumByCategory sums amount per category, largest first.
// Categories without expenses are omitted.
func (s *ExpenseStore) SumByCategory(ctx context.Context) ([]models.CategoryTotal, error) {
	totals := make([]models.CategoryTotal, 0)
	err := s.db.WithContext(ctx).Model(&models.Expense{}).
		Select("category, SUM(amount) AS total").
		Group("category").
		Order("total DESC").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("sum expenses by category: %w", err)
	}
	for i := range totals {
		totals[i].Total = RoundCents(totals[i].Total)
	}
	return totals, nil
}

type datedAmount struct {
	Date   time.Time
	Amount float64
}

// SumByMonth sums amount per calendar month (in loc) for expenses dated
// within [from, to]. Buckets are ascending; empty months are omitted.
func (s *ExpenseStore) SumByMonth(ctx context.Context, from, to time.Time, loc *time.Location) ([]models.MonthlyTotal, error) {
	var rows []datedAmount
	err := applyDateRange(s.db.WithContext(ctx).Model(&models.Expense{}), &from, &to).
		Select("date, amount").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("sum expenses by month: %w", err)
	}
	return bucketByMonth(rows, loc), nil
}

func bucketByMonth(rows []datedAmount, loc *time.Location) []models.MonthlyTotal {
	if loc == nil {
		loc = time.UTC
	}
	sums := make(map[models.MonthKey]float64)
	for _, r := range rows {
		d := r.Date.In(loc)
		sums[models.MonthKey{Year: d.Year(), Month: int(d.Month())}] += r.Amount
	}

	out := make([]models.MonthlyTotal, 0, len(sums))
	for k, v := range sums {
		out = append(out, models.MonthlyTotal{ID: k, Total: RoundCents(v)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ID.Year != out[j].ID.Year {
			return out[i].ID.Year < out[j].ID.Year
		}
		return out[i].ID.Month < out[j].ID.Month
	})
	return out
}

func applyDateRange(query *gorm.DB, from, to *time.Time) *gorm.DB {
	if from != nil {
		query = query.Where("date >= ?", from.UTC())
	}
	if to != nil {
		query = query.Where("date <= ?", to.UTC())
	}
	return query
}

// RoundCents rounds v to two decimals.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
