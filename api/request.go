package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"smartexpense/models"
	"smartexpense/service"
)

const dateLayout = "2006-01-02"

// FlexFloat accepts a JSON number or a numeric string.
type FlexFloat struct {
	Value float64
	// Truthy is false for null, 0 and ""
	Truthy bool
}

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*f = FlexFloat{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = FlexFloat{}
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
			return fmt.Errorf("amount %q is not a number", s)
		}
		*f = FlexFloat{Value: v, Truthy: true}
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("amount must be a number")
	}
	*f = FlexFloat{Value: v, Truthy: v != 0}
	return nil
}

// parseDate reads YYYY-MM-DD (midnight in loc) or RFC 3339.
func parseDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.ParseInLocation(dateLayout, value, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%q is not a valid date, expected YYYY-MM-DD", value)
}

// endOfDay extends a date-only bound to the last millisecond of that day.
func endOfDay(value string, t time.Time) time.Time {
	if len(strings.TrimSpace(value)) != len(dateLayout) {
		return t
	}
	return t.AddDate(0, 0, 1).Add(-time.Millisecond)
}

// parseExpenseFilter builds the list filter from category, startDate and endDate.
func parseExpenseFilter(category, startDate, endDate string, loc *time.Location) (service.ExpenseFilter, error) {
	var f service.ExpenseFilter
	verr := &models.ValidationError{}

	category = strings.TrimSpace(category)
	if category != "" && category != models.CategoryAll {
		cat := models.Category(category)
		if !cat.Valid() {
			verr.Add(fmt.Sprintf("%s is not a valid category", category))
		} else {
			f.Category = &cat
		}
	}

	if startDate != "" {
		t, err := parseDate(startDate, loc)
		if err != nil {
			verr.Add("Invalid startDate")
		} else {
			f.From = &t
		}
	}
	if endDate != "" {
		t, err := parseDate(endDate, loc)
		if err != nil {
			verr.Add("Invalid endDate")
		} else {
			t = endOfDay(endDate, t)
			f.To = &t
		}
	}

	if !verr.Empty() {
		return f, verr
	}
	return f, nil
}

// parseStatsQuery reads the optional month and year query parameters.
func parseStatsQuery(month, year string) (service.StatsQuery, error) {
	var q service.StatsQuery
	verr := &models.ValidationError{}
	if month != "" {
		m, err := strconv.Atoi(strings.TrimSpace(month))
		if err != nil {
			verr.Add("Month must be a number")
		} else {
			q.Month = &m
		}
	}
	if year != "" {
		y, err := strconv.Atoi(strings.TrimSpace(year))
		if err != nil {
			verr.Add("Year must be a number")
		} else {
			q.Year = &y
		}
	}
	if !verr.Empty() {
		return q, verr
	}
	return q, nil
}

// UpdateExpenseRequest 更新消费记录请求，未出现的字段保持不变
type UpdateExpenseRequest struct {
	Amount      models.Optional[FlexFloat] `json:"amount" swaggertype:"number" example:"12.5"`
	Category    models.Optional[string]    `json:"category" swaggertype:"string" example:"Food"`
	Description models.Optional[string]    `json:"description" swaggertype:"string" example:"Lunch"`
	Date        models.Optional[string]    `json:"date" swaggertype:"string" example:"2024-03-01"`
}

// Patch converts the body into a store patch.
func (r UpdateExpenseRequest) Patch(loc *time.Location) (models.ExpensePatch, error) {
	var p models.ExpensePatch
	verr := &models.ValidationError{}

	if r.Amount.Set {
		if r.Amount.Null {
			verr.Add("Amount is required")
		} else {
			p.Amount = models.Some(r.Amount.Value.Value)
		}
	}
	if r.Category.Set {
		if r.Category.Null {
			verr.Add("Category is required")
		} else {
			p.Category = models.Some(models.Category(strings.TrimSpace(r.Category.Value)))
		}
	}
	if r.Description.Set {
		// null clears the description
		p.Description = models.Some(r.Description.Value)
	}
	if r.Date.Set {
		if r.Date.Null || strings.TrimSpace(r.Date.Value) == "" {
			verr.Add("Date is required")
		} else if t, err := parseDate(r.Date.Value, loc); err != nil {
			verr.Add("Invalid date")
		} else {
			p.Date = models.Some(t)
		}
	}

	if !verr.Empty() {
		return p, verr
	}
	return p, nil
}
