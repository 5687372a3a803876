package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Expense expense record model
type Expense struct {
	ID          string    `json:"_id" gorm:"primaryKey;size:36"`
	Amount      float64   `json:"amount" gorm:"type:decimal(12,2);not null" validate:"gte=0,lte=9999999999.99"`
	Category    Category  `json:"category" gorm:"size:20;not null;index:idx_expenses_category" validate:"required,category"`
	Description string    `json:"description" gorm:"size:500;not null;default:''"`
	Date        time.Time `json:"date" gorm:"not null;index:idx_expenses_date,sort:desc" validate:"required"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName sets the table name
func (Expense) TableName() string {
	return "expenses"
}

// BeforeCreate assigns the opaque id.
func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// Normalize rounds the amount to cents, trims the description and stores
// the date in UTC.
func (e *Expense) Normalize() {
	if e.Amount > 0 {
		e.Amount = math.Round(e.Amount*100) / 100
	}
	e.Description = strings.TrimSpace(e.Description)
	if !e.Date.IsZero() {
		e.Date = e.Date.UTC()
	}
}

// MaxAmount largest storable amount, decimal(12,2)
const MaxAmount = 9999999999.99

// Validate checks every field constraint and reports all violations at once.
func (e *Expense) Validate() error {
	err := validate.Struct(e)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(fieldMessage(fe))
	}
	return verr
}

// ValidID reports whether id is a well-formed expense identifier.
func ValidID(id string) bool {
	return uuid.Validate(id) == nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	})
	if err != nil {
		panic(fmt.Sprintf("register category validation: %v", err))
	}
	return v
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "Amount":
		if v, ok := fe.Value().(float64); ok && (math.IsNaN(v) || math.IsInf(v, 0)) {
			return "Amount must be a finite number"
		}
		switch fe.Tag() {
		case "gte":
			return "Amount cannot be negative"
		case "lte":
			return fmt.Sprintf("Amount must not exceed %.2f", MaxAmount)
		}
		return "Amount is required"
	case "Category":
		if fe.Tag() == "category" {
			return fmt.Sprintf("%v is not a valid category", fe.Value())
		}
		return "Category is required"
	case "Date":
		return "Date is required"
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// ExpensePatch partial update. Only fields with Set=true are applied.
type ExpensePatch struct {
	Amount      Optional[float64]
	Category    Optional[Category]
	Description Optional[string]
	Date        Optional[time.Time]
}

// Apply merges the supplied fields into e and returns the changed columns.
func (p ExpensePatch) Apply(e *Expense) map[string]interface{} {
	if p.Amount.Set {
		e.Amount = p.Amount.Value
	}
	if p.Category.Set {
		e.Category = p.Category.Value
	}
	if p.Description.Set {
		e.Description = p.Description.Value
	}
	if p.Date.Set {
		e.Date = p.Date.Value
	}
	e.Normalize()

	updates := make(map[string]interface{})
	if p.Amount.Set {
		updates["amount"] = e.Amount
	}
	if p.Category.Set {
		updates["category"] = e.Category
	}
	if p.Description.Set {
		updates["description"] = e.Description
	}
	if p.Date.Set {
		updates["date"] = e.Date
	}
	return updates
}

// Empty reports whether no field was supplied.
func (p ExpensePatch) Empty() bool {
	return !p.Amount.Set && !p.Category.Set && !p.Description.Set && !p.Date.Set
}
