package models

import "time"

// Setting keys
const (
	SettingMonthlyBudget = "monthly_budget"
	SettingTheme         = "theme"
)

// Themes accepted by the client.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Setting persisted client preference (key/value)
type Setting struct {
	Key       string    `json:"key" gorm:"primaryKey;size:64"`
	Value     string    `json:"value" gorm:"size:255;not null"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName sets the table name
func (Setting) TableName() string {
	return "settings"
}

// Preferences the decoded set of client settings.
type Preferences struct {
	MonthlyBudget float64 `json:"monthlyBudget"`
	Theme         string  `json:"theme"`
}

// Budget status values
const (
	BudgetWithin      = "within"
	BudgetApproaching = "approaching"
	BudgetExceeded    = "exceeded"
)

// BudgetStatus a month's spending checked against the budget.
type BudgetStatus struct {
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	Budget       float64 `json:"budget"`
	MonthlyTotal float64 `json:"monthlyTotal"`
	Remaining    float64 `json:"remaining"`
	PercentUsed  float64 `json:"percentUsed"`
	Status       string  `json:"status"`
}

// PreferencesPatch partial settings update
type PreferencesPatch struct {
	MonthlyBudget Optional[float64] `json:"monthlyBudget" swaggertype:"number" example:"2000"`
	Theme         Optional[string]  `json:"theme" swaggertype:"string" example:"dark"`
}

// Validate checks the supplied fields.
func (p PreferencesPatch) Validate() error {
	verr := &ValidationError{}
	if p.MonthlyBudget.Set {
		if p.MonthlyBudget.Null || p.MonthlyBudget.Value < 0 {
			verr.Add("Monthly budget must be a non-negative number")
		}
	}
	if p.Theme.Set {
		if p.Theme.Null || (p.Theme.Value != ThemeLight && p.Theme.Value != ThemeDark) {
			verr.Add("Theme must be light or dark")
		}
	}
	if verr.Empty() {
		return nil
	}
	return verr
}
