package models

// MonthKey identifies a calendar month bucket.
type MonthKey struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// MonthlyTotal summed amount for one month.
type MonthlyTotal struct {
	ID    MonthKey `json:"_id"`
	Total float64  `json:"total"`
}

// CategoryTotal summed amount for one category.
type CategoryTotal struct {
	ID    Category `json:"_id" gorm:"column:category"`
	Total float64  `json:"total" gorm:"column:total"`
}

// StatsSnapshot dashboard payload
type StatsSnapshot struct {
	TotalExpenses float64         `json:"totalExpenses"`
	MonthlyTotal  float64         `json:"monthlyTotal"`
	MonthlyData   []MonthlyTotal  `json:"monthlyData"`
	CategoryData  []CategoryTotal `json:"categoryData"`
}
