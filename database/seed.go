package database

import (
	"fmt"
	"time"

	"smartexpense/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const day = 24 * time.Hour

// sampleExpenses demo data, dated relative to now
func sampleExpenses(now time.Time) []models.Expense {
	return []models.Expense{
		{Amount: 45.99, Category: models.CategoryFood, Description: "Grocery shopping", Date: now},
		{Amount: 120.00, Category: models.CategoryTravel, Description: "Gas for weekend trip", Date: now.Add(-day)},
		{Amount: 89.50, Category: models.CategoryShopping, Description: "New running shoes", Date: now.Add(-2 * day)},
		{Amount: 250.00, Category: models.CategoryBills, Description: "Electric bill", Date: now.Add(-5 * day)},
		{Amount: 15.00, Category: models.CategoryFood, Description: "Coffee with friends", Date: now},
		{Amount: 75.00, Category: models.CategoryOther, Description: "Charity donation", Date: now.Add(-7 * day)},
		{Amount: 35.00, Category: models.CategoryFood, Description: "Restaurant dinner", Date: now.Add(-3 * day)},
		{Amount: 200.00, Category: models.CategoryTravel, Description: "Hotel booking", Date: now.Add(-14 * day)},
	}
}

// Seed inserts the sample expenses when the table is empty.
// It returns the number of inserted rows.
func Seed(db *gorm.DB, now time.Time) (int, error) {
	var count int64
	if err := db.Model(&models.Expense{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count expenses: %w", err)
	}
	if count > 0 {
		log.Info().Int64("existing", count).Msg("expenses table not empty, skipping seed")
		return 0, nil
	}

	samples := sampleExpenses(now)
	for i := range samples {
		samples[i].Normalize()
	}
	if err := db.Create(&samples).Error; err != nil {
		return 0, fmt.Errorf("insert sample expenses: %w", err)
	}
	log.Info().Int("inserted", len(samples)).Msg("sample expenses added")
	return len(samples), nil
}
