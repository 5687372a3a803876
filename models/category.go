package models

// Category expense classification. The set is closed.
type Category string

const (
	CategoryFood     Category = "Food"
	CategoryTravel   Category = "Travel"
	CategoryShopping Category = "Shopping"
	CategoryBills    Category = "Bills"
	CategoryOther    Category = "Other"
)

// CategoryAll is the list filter value meaning "no category constraint".
const CategoryAll = "all"

var categories = []Category{
	CategoryFood,
	CategoryTravel,
	CategoryShopping,
	CategoryBills,
	CategoryOther,
}

// CategoryNames returns the categories as plain strings.
func CategoryNames() []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = string(c)
	}
	return out
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}
