package models

import "time"

// Category groups habits for display. The empty Category means none was chosen.
type Category string

const (
	CategoryNone        Category = ""
	CategoryFitness     Category = "fitness"
	CategoryMindfulness Category = "mindfulness"
	CategoryLearning    Category = "learning"
	CategoryWork        Category = "work"
	CategoryNutrition   Category = "nutrition"
)

// Categories lists the selectable categories in display order.
var Categories = []Category{
	CategoryFitness,
	CategoryMindfulness,
	CategoryLearning,
	CategoryWork,
	CategoryNutrition,
}

// Valid reports whether c is empty or one of the enumerated categories.
func (c Category) Valid() bool {
	if c == CategoryNone {
		return true
	}
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Label returns the display label, e.g. "Mindfulness".
func (c Category) Label() string {
	switch c {
	case CategoryFitness:
		return "Fitness"
	case CategoryMindfulness:
		return "Mindfulness"
	case CategoryLearning:
		return "Learning"
	case CategoryWork:
		return "Work"
	case CategoryNutrition:
		return "Nutrition"
	}
	return ""
}

// Habit represents a daily practice to track
type Habit struct {
	ID        string    `json:"id" yaml:"id"`
	OwnerID   string    `json:"owner_id" yaml:"owner_id"`
	Name      string    `json:"name" yaml:"name"`
	Category  Category  `json:"category,omitempty" yaml:"category,omitempty"`
	CreatedOn string    `json:"created_on" yaml:"created_on"` // YYYY-MM-DD format
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
