package model

// Backlog categories. CategoryResearch is the default.
const (
	CategoryResearch = "Research"
	CategoryWork     = "Work"
	CategoryStudy    = "Study"
	CategoryFood     = "Food"
	CategoryShopping = "Shopping"
	CategoryHealth   = "Health"
	CategoryHobby    = "Hobby"
	CategoryChore    = "Chore"
)

var categories = map[string]bool{
	CategoryResearch: true,
	CategoryWork:     true,
	CategoryStudy:    true,
	CategoryFood:     true,
	CategoryShopping: true,
	CategoryHealth:   true,
	CategoryHobby:    true,
	CategoryChore:    true,
}

// ValidCategory reports whether name is one of the known backlog categories.
func ValidCategory(name string) bool {
	return categories[name]
}
