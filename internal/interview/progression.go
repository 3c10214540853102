package interview

import "github.com/fmuoria/AI-Interview-agent/internal/models"

var categories = [...]models.Category{
	models.CategoryTechnical,
	models.CategoryBehavioral,
	models.CategorySituational,
}

// Progression decides difficulty and category from the number of turns
// already in a session
type Progression struct {
	// ThreeWayCategories rotates through all three categories. When false
	// only technical and behavioral alternate, which is the long-standing
	// behavior clients were built against.
	ThreeWayCategories bool
}

// Difficulty returns easy for the first two turns, medium for the next two,
// hard afterwards
func (p Progression) Difficulty(n int) models.Difficulty {
	switch {
	case n < 2:
		return models.DifficultyEasy
	case n < 4:
		return models.DifficultyMedium
	default:
		return models.DifficultyHard
	}
}

// Category returns the question category for turn count n
func (p Progression) Category(n int) models.Category {
	if n < 0 {
		n = 0
	}
	if p.ThreeWayCategories {
		return categories[n%3]
	}
	return categories[n%2]
}

// Next returns both difficulty and category for turn count n
func (p Progression) Next(n int) (models.Difficulty, models.Category) {
	return p.Difficulty(n), p.Category(n)
}
