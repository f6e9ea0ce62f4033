package classify

import (
	"strings"

	"towerguide/pkg/domain"
)

// EstimatedTime is the fixed reading-time label for generated guides.
const EstimatedTime = "5-10 min read"

// premiumQueryLength is the question length beyond which content is gated.
const premiumQueryLength = 100

// Classification carries the metadata derived for one generated guide.
type Classification struct {
	IsPremium     bool
	Difficulty    domain.Difficulty
	EstimatedTime string
	Tags          []string
}

// Classify derives response metadata from the question and its category.
// It is deterministic and makes no external calls.
func Classify(query string, category domain.Category) Classification {
	isPremium := len(query) > premiumQueryLength ||
		category == domain.CategoryBoss ||
		strings.Contains(strings.ToLower(query), "advanced")

	difficulty := domain.DifficultyIntermediate
	if category == domain.CategoryGeneral {
		difficulty = domain.DifficultyBeginner
	}

	return Classification{
		IsPremium:     isPremium,
		Difficulty:    difficulty,
		EstimatedTime: EstimatedTime,
		Tags:          []string{string(category), "strategy", "tower-defense"},
	}
}
