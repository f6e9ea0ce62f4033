package domain

// FeaturedGuides is the static catalog shown alongside generated guides.
// Premium entries are unlocked through the payment flow.
func FeaturedGuides() []Guide {
	return []Guide{
		{
			ID:          "meta-builds-2024",
			Title:       "Meta Tower Builds 2024",
			Description: "Current meta builds that dominate the leaderboards",
			Tags:        []string{"meta", "builds", "competitive"},
			Price:       2.99,
			IsPremium:   true,
			Category:    CategoryBuild,
		},
		{
			ID:          "resource-efficiency",
			Title:       "Resource Efficiency Guide",
			Description: "Maximize your economy with proven farming strategies",
			Tags:        []string{"economy", "farming", "efficiency"},
			Price:       1.99,
			IsPremium:   true,
			Category:    CategoryResource,
		},
		{
			ID:          "beginner-basics",
			Title:       "Beginner Tower Defense Basics",
			Description: "Essential tips for new players to get started",
			Tags:        []string{"beginner", "basics", "tutorial"},
			Price:       0,
			IsPremium:   false,
			Category:    CategoryGeneral,
		},
	}
}
