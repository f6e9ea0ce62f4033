package domain

import "time"

// Category classifies the topic of a strategy question.
type Category string

const (
	CategoryBuild    Category = "build"
	CategoryResource Category = "resource"
	CategoryBoss     Category = "boss"
	CategoryGeneral  Category = "general"
)

// ParseCategory validates a raw queryType value against the closed set.
func ParseCategory(raw string) (Category, bool) {
	switch Category(raw) {
	case CategoryBuild, CategoryResource, CategoryBoss, CategoryGeneral:
		return Category(raw), true
	default:
		return "", false
	}
}

// Difficulty labels derived for generated guides.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// AnonymousUserID is recorded when the caller supplies no identity.
const AnonymousUserID = "anonymous"

// Inquiry is the durable record of one strategy question.
// Records are written once and never mutated.
type Inquiry struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	QueryType         Category  `json:"queryType"`
	Specifics         string    `json:"specifics"`
	GeneratedGuideURL string    `json:"generatedGuideUrl,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// GuideResult is the composed response for one generation request.
// It lives only for the request and is never persisted as a record.
type GuideResult struct {
	Guide         string     `json:"guide"`
	IsPremium     bool       `json:"isPremium"`
	InquiryID     string     `json:"inquiryId"`
	Difficulty    Difficulty `json:"difficulty"`
	EstimatedTime string     `json:"estimatedTime"`
	Tags          []string   `json:"tags"`
}

// SubscriptionStatus tracks a user's paid tier.
type SubscriptionStatus string

const (
	SubscriptionFree    SubscriptionStatus = "free"
	SubscriptionPremium SubscriptionStatus = "premium"
	SubscriptionExpired SubscriptionStatus = "expired"
)

// User is a lightweight profile keyed by an opaque identifier.
// The id is untrusted caller input, not an access-control token.
type User struct {
	ID                 string             `json:"id"`
	RegisteredAt       time.Time          `json:"registeredAt"`
	PurchasedGuides    []string           `json:"purchasedGuides"`
	SubscriptionStatus SubscriptionStatus `json:"subscriptionStatus"`
}

// Guide is a static catalog entry, some gated behind a payment step.
type Guide struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Price       float64  `json:"price"`
	IsPremium   bool     `json:"isPremium"`
	Category    Category `json:"category"`
}
