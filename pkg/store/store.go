package store

import (
	"time"

	"towerguide/pkg/domain"
)

// PremiumGuideTTL bounds how long unlocked premium content stays cached.
const PremiumGuideTTL = 24 * time.Hour

// Store defines persistence for inquiries, user profiles, the guide
// catalog, and the premium content cache.
//
// Inquiry listings are most-recent-first: every implementation must put the
// newest inquiry at the head, since the ordering is user-visible.
type Store interface {
	// inquiries
	SaveInquiry(domain.Inquiry) error
	GetInquiry(id string) (domain.Inquiry, bool, error)
	ListInquiriesByUser(userID string, limit int) ([]domain.Inquiry, error)

	// users
	SaveUser(domain.User) error
	GetUser(id string) (domain.User, bool, error)

	// catalog
	ListGuides() ([]domain.Guide, error)

	// premium content cache, entries expire after PremiumGuideTTL
	PutPremiumGuide(inquiryID, content string) error
	GetPremiumGuide(inquiryID string) (string, bool, error)
}
