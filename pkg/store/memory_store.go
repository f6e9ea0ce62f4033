package store

import (
	"sync"
	"time"

	"towerguide/pkg/domain"
)

// MemoryStore keeps records in-process. Used in tests and local dev.
type MemoryStore struct {
	mu        sync.RWMutex
	inquiries map[string]domain.Inquiry
	byUser    map[string][]string // user ID -> inquiry IDs, newest first
	users     map[string]domain.User
	premium   map[string]premiumEntry
}

type premiumEntry struct {
	content   string
	expiresAt time.Time
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		inquiries: make(map[string]domain.Inquiry),
		byUser:    make(map[string][]string),
		users:     make(map[string]domain.User),
		premium:   make(map[string]premiumEntry),
	}
}

// SaveInquiry records an inquiry and indexes it under its user.
func (m *MemoryStore) SaveInquiry(inq domain.Inquiry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.inquiries[inq.ID]; !exists {
		m.byUser[inq.UserID] = append([]string{inq.ID}, m.byUser[inq.UserID]...)
	}
	m.inquiries[inq.ID] = inq
	return nil
}

// GetInquiry retrieves an inquiry by ID.
func (m *MemoryStore) GetInquiry(id string) (domain.Inquiry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inq, ok := m.inquiries[id]
	return inq, ok, nil
}

// ListInquiriesByUser returns a user's inquiries, newest first.
func (m *MemoryStore) ListInquiriesByUser(userID string, limit int) ([]domain.Inquiry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.byUser[userID]
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	res := make([]domain.Inquiry, 0, len(ids))
	for _, id := range ids {
		if inq, ok := m.inquiries[id]; ok {
			res = append(res, inq)
		}
	}
	return res, nil
}

// SaveUser stores or replaces a user profile.
func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

// GetUser returns a user profile by ID.
func (m *MemoryStore) GetUser(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// ListGuides returns the static catalog.
func (m *MemoryStore) ListGuides() ([]domain.Guide, error) {
	return domain.FeaturedGuides(), nil
}

// PutPremiumGuide caches premium content with the standard TTL.
func (m *MemoryStore) PutPremiumGuide(inquiryID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.premium[inquiryID] = premiumEntry{
		content:   content,
		expiresAt: time.Now().Add(PremiumGuideTTL),
	}
	return nil
}

// GetPremiumGuide returns cached premium content if not expired.
func (m *MemoryStore) GetPremiumGuide(inquiryID string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.premium[inquiryID]
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false, nil
	}
	return entry.content, true, nil
}
