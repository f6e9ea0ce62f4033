package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"towerguide/pkg/domain"
)

// GormStore implements Store using GORM + Postgres. The catalog is seeded
// at startup so deployments without Redis still serve featured guides.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB, runs auto-migrations, and seeds the catalog.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&InquiryModel{}, &UserModel{}, &GuideModel{}, &PremiumGuideModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	s := &GormStore{db: db}
	if err := s.seedCatalog(); err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	return s, nil
}

func (s *GormStore) seedCatalog() error {
	for _, g := range domain.FeaturedGuides() {
		model, err := guideToModel(g)
		if err != nil {
			return err
		}
		if err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).Create(&model).Error; err != nil {
			return err
		}
	}
	return nil
}

// SaveInquiry records an inquiry. Records are write-once, so conflicts on
// the primary key are treated as errors rather than upserted.
func (s *GormStore) SaveInquiry(inq domain.Inquiry) error {
	model := inquiryToModel(inq)
	return s.db.Create(&model).Error
}

// GetInquiry retrieves an inquiry by ID.
func (s *GormStore) GetInquiry(id string) (domain.Inquiry, bool, error) {
	var model InquiryModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Inquiry{}, false, nil
		}
		return domain.Inquiry{}, false, err
	}
	return inquiryFromModel(model), true, nil
}

// ListInquiriesByUser returns a user's inquiries, newest first.
func (s *GormStore) ListInquiriesByUser(userID string, limit int) ([]domain.Inquiry, error) {
	q := s.db.Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var models []InquiryModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Inquiry, 0, len(models))
	for _, m := range models {
		res = append(res, inquiryFromModel(m))
	}
	return res, nil
}

// SaveUser stores or replaces a user profile.
func (s *GormStore) SaveUser(u domain.User) error {
	model, err := userToModel(u)
	if err != nil {
		return err
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"purchased_guides", "subscription_status"}),
	}).Create(&model).Error
}

// GetUser returns a user profile by ID.
func (s *GormStore) GetUser(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	u, err := userFromModel(model)
	if err != nil {
		return domain.User{}, false, err
	}
	return u, true, nil
}

// ListGuides returns the seeded catalog ordered by price descending.
func (s *GormStore) ListGuides() ([]domain.Guide, error) {
	var models []GuideModel
	if err := s.db.Order("price DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Guide, 0, len(models))
	for _, m := range models {
		g, err := guideFromModel(m)
		if err != nil {
			return nil, err
		}
		res = append(res, g)
	}
	return res, nil
}

// PutPremiumGuide caches premium content with the standard TTL.
func (s *GormStore) PutPremiumGuide(inquiryID, content string) error {
	model := PremiumGuideModel{
		InquiryID: inquiryID,
		Content:   content,
		ExpiresAt: time.Now().UTC().Add(PremiumGuideTTL),
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "inquiry_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "expires_at"}),
	}).Create(&model).Error
}

// GetPremiumGuide returns cached premium content if not expired.
func (s *GormStore) GetPremiumGuide(inquiryID string) (string, bool, error) {
	var model PremiumGuideModel
	err := s.db.Where("inquiry_id = ? AND expires_at > ?", inquiryID, time.Now().UTC()).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return model.Content, true, nil
}
