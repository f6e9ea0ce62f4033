package store

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"towerguide/pkg/domain"
)

// GORM models used for Postgres persistence.

type InquiryModel struct {
	ID                string    `gorm:"primaryKey"`
	UserID            string    `gorm:"not null;index"`
	QueryType         string    `gorm:"not null"`
	Specifics         string    `gorm:"not null"`
	GeneratedGuideURL string
	CreatedAt         time.Time `gorm:"not null;index"`
}

type UserModel struct {
	ID                 string         `gorm:"primaryKey"`
	RegisteredAt       time.Time      `gorm:"not null"`
	PurchasedGuides    datatypes.JSON `gorm:"type:jsonb"`
	SubscriptionStatus string         `gorm:"not null"`
}

type GuideModel struct {
	ID          string         `gorm:"primaryKey"`
	Title       string         `gorm:"not null"`
	Description string         `gorm:"not null"`
	Tags        datatypes.JSON `gorm:"type:jsonb"`
	Price       float64        `gorm:"not null"`
	IsPremium   bool           `gorm:"not null"`
	Category    string         `gorm:"not null"`
}

type PremiumGuideModel struct {
	InquiryID string    `gorm:"primaryKey"`
	Content   string    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

func inquiryToModel(inq domain.Inquiry) InquiryModel {
	return InquiryModel{
		ID:                inq.ID,
		UserID:            inq.UserID,
		QueryType:         string(inq.QueryType),
		Specifics:         inq.Specifics,
		GeneratedGuideURL: inq.GeneratedGuideURL,
		CreatedAt:         inq.CreatedAt,
	}
}

func inquiryFromModel(m InquiryModel) domain.Inquiry {
	return domain.Inquiry{
		ID:                m.ID,
		UserID:            m.UserID,
		QueryType:         domain.Category(m.QueryType),
		Specifics:         m.Specifics,
		GeneratedGuideURL: m.GeneratedGuideURL,
		CreatedAt:         m.CreatedAt,
	}
}

func userToModel(u domain.User) (UserModel, error) {
	purchased, err := json.Marshal(u.PurchasedGuides)
	if err != nil {
		return UserModel{}, err
	}
	return UserModel{
		ID:                 u.ID,
		RegisteredAt:       u.RegisteredAt,
		PurchasedGuides:    datatypes.JSON(purchased),
		SubscriptionStatus: string(u.SubscriptionStatus),
	}, nil
}

func userFromModel(m UserModel) (domain.User, error) {
	var purchased []string
	if len(m.PurchasedGuides) > 0 {
		if err := json.Unmarshal(m.PurchasedGuides, &purchased); err != nil {
			return domain.User{}, err
		}
	}
	return domain.User{
		ID:                 m.ID,
		RegisteredAt:       m.RegisteredAt,
		PurchasedGuides:    purchased,
		SubscriptionStatus: domain.SubscriptionStatus(m.SubscriptionStatus),
	}, nil
}

func guideToModel(g domain.Guide) (GuideModel, error) {
	tags, err := json.Marshal(g.Tags)
	if err != nil {
		return GuideModel{}, err
	}
	return GuideModel{
		ID:          g.ID,
		Title:       g.Title,
		Description: g.Description,
		Tags:        datatypes.JSON(tags),
		Price:       g.Price,
		IsPremium:   g.IsPremium,
		Category:    string(g.Category),
	}, nil
}

func guideFromModel(m GuideModel) (domain.Guide, error) {
	var tags []string
	if len(m.Tags) > 0 {
		if err := json.Unmarshal(m.Tags, &tags); err != nil {
			return domain.Guide{}, err
		}
	}
	return domain.Guide{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Tags:        tags,
		Price:       m.Price,
		IsPremium:   m.IsPremium,
		Category:    domain.Category(m.Category),
	}, nil
}
