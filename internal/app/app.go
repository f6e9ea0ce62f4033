package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"towerguide/internal/util"
	"towerguide/pkg/ai"
	"towerguide/pkg/classify"
	"towerguide/pkg/domain"
	"towerguide/pkg/storage"
	"towerguide/pkg/store"
)

const defaultGenerationTimeout = 30 * time.Second

// Config holds runtime configuration for the core application.
type Config struct {
	RedisAddr         string
	RedisPassword     string
	DatabaseURL       string
	GenerationTimeout time.Duration

	// Generator is required; Store defaults from Redis/database config.
	// Archive is optional: when nil, generated guides are not uploaded.
	Generator ai.TextGenerator
	Store     store.Store
	Archive   storage.GuideArchive
}

// App orchestrates the inquiry-to-guide pipeline: validate, generate,
// persist, classify.
type App struct {
	store      store.Store
	generator  ai.TextGenerator
	archive    storage.GuideArchive
	genTimeout time.Duration
}

// New constructs the application. Dependencies are injected through cfg so
// tests can substitute fakes; there are no package-level client singletons.
func New(cfg Config) (*App, error) {
	if cfg.Generator == nil {
		return nil, fmt.Errorf("text generator required")
	}
	dataStore := cfg.Store
	if dataStore == nil {
		switch {
		case strings.TrimSpace(cfg.RedisAddr) != "":
			dataStore = store.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword)
		case strings.TrimSpace(cfg.DatabaseURL) != "":
			var err error
			dataStore, err = store.NewGormStore(cfg.DatabaseURL)
			if err != nil {
				return nil, fmt.Errorf("init postgres store: %w", err)
			}
		default:
			return nil, fmt.Errorf("inquiry store required (redisAddr or databaseURL)")
		}
	}
	genTimeout := cfg.GenerationTimeout
	if genTimeout <= 0 {
		genTimeout = defaultGenerationTimeout
	}
	return &App{
		store:      dataStore,
		generator:  cfg.Generator,
		archive:    cfg.Archive,
		genTimeout: genTimeout,
	}, nil
}

// GuideRequest is one caller-submitted strategy question.
type GuideRequest struct {
	Query     string
	QueryType string
	UserID    string
}

// GenerateGuide runs the full pipeline for one request. An inquiry record
// exists if and only if generation succeeded; persistence failures after a
// successful generation are logged and do not fail the request, since the
// user-visible value is the generated text already in hand.
func (a *App) GenerateGuide(ctx context.Context, req GuideRequest) (domain.GuideResult, error) {
	if req.Query == "" || req.QueryType == "" {
		return domain.GuideResult{}, ErrMissingFields
	}
	category, ok := domain.ParseCategory(req.QueryType)
	if !ok {
		return domain.GuideResult{}, fmt.Errorf("%w: %q", ErrInvalidQueryType, req.QueryType)
	}

	genCtx, cancel := context.WithTimeout(ctx, a.genTimeout)
	defer cancel()
	guide, err := a.generator.GenerateText(genCtx, systemPrompt(category), req.Query)
	if err != nil {
		return domain.GuideResult{}, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	userID := req.UserID
	if userID == "" {
		userID = domain.AnonymousUserID
	}
	inquiry := domain.Inquiry{
		ID:        uuid.NewString(),
		UserID:    userID,
		QueryType: category,
		Specifics: req.Query,
		CreatedAt: time.Now().UTC(),
	}

	logger := util.LoggerFromContext(ctx)
	if a.archive != nil {
		url, err := a.archive.ArchiveGuide(ctx, inquiry.ID, guide)
		if err != nil {
			logger.Warn("guide_archive_failed", "inquiry_id", inquiry.ID, "err", err)
		} else {
			inquiry.GeneratedGuideURL = url
		}
	}

	if err := a.store.SaveInquiry(inquiry); err != nil {
		logger.Warn("inquiry_persist_failed", "inquiry_id", inquiry.ID, "user_id", userID, "err", err)
	}

	c := classify.Classify(req.Query, category)
	if c.IsPremium {
		if err := a.store.PutPremiumGuide(inquiry.ID, guide); err != nil {
			logger.Warn("premium_cache_failed", "inquiry_id", inquiry.ID, "err", err)
		}
	}

	return domain.GuideResult{
		Guide:         guide,
		IsPremium:     c.IsPremium,
		InquiryID:     inquiry.ID,
		Difficulty:    c.Difficulty,
		EstimatedTime: c.EstimatedTime,
		Tags:          c.Tags,
	}, nil
}

// ListInquiries returns a user's past inquiries, newest first.
func (a *App) ListInquiries(userID string, limit int) ([]domain.Inquiry, error) {
	if userID == "" {
		userID = domain.AnonymousUserID
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	items, err := a.store.ListInquiriesByUser(userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list inquiries: %v", ErrPersistence, err)
	}
	return items, nil
}

// GetInquiry retrieves one inquiry record by ID.
func (a *App) GetInquiry(id string) (domain.Inquiry, bool, error) {
	inq, ok, err := a.store.GetInquiry(id)
	if err != nil {
		return domain.Inquiry{}, false, fmt.Errorf("%w: get inquiry: %v", ErrPersistence, err)
	}
	return inq, ok, nil
}

// GetPremiumGuide returns cached premium content for an inquiry, if any.
func (a *App) GetPremiumGuide(inquiryID string) (string, bool, error) {
	content, ok, err := a.store.GetPremiumGuide(inquiryID)
	if err != nil {
		return "", false, fmt.Errorf("%w: get premium guide: %v", ErrPersistence, err)
	}
	return content, ok, nil
}

// RegisterUser records a profile for the given opaque identifier.
// Registering an existing ID returns the stored profile unchanged.
func (a *App) RegisterUser(id string) (domain.User, error) {
	if strings.TrimSpace(id) == "" {
		return domain.User{}, fmt.Errorf("%w: userId is required", ErrValidation)
	}
	if existing, ok, err := a.store.GetUser(id); err != nil {
		return domain.User{}, fmt.Errorf("%w: get user: %v", ErrPersistence, err)
	} else if ok {
		return existing, nil
	}
	user := domain.User{
		ID:                 id,
		RegisteredAt:       time.Now().UTC(),
		PurchasedGuides:    []string{},
		SubscriptionStatus: domain.SubscriptionFree,
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, fmt.Errorf("%w: save user: %v", ErrPersistence, err)
	}
	return user, nil
}

// GetUser returns a stored user profile.
func (a *App) GetUser(id string) (domain.User, bool, error) {
	user, ok, err := a.store.GetUser(id)
	if err != nil {
		return domain.User{}, false, fmt.Errorf("%w: get user: %v", ErrPersistence, err)
	}
	return user, ok, nil
}

// ListGuides returns the featured guide catalog.
func (a *App) ListGuides() ([]domain.Guide, error) {
	guides, err := a.store.ListGuides()
	if err != nil {
		return nil, fmt.Errorf("%w: list guides: %v", ErrPersistence, err)
	}
	return guides, nil
}
