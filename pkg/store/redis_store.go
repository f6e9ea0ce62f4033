package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"towerguide/pkg/domain"
)

const (
	redisOpTimeout = 3 * time.Second

	// Fan-out bound when hydrating inquiry records from their ID index.
	listFetchConcurrency = 8
)

// RedisStore persists records in Redis as JSON values with a per-user
// list index for inquiries. This mirrors the layout the mini-app frontend
// was originally written against:
//
//	inquiry:<id>            JSON inquiry record
//	user:<userId>:inquiries LPUSH'd inquiry IDs, newest first
//	user:<id>               JSON user profile
//	premium_guide:<id>      premium content, SETEX with 24h TTL
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore builds a Redis-backed store.
func NewRedisStore(addr, password string) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

func inquiryKey(id string) string       { return "inquiry:" + id }
func userKey(id string) string          { return "user:" + id }
func userInquiriesKey(id string) string { return "user:" + id + ":inquiries" }
func premiumGuideKey(id string) string  { return "premium_guide:" + id }

// SaveInquiry writes the record and pushes its ID onto the user's index.
func (s *RedisStore) SaveInquiry(inq domain.Inquiry) error {
	payload, err := json.Marshal(inq)
	if err != nil {
		return fmt.Errorf("encode inquiry: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := s.client.Set(ctx, inquiryKey(inq.ID), payload, 0).Err(); err != nil {
		return fmt.Errorf("write inquiry: %w", err)
	}
	if err := s.client.LPush(ctx, userInquiriesKey(inq.UserID), inq.ID).Err(); err != nil {
		return fmt.Errorf("index inquiry: %w", err)
	}
	return nil
}

// GetInquiry retrieves an inquiry record by ID.
func (s *RedisStore) GetInquiry(id string) (domain.Inquiry, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	raw, err := s.client.Get(ctx, inquiryKey(id)).Bytes()
	if err == redis.Nil {
		return domain.Inquiry{}, false, nil
	}
	if err != nil {
		return domain.Inquiry{}, false, err
	}
	var inq domain.Inquiry
	if err := json.Unmarshal(raw, &inq); err != nil {
		return domain.Inquiry{}, false, fmt.Errorf("decode inquiry: %w", err)
	}
	return inq, true, nil
}

// ListInquiriesByUser reads the user's ID index and hydrates records
// concurrently. Results keep index order (newest first); IDs whose record
// has gone missing are skipped.
func (s *RedisStore) ListInquiriesByUser(userID string, limit int) ([]domain.Inquiry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	ids, err := s.client.LRange(ctx, userInquiriesKey(userID), 0, stop).Result()
	cancel()
	if err != nil {
		return nil, fmt.Errorf("read inquiry index: %w", err)
	}
	found := make([]*domain.Inquiry, len(ids))
	g, gctx := errgroup.WithContext(context.Background())
	g.SetLimit(listFetchConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			opCtx, opCancel := context.WithTimeout(gctx, redisOpTimeout)
			defer opCancel()
			raw, err := s.client.Get(opCtx, inquiryKey(id)).Bytes()
			if err == redis.Nil {
				return nil
			}
			if err != nil {
				return err
			}
			var inq domain.Inquiry
			if err := json.Unmarshal(raw, &inq); err != nil {
				return fmt.Errorf("decode inquiry %s: %w", id, err)
			}
			found[i] = &inq
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	res := make([]domain.Inquiry, 0, len(found))
	for _, inq := range found {
		if inq != nil {
			res = append(res, *inq)
		}
	}
	return res, nil
}

// SaveUser stores or replaces a user profile.
func (s *RedisStore) SaveUser(u domain.User) error {
	payload, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return s.client.Set(ctx, userKey(u.ID), payload, 0).Err()
}

// GetUser returns a user profile by ID.
func (s *RedisStore) GetUser(id string) (domain.User, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	raw, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err == redis.Nil {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, err
	}
	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return domain.User{}, false, fmt.Errorf("decode user: %w", err)
	}
	return u, true, nil
}

// ListGuides returns the static catalog.
func (s *RedisStore) ListGuides() ([]domain.Guide, error) {
	return domain.FeaturedGuides(), nil
}

// PutPremiumGuide caches premium content with the standard TTL.
func (s *RedisStore) PutPremiumGuide(inquiryID, content string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return s.client.SetEx(ctx, premiumGuideKey(inquiryID), content, PremiumGuideTTL).Err()
}

// GetPremiumGuide returns cached premium content if still present.
func (s *RedisStore) GetPremiumGuide(inquiryID string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	content, err := s.client.Get(ctx, premiumGuideKey(inquiryID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return content, true, nil
}
