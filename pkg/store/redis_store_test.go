package store

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"towerguide/pkg/domain"
)

func TestRedisStoreInquiryRoundTrip(t *testing.T) {
	redis := miniredis.RunT(t)
	s := NewRedisStore(redis.Addr(), "")

	inq := domain.Inquiry{
		ID:        "inq-1",
		UserID:    "user-1",
		QueryType: domain.CategoryBoss,
		Specifics: "boss fight tips",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := s.SaveInquiry(inq); err != nil {
		t.Fatalf("save inquiry: %v", err)
	}
	got, ok, err := s.GetInquiry("inq-1")
	if err != nil || !ok {
		t.Fatalf("get inquiry: ok=%v err=%v", ok, err)
	}
	if got.Specifics != inq.Specifics || got.QueryType != inq.QueryType || got.UserID != inq.UserID {
		t.Fatalf("unexpected record: %+v", got)
	}
	if _, ok, err := s.GetInquiry("missing"); err != nil || ok {
		t.Fatalf("missing inquiry: ok=%v err=%v", ok, err)
	}
}

func TestRedisStoreListNewestFirst(t *testing.T) {
	redis := miniredis.RunT(t)
	s := NewRedisStore(redis.Addr(), "")

	for _, id := range []string{"a", "b", "c"} {
		if err := s.SaveInquiry(domain.Inquiry{ID: id, UserID: "u", QueryType: domain.CategoryBuild}); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}
	items, err := s.ListInquiriesByUser("u", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 || items[0].ID != "c" || items[1].ID != "b" || items[2].ID != "a" {
		t.Fatalf("expected newest first, got %+v", items)
	}

	limited, err := s.ListInquiriesByUser("u", 1)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "c" {
		t.Fatalf("expected only newest, got %+v", limited)
	}
}

func TestRedisStoreListSkipsMissingRecords(t *testing.T) {
	redis := miniredis.RunT(t)
	s := NewRedisStore(redis.Addr(), "")

	for _, id := range []string{"a", "b"} {
		if err := s.SaveInquiry(domain.Inquiry{ID: id, UserID: "u", QueryType: domain.CategoryBuild}); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}
	redis.Del("inquiry:a")

	items, err := s.ListInquiriesByUser("u", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].ID != "b" {
		t.Fatalf("expected only surviving record, got %+v", items)
	}
}

func TestRedisStoreUserRoundTrip(t *testing.T) {
	redis := miniredis.RunT(t)
	s := NewRedisStore(redis.Addr(), "")

	u := domain.User{
		ID:                 "fid-1",
		RegisteredAt:       time.Now().UTC().Truncate(time.Second),
		PurchasedGuides:    []string{"meta-builds-2024"},
		SubscriptionStatus: domain.SubscriptionPremium,
	}
	if err := s.SaveUser(u); err != nil {
		t.Fatalf("save user: %v", err)
	}
	got, ok, err := s.GetUser("fid-1")
	if err != nil || !ok {
		t.Fatalf("get user: ok=%v err=%v", ok, err)
	}
	if got.SubscriptionStatus != domain.SubscriptionPremium || len(got.PurchasedGuides) != 1 {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestRedisStorePremiumGuideExpires(t *testing.T) {
	redis := miniredis.RunT(t)
	s := NewRedisStore(redis.Addr(), "")

	if err := s.PutPremiumGuide("inq-1", "# secret tactics"); err != nil {
		t.Fatalf("put premium: %v", err)
	}
	content, ok, err := s.GetPremiumGuide("inq-1")
	if err != nil || !ok || content != "# secret tactics" {
		t.Fatalf("get premium: %q ok=%v err=%v", content, ok, err)
	}

	redis.FastForward(PremiumGuideTTL + time.Minute)

	if _, ok, err := s.GetPremiumGuide("inq-1"); err != nil || ok {
		t.Fatalf("premium guide should expire, ok=%v err=%v", ok, err)
	}
}
