package store

import (
	"testing"
	"time"

	"towerguide/pkg/domain"
)

func TestMemoryStoreInquiryRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	inq := domain.Inquiry{
		ID:        "inq-1",
		UserID:    "user-1",
		QueryType: domain.CategoryBuild,
		Specifics: "best build for wave 15",
		CreatedAt: time.Now().UTC(),
	}
	if err := s.SaveInquiry(inq); err != nil {
		t.Fatalf("save inquiry: %v", err)
	}
	got, ok, err := s.GetInquiry("inq-1")
	if err != nil || !ok {
		t.Fatalf("get inquiry: ok=%v err=%v", ok, err)
	}
	if got.Specifics != inq.Specifics || got.QueryType != inq.QueryType {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	for _, id := range []string{"a", "b", "c"} {
		if err := s.SaveInquiry(domain.Inquiry{ID: id, UserID: "u"}); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}
	items, err := s.ListInquiriesByUser("u", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 || items[0].ID != "c" || items[2].ID != "a" {
		t.Fatalf("expected newest first, got %+v", items)
	}
	limited, err := s.ListInquiriesByUser("u", 2)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 2 || limited[0].ID != "c" {
		t.Fatalf("expected 2 newest, got %+v", limited)
	}
}

func TestMemoryStoreUserRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	if _, ok, err := s.GetUser("fid-1"); err != nil || ok {
		t.Fatalf("expected absent user, ok=%v err=%v", ok, err)
	}
	u := domain.User{ID: "fid-1", SubscriptionStatus: domain.SubscriptionFree}
	if err := s.SaveUser(u); err != nil {
		t.Fatalf("save user: %v", err)
	}
	got, ok, err := s.GetUser("fid-1")
	if err != nil || !ok || got.SubscriptionStatus != domain.SubscriptionFree {
		t.Fatalf("get user: %+v ok=%v err=%v", got, ok, err)
	}
}

func TestMemoryStorePremiumGuideExpiry(t *testing.T) {
	s := NewMemoryStore()
	if err := s.PutPremiumGuide("inq-1", "# secret tactics"); err != nil {
		t.Fatalf("put premium: %v", err)
	}
	content, ok, err := s.GetPremiumGuide("inq-1")
	if err != nil || !ok || content != "# secret tactics" {
		t.Fatalf("get premium: %q ok=%v err=%v", content, ok, err)
	}
	// Force expiry.
	s.mu.Lock()
	entry := s.premium["inq-1"]
	entry.expiresAt = time.Now().Add(-time.Minute)
	s.premium["inq-1"] = entry
	s.mu.Unlock()
	if _, ok, _ := s.GetPremiumGuide("inq-1"); ok {
		t.Fatalf("expired premium guide should be absent")
	}
}
