package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"towerguide/internal/app"
	"towerguide/pkg/domain"
	"towerguide/pkg/store"
)

type stubGenerator struct {
	calls atomic.Int32
	text  string
	err   error
}

func (g *stubGenerator) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	g.calls.Add(1)
	return g.text, g.err
}

type stubPayments struct {
	secret string
	err    error
}

func (p *stubPayments) CreateIntent(ctx context.Context, guideID, userID string, price float64) (string, error) {
	return p.secret, p.err
}

func newTestServer(t *testing.T, cfg Config, gen *stubGenerator) (*httptest.Server, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	a, err := app.New(app.Config{Generator: gen, Store: st})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	cfg.App = a
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, st
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestGenerateGuideSuccess(t *testing.T) {
	gen := &stubGenerator{text: "# Wave 15\n\nUse splash towers."}
	ts, st := newTestServer(t, Config{}, gen)

	resp := postJSON(t, ts.URL+"/api/generate-guide", map[string]string{
		"query":     "best build for wave 15",
		"queryType": "build",
		"userId":    "user-1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result domain.GuideResult
	decodeBody(t, resp, &result)
	if result.Guide != gen.text || result.IsPremium || result.Difficulty != domain.DifficultyIntermediate {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Tags) != 3 || result.Tags[0] != "build" || result.Tags[1] != "strategy" || result.Tags[2] != "tower-defense" {
		t.Fatalf("unexpected tags: %v", result.Tags)
	}

	inq, ok, err := st.GetInquiry(result.InquiryID)
	if err != nil || !ok {
		t.Fatalf("inquiry not stored: ok=%v err=%v", ok, err)
	}
	if inq.Specifics != "best build for wave 15" || inq.QueryType != domain.CategoryBuild {
		t.Fatalf("unexpected record: %+v", inq)
	}
}

func TestGenerateGuideMissingFields(t *testing.T) {
	gen := &stubGenerator{text: "text"}
	ts, _ := newTestServer(t, Config{}, gen)

	resp := postJSON(t, ts.URL+"/api/generate-guide", map[string]string{
		"query":     "",
		"queryType": "general",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var body map[string]string
	decodeBody(t, resp, &body)
	if body["error"] != "Query and queryType are required" {
		t.Fatalf("unexpected error body: %v", body)
	}
	if gen.calls.Load() != 0 {
		t.Fatalf("generator must not be called on validation failure")
	}
}

func TestGenerateGuideUnknownQueryType(t *testing.T) {
	gen := &stubGenerator{text: "text"}
	ts, _ := newTestServer(t, Config{}, gen)

	resp := postJSON(t, ts.URL+"/api/generate-guide", map[string]string{
		"query":     "pvp tips",
		"queryType": "pvp",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var body map[string]string
	decodeBody(t, resp, &body)
	if body["error"] != "invalid queryType" {
		t.Fatalf("unexpected error body: %v", body)
	}
	if gen.calls.Load() != 0 {
		t.Fatalf("generator must not be called for unknown category")
	}
}

func TestGenerateGuideUpstreamFailure(t *testing.T) {
	gen := &stubGenerator{err: errors.New("model overloaded")}
	ts, st := newTestServer(t, Config{}, gen)

	resp := postJSON(t, ts.URL+"/api/generate-guide", map[string]string{
		"query":     "boss tips",
		"queryType": "boss",
		"userId":    "user-1",
	})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	var body map[string]string
	decodeBody(t, resp, &body)
	if body["error"] != "Failed to generate guide" {
		t.Fatalf("unexpected error body: %v", body)
	}
	items, err := st.ListInquiriesByUser("user-1", 0)
	if err != nil || len(items) != 0 {
		t.Fatalf("no inquiry should exist after generation failure, got %+v", items)
	}
}

func TestGenerateGuideRateLimited(t *testing.T) {
	redis := miniredis.RunT(t)
	gen := &stubGenerator{text: "text"}
	ts, _ := newTestServer(t, Config{
		RedisAddr:                  redis.Addr(),
		GenerateRateLimitPerMinute: 1,
	}, gen)

	resp := postJSON(t, ts.URL+"/api/generate-guide", map[string]string{"query": "q", "queryType": "general"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first request expected 200, got %d", resp.StatusCode)
	}
	resp = postJSON(t, ts.URL+"/api/generate-guide", map[string]string{"query": "q", "queryType": "general"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second request expected 429, got %d", resp.StatusCode)
	}
	if got := gen.calls.Load(); got != 1 {
		t.Fatalf("generator should run once, got %d calls", got)
	}
}

func TestPaymentNotConfigured(t *testing.T) {
	ts, _ := newTestServer(t, Config{}, &stubGenerator{text: "text"})

	resp := postJSON(t, ts.URL+"/api/payment", map[string]any{"guideId": "meta-builds-2024", "price": 2.99})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
	var body map[string]string
	decodeBody(t, resp, &body)
	if body["error"] != "Payment service not configured" {
		t.Fatalf("unexpected error body: %v", body)
	}
}

func TestPaymentCreatesIntent(t *testing.T) {
	ts, _ := newTestServer(t, Config{Payments: &stubPayments{secret: "pi_secret_123"}}, &stubGenerator{text: "text"})

	resp := postJSON(t, ts.URL+"/api/payment", map[string]any{
		"guideId": "meta-builds-2024",
		"price":   2.99,
		"userId":  "fid-1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]string
	decodeBody(t, resp, &body)
	if body["clientSecret"] != "pi_secret_123" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestPaymentRejectsMissingFields(t *testing.T) {
	ts, _ := newTestServer(t, Config{Payments: &stubPayments{secret: "pi_secret_123"}}, &stubGenerator{text: "text"})

	resp := postJSON(t, ts.URL+"/api/payment", map[string]any{"price": 2.99})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestPremiumGuideLookup(t *testing.T) {
	gen := &stubGenerator{text: "# Boss tactics"}
	ts, _ := newTestServer(t, Config{}, gen)

	resp := postJSON(t, ts.URL+"/api/generate-guide", map[string]string{
		"query":     "boss fight tips",
		"queryType": "boss",
	})
	var result domain.GuideResult
	decodeBody(t, resp, &result)
	if !result.IsPremium {
		t.Fatalf("boss guide should be premium")
	}

	getResp, err := http.Get(ts.URL + "/api/guides/premium/" + result.InquiryID)
	if err != nil {
		t.Fatalf("get premium: %v", err)
	}
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", getResp.StatusCode)
	}
	var body map[string]string
	decodeBody(t, getResp, &body)
	if body["guide"] != "# Boss tactics" {
		t.Fatalf("unexpected premium body: %v", body)
	}

	missing, err := http.Get(ts.URL + "/api/guides/premium/nope")
	if err != nil {
		t.Fatalf("get missing premium: %v", err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", missing.StatusCode)
	}
}

func TestGuideCatalog(t *testing.T) {
	ts, _ := newTestServer(t, Config{}, &stubGenerator{text: "text"})

	resp, err := http.Get(ts.URL + "/api/guides")
	if err != nil {
		t.Fatalf("get guides: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Guides []domain.Guide `json:"guides"`
	}
	decodeBody(t, resp, &body)
	if len(body.Guides) != 3 {
		t.Fatalf("expected 3 featured guides, got %d", len(body.Guides))
	}
}

func TestUserProfileAndInquiries(t *testing.T) {
	gen := &stubGenerator{text: "text"}
	ts, _ := newTestServer(t, Config{}, gen)

	resp := postJSON(t, ts.URL+"/api/users", map[string]string{"userId": "fid-7"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register expected 200, got %d", resp.StatusCode)
	}
	var user domain.User
	decodeBody(t, resp, &user)
	if user.ID != "fid-7" || user.SubscriptionStatus != domain.SubscriptionFree {
		t.Fatalf("unexpected user: %+v", user)
	}

	resp = postJSON(t, ts.URL+"/api/generate-guide", map[string]string{
		"query":     "economy tips",
		"queryType": "resource",
		"userId":    "fid-7",
	})
	resp.Body.Close()

	listResp, err := http.Get(ts.URL + "/api/users/fid-7/inquiries")
	if err != nil {
		t.Fatalf("list inquiries: %v", err)
	}
	var listBody struct {
		Inquiries []domain.Inquiry `json:"inquiries"`
	}
	decodeBody(t, listResp, &listBody)
	if len(listBody.Inquiries) != 1 || listBody.Inquiries[0].Specifics != "economy tips" {
		t.Fatalf("unexpected inquiries: %+v", listBody.Inquiries)
	}

	missing, err := http.Get(ts.URL + "/api/users/unknown-user")
	if err != nil {
		t.Fatalf("get unknown user: %v", err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", missing.StatusCode)
	}
}
