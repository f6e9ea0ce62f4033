package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"towerguide/internal/app"
	"towerguide/internal/ratelimit"
	"towerguide/internal/util"
	"towerguide/pkg/payment"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App *app.App

	// Payments is nil when no Stripe key is configured; the payment
	// endpoint then answers 503.
	Payments payment.IntentCreator

	// Rate limiting for guide generation; disabled when RedisAddr is empty.
	RedisAddr                  string
	RedisPassword              string
	GenerateRateLimitPerMinute int
}

// Server exposes the HTTP endpoints of the guide backend.
type Server struct {
	app             *app.App
	payments        payment.IntentCreator
	mux             *http.ServeMux
	generateLimiter *ratelimit.FixedWindowLimiter
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, fmt.Errorf("app required")
	}
	var limiter *ratelimit.FixedWindowLimiter
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		limit := cfg.GenerateRateLimitPerMinute
		if limit <= 0 {
			limit = 10
		}
		var err error
		limiter, err = ratelimit.NewRedisFixedWindowLimiter(
			cfg.RedisAddr, cfg.RedisPassword, "towerguide:ratelimit:generate", limit, time.Minute)
		if err != nil {
			return nil, fmt.Errorf("init generate limiter: %w", err)
		}
	}
	s := &Server{
		app:             cfg.App,
		payments:        cfg.Payments,
		mux:             http.NewServeMux(),
		generateLimiter: limiter,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler with middleware applied.
func (s *Server) Router() http.Handler {
	handler := util.WithRequestLog(s.mux)
	handler = util.WithRequestID(handler)
	handler = util.WithCORS(handler)
	return util.WithSecurityHeaders(handler)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	s.mux.HandleFunc("/api/generate-guide", s.handleGenerateGuide)
	s.mux.HandleFunc("/api/payment", s.handlePayment)
	s.mux.HandleFunc("/api/inquiries", s.handleInquiries)
	s.mux.HandleFunc("/api/guides", s.handleGuides)
	s.mux.HandleFunc("/api/guides/premium/", s.handlePremiumGuide)
	s.mux.HandleFunc("/api/users", s.handleRegisterUser)
	s.mux.HandleFunc("/api/users/", s.handleUserByID)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type generateGuideRequest struct {
	Query     string `json:"query"`
	QueryType string `json:"queryType"`
	UserID    string `json:"userId"`
}

func (s *Server) handleGenerateGuide(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.generateLimiter != nil && !s.generateLimiter.Allow(clientIP(r)) {
		w.Header().Set("Retry-After", "60")
		writeError(w, http.StatusTooManyRequests, "too many requests, slow down")
		return
	}
	var req generateGuideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Query and queryType are required")
		return
	}
	result, err := s.app.GenerateGuide(r.Context(), app.GuideRequest{
		Query:     req.Query,
		QueryType: req.QueryType,
		UserID:    req.UserID,
	})
	if err != nil {
		s.writeGuideError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeGuideError keeps the wire response generic while logging the
// underlying failure kind for operators.
func (s *Server) writeGuideError(w http.ResponseWriter, r *http.Request, err error) {
	logger := util.LoggerFromContext(r.Context())
	switch {
	case errors.Is(err, app.ErrInvalidQueryType):
		writeError(w, http.StatusBadRequest, "invalid queryType")
	case errors.Is(err, app.ErrValidation):
		writeError(w, http.StatusBadRequest, "Query and queryType are required")
	case errors.Is(err, app.ErrGeneration):
		logger.Error("guide_generation_failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate guide")
	default:
		logger.Error("guide_request_failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate guide")
	}
}

type paymentRequest struct {
	GuideID string  `json:"guideId"`
	Price   float64 `json:"price"`
	UserID  string  `json:"userId"`
}

func (s *Server) handlePayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.payments == nil {
		writeError(w, http.StatusServiceUnavailable, "Payment service not configured")
		return
	}
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GuideID == "" || req.Price <= 0 {
		writeError(w, http.StatusBadRequest, "guideId and price are required")
		return
	}
	clientSecret, err := s.payments.CreateIntent(r.Context(), req.GuideID, req.UserID, req.Price)
	if err != nil {
		util.LoggerFromContext(r.Context()).Error("payment_intent_failed", "guide_id", req.GuideID, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to create payment intent")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"clientSecret": clientSecret})
}

func (s *Server) handleInquiries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	s.writeInquiries(w, r, userID, limit)
}

func (s *Server) writeInquiries(w http.ResponseWriter, r *http.Request, userID string, limit int) {
	items, err := s.app.ListInquiries(userID, limit)
	if err != nil {
		util.LoggerFromContext(r.Context()).Error("inquiry_list_failed", "user_id", userID, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to list inquiries")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"inquiries": items})
}

func (s *Server) handleGuides(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	guides, err := s.app.ListGuides()
	if err != nil {
		util.LoggerFromContext(r.Context()).Error("guide_catalog_failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to list guides")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"guides": guides})
}

func (s *Server) handlePremiumGuide(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	inquiryID := strings.TrimPrefix(r.URL.Path, "/api/guides/premium/")
	if inquiryID == "" || strings.Contains(inquiryID, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	content, ok, err := s.app.GetPremiumGuide(inquiryID)
	if err != nil {
		util.LoggerFromContext(r.Context()).Error("premium_guide_failed", "inquiry_id", inquiryID, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to load premium guide")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "premium guide not found or expired")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"inquiryId": inquiryID, "guide": content})
}

type registerUserRequest struct {
	UserID string `json:"userId"`
}

func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req registerUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	user, err := s.app.RegisterUser(req.UserID)
	if err != nil {
		if errors.Is(err, app.ErrValidation) {
			writeError(w, http.StatusBadRequest, "userId is required")
			return
		}
		util.LoggerFromContext(r.Context()).Error("user_register_failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUserByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/users/")
	if userID, ok := strings.CutSuffix(rest, "/inquiries"); ok {
		s.writeInquiries(w, r, userID, 0)
		return
	}
	if rest == "" || strings.Contains(rest, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	user, ok, err := s.app.GetUser(rest)
	if err != nil {
		util.LoggerFromContext(r.Context()).Error("user_fetch_failed", "user_id", rest, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to load user")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func clientIP(r *http.Request) string {
	if xfwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xfwd != "" {
		parts := strings.Split(xfwd, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
