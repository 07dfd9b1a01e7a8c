// Package devbackend is an in-memory fixture server speaking the
// back-office REST API. It backs local development and the API tests.
package devbackend

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kodstechnologies/lm-backoffice/internal/models"
)

// DevOTP is the OTP accepted for every admin.
const DevOTP = "123456"

// Admin is a console user that can sign in.
type Admin struct {
	Email string
	Phone string
}

// Server holds the fixture data.
type Server struct {
	mu       sync.Mutex
	secret   []byte
	logger   *log.Logger
	now      func() time.Time
	admins   []Admin
	data     map[models.Entity][]models.Record
	offers   map[string][]models.Record
	issued   map[string]string // phone -> pending OTP
	tokenTTL time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithSecret sets the HS256 signing key for issued tokens.
func WithSecret(secret []byte) Option {
	return func(s *Server) { s.secret = secret }
}

// WithLogger enables request logging.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithClock fixes the server clock (fixture dates and token expiry).
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithAdmins replaces the admin accounts.
func WithAdmins(admins ...Admin) Option {
	return func(s *Server) { s.admins = admins }
}

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(d time.Duration) Option {
	return func(s *Server) { s.tokenTTL = d }
}

// New creates a server seeded with fixture data.
func New(opts ...Option) *Server {
	s := &Server{
		secret:   []byte("dev-backend-secret"),
		logger:   log.New(io.Discard),
		now:      time.Now,
		admins:   []Admin{{Email: "admin@lm.local", Phone: "9876543210"}},
		issued:   make(map[string]string),
		tokenTTL: 12 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.seed()
	return s
}

// Router returns the HTTP handler mounted at the API root.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	// authentication
	r.Post("/email-verification", s.handleEmailVerify)
	r.Post("/resend-otp", s.handleResendOTP)
	r.Post("/otp-verification", s.handleVerifyOTP)

	// reads
	r.Get("/all-offers/{leadId}", s.handleOffers)
	r.Get("/get-summary/{leadId}", s.handleSummary)
	r.Get("/get-filtered-data", s.handleFilteredData)
	r.Get("/get-filtered-loans", s.handleLoansByType)
	r.Get("/get-all-merchants", s.listHandler(models.EntityMerchant))
	r.Get("/get-stores-by-merchant/{id}", s.handleStoresByMerchant)
	r.Get("/get-all-stores", s.listHandler(models.EntityStore))
	r.Get("/get-store-by-id/{id}", s.getHandler(models.EntityStore))
	r.Get("/all-datatstores", s.listHandler(models.EntityStoreGroup))
	r.Get("/get-data-store-by-id/{id}", s.getHandler(models.EntityStoreGroup))
	r.Get("/all-affiliates", s.listHandler(models.EntityAffiliate))
	r.Get("/get-affiliate-by-id/{id}", s.getHandler(models.EntityAffiliate))
	r.Get("/all-accounts", s.listHandler(models.EntityAccount))
	r.Get("/get-account-by-id/{id}", s.getHandler(models.EntityAccount))
	r.Get("/all-orders", s.listHandler(models.EntityOrder))
	r.Get("/search-orders-by-phone-number", s.handleSearchOrders)
	r.Get("/all-customers", s.handleCustomers)
	r.Get("/search-customers-by-phone", s.handleSearchCustomers)

	// unauthenticated writes, as served by the production backend
	r.Post("/create-store", s.createHandler(models.EntityStoreGroup))
	r.Put("/edit-store-groups/{id}", s.updateHandler(models.EntityStoreGroup))
	r.Put("/update-order-by-id/{id}", s.handleUpdateOrder)
	r.Post("/upload-store/{merchantId}", s.handleUploadStores)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/all-details", s.handleAllDetails)
		r.Post("/create-merchant", s.createHandler(models.EntityMerchant))
		r.Post("/merchants/{id}/create-store", s.handleCreateStore)
		r.Put("/stores/{id}", s.handleUpdateStore)
		r.Post("/create-affiliate", s.createHandler(models.EntityAffiliate))
		r.Put("/edit-affiliates/{id}", s.updateHandler(models.EntityAffiliate))
		r.Post("/create-account", s.createHandler(models.EntityAccount))
		r.Put("/edit-accounts/{id}", s.updateHandler(models.EntityAccount))
	})

	return r
}

// IssueToken signs a token for subject.
func (s *Server) IssueToken(subject string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// requireAuth rejects requests without a valid bearer token
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		_, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return s.secret, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithTimeFunc(s.now),
		)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token: "+err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info(r.Method, "path", r.URL.Path, "status", ww.Status(),
			"request_id", r.Header.Get("X-Request-ID"), "elapsed", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "message": msg})
}

func writeList(w http.ResponseWriter, records []models.Record) {
	if records == nil {
		records = []models.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": records})
}

func writeRecord(w http.ResponseWriter, status int, r models.Record) {
	writeJSON(w, status, map[string]any{"success": true, "data": r})
}
