// Package mockapi serves a scripted, in-memory version of the MindScape API
// for local development and tests. Replies and sentiment come from keyword
// rules; nothing is persisted.
package mockapi

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"mindscape/internal/logging"
)

// BasePath is where the API is mounted
const BasePath = "/api/v1"

const (
	cookieAccess  = "accessToken"
	cookieRefresh = "refreshToken"

	headerTokenRefreshed = "X-Token-Refreshed"
)

// Server is the mock API. Create it with NewServer and mount Handler.
type Server struct {
	logger    zerolog.Logger
	now       func() time.Time
	newOTP    func() string
	accessTTL time.Duration
	validate  *validator.Validate

	mu          sync.Mutex
	accounts    map[string]*account
	signupOTPs  map[string]string
	resetOTPs   map[string]string
	resetTokens map[string]string
	access      map[string]grant
	refresh     map[string]string
	sessions    map[string]*session
	emotions    []*emotion
}

// Option customises a Server
type Option func(*Server)

// WithLogger attaches a logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithOTPGenerator replaces the random six digit code generator
func WithOTPGenerator(fn func() string) Option {
	return func(s *Server) { s.newOTP = fn }
}

// WithAccessTTL sets how long an access token lasts before the refresh
// token has to be used
func WithAccessTTL(ttl time.Duration) Option {
	return func(s *Server) { s.accessTTL = ttl }
}

// WithUser seeds an account
func WithUser(fullName, email, password string) Option {
	return func(s *Server) {
		s.accounts[strings.ToLower(email)] = &account{FullName: fullName, Email: email, Password: password}
	}
}

// NewServer creates an empty mock API
func NewServer(opts ...Option) *Server {
	s := &Server{
		logger:      zerolog.Nop(),
		now:         time.Now,
		newOTP:      randomOTP,
		accessTTL:   15 * time.Minute,
		validate:    validator.New(),
		accounts:    make(map[string]*account),
		signupOTPs:  make(map[string]string),
		resetOTPs:   make(map[string]string),
		resetTokens: make(map[string]string),
		access:      make(map[string]grant),
		refresh:     make(map[string]string),
		sessions:    make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router with every endpoint mounted under BasePath
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.HTTPMiddleware(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]string{"status": "ok"}, "")
	})

	r.Route(BasePath, func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/send-otp", s.handleSendOTP)
			r.Post("/verify-otp", s.handleVerifyOTP)
			r.Post("/login", s.handleLogin)
			r.Post("/register", s.handleRegister)
			r.Post("/forgot-password/send-otp", s.handleSendResetOTP)
			r.Post("/forgot-password/verify-otp", s.handleVerifyResetOTP)
			r.Post("/forgot-password/reset", s.handleResetPassword)
			r.Get("/google", s.handleOAuth)
			r.Get("/facebook", s.handleOAuth)

			r.Group(func(r chi.Router) {
				r.Use(s.requireUser)
				r.Get("/me", s.handleMe)
				r.Patch("/update-profile", s.handleUpdateProfile)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)

			r.Get("/chat/sessions", s.handleListSessions)
			r.Post("/chat/sessions", s.handleCreateSession)
			r.Get("/chat/sessions/{sessionID}/messages", s.handleGetMessages)
			r.Post("/chat/message", s.handleSendMessage)

			r.Post("/emotions", s.handleCreateEmotion)
			r.Get("/emotions", s.handleListEmotions)
			r.Get("/analytics/trends", s.handleTrends)

			r.Get("/dashboard/stats", s.handleDashboardStats)
			r.Get("/dashboard/greeting", s.handleDashboardGreeting)
			r.Get("/dashboard/activities", s.handleDashboardActivities)

			r.Get("/resources", s.handleResources)
			r.Get("/relax/videos", s.handleRelaxVideos)
		})
	})

	return r
}

// envelope mirrors the response wrapper of the real API
type envelope struct {
	Success    bool        `json:"success"`
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Msg        string      `json:"msg"`
}

func respond(w http.ResponseWriter, status int, data interface{}, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Success:    status >= 200 && status < 300,
		StatusCode: status,
		Data:       data,
		Msg:        msg,
	})
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respond(w, status, nil, msg)
}

// decode reads a JSON body into dst and validates it
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "Invalid request"
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "A valid email is required"
	case "min", "max":
		return fmt.Sprintf("%s must be between 1 and 5", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

type ctxKey struct{}

// requireUser resolves the caller from the access token cookie or bearer
// header. An expired access token with a valid refresh cookie gets a fresh
// access cookie and a 401 flagged with X-Token-Refreshed so the client
// replays the request once.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			if c, err := r.Cookie(cookieAccess); err == nil {
				token = c.Value
			}
		}

		s.mu.Lock()
		g, ok := s.access[token]
		if ok && s.now().Before(g.expires) {
			s.mu.Unlock()
			ctx := context.WithValue(r.Context(), ctxKey{}, g.email)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		if c, err := r.Cookie(cookieRefresh); err == nil {
			if email, ok := s.refresh[c.Value]; ok {
				access := s.grantAccessLocked(email)
				s.mu.Unlock()
				http.SetCookie(w, sessionCookie(cookieAccess, access))
				w.Header().Set(headerTokenRefreshed, "true")
				logger := logging.Ctx(r.Context())
				logger.Debug().Msg("access token refreshed")
				respondError(w, http.StatusUnauthorized, "Access token refreshed")
				return
			}
		}
		s.mu.Unlock()

		respondError(w, http.StatusUnauthorized, "Unauthorized")
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func currentEmail(ctx context.Context) string {
	email, _ := ctx.Value(ctxKey{}).(string)
	return email
}

func sessionCookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func randomOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64())
}
