// Package web provides the HTTP server, pages and JSON API for running
// invitation campaigns.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/JonMunkholm/invitespark/internal/config"
	"github.com/JonMunkholm/invitespark/internal/core"
	mw "github.com/JonMunkholm/invitespark/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP server for the invitation application.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
	limiter *rateLimiter
}

// NewServer creates a Server with routes and middleware configured from cfg.
func NewServer(service *core.Service, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.limiter = newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(s.limiter.middleware)
	}
}

func (s *Server) setupRoutes() {
	// Pages
	s.router.Get("/", s.handleHome)
	s.router.Get("/upload", s.handleUploadPage)
	s.router.Post("/upload", s.handleUpload)
	s.router.Get("/template", s.handleStandaloneTemplate)
	s.router.Get("/analytics", s.handleSampleAnalytics)

	s.router.Route("/campaigns/{campaignID}", func(r chi.Router) {
		r.Get("/", s.handleCampaign)
		r.Get("/template", s.handleTemplateEditor)
		r.Post("/template", s.handleSaveTemplate)
		r.Get("/analytics", s.handleCampaignAnalytics)
		r.Post("/send", s.handleSend)
		r.Get("/export", s.handleExportRecipients)
		r.Get("/analytics/export", s.handleExportCampaignData)
	})

	// Links embedded in sent emails
	s.router.Get("/r/{campaignID}/{recipientID}/rsvp", s.handleTrackPrompt(core.StatusRSVP))
	s.router.Post("/r/{campaignID}/{recipientID}/rsvp", s.handleTrack(core.StatusRSVP))
	s.router.Get("/r/{campaignID}/{recipientID}/unsubscribe", s.handleTrackPrompt(core.StatusUnsubscribed))
	s.router.Post("/r/{campaignID}/{recipientID}/unsubscribe", s.handleTrack(core.StatusUnsubscribed))

	// Downloads
	s.router.Get("/sample.csv", s.handleSampleCSV)
	s.router.Get("/analytics/export", s.handleExportSampleData)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(mw.APIKeyAuth(&s.cfg.Security))

			r.Get("/placeholders", s.handleAPIPlaceholders)
			r.Post("/decode", s.handleAPIDecode)
			r.Post("/encode", s.handleAPIEncode)
			r.Post("/render", s.handleAPIRender)

			r.Post("/campaigns", s.handleAPICreateCampaign)
			r.Get("/campaigns/{campaignID}", s.handleAPICampaign)
			r.Get("/campaigns/{campaignID}/recipients", s.handleAPIRecipients)
			r.Get("/campaigns/{campaignID}/stats", s.handleAPIStats)
			r.Put("/campaigns/{campaignID}/template", s.handleAPISaveTemplate)
			r.Get("/campaigns/{campaignID}/preview", s.handleAPIPreview)
			r.Post("/campaigns/{campaignID}/send", s.handleAPISend)
			r.Post("/campaigns/{campaignID}/recipients/{recipientID}/status", s.handleAPIUpdateStatus)
		})
	})
}

// Start begins listening for HTTP requests on the configured address.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("http server listening", "addr", s.server.Addr)
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				// htmx is loaded from unpkg; the layout uses one inline style block.
				w.Header().Set("Content-Security-Policy",
					"default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimiter is a fixed-window request counter per client IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int
	window   time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		done:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// cleanup drops visitors idle for two windows until stop is called.
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if now.Sub(v.lastReset) > rl.window*2 {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// allow consumes one request from ip's window.
func (rl *rateLimiter) allow(ip string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[ip]
	if !ok || now.Sub(v.lastReset) > rl.window {
		rl.visitors[ip] = &visitor{tokens: rl.rate - 1, lastReset: now}
		return true
	}
	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r), time.Now()) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeError writes a JSON error response carrying the mapped user message.
func writeError(w http.ResponseWriter, status int, message string) {
	slog.Warn("http error", "status", status, "message", message)
	respondErrorJSON(w, core.MapError(errors.New(message)), status)
}

// writeJSON encodes v as JSON and writes it to w.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", "error", err)
	}
}
