// Package http exposes the household finance API over JSON.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"carteira/internal/log"
	"carteira/internal/middleware/auth"
	"carteira/internal/middleware/ratelimit"
	"carteira/internal/middleware/security"
	"carteira/internal/middleware/trace"
	"carteira/internal/services"
)

// Services groups the application services the handlers call.
type Services struct {
	Households     *services.HouseholdService
	Accounts       *services.AccountService
	PaymentMethods *services.PaymentMethodService
	Categories     *services.CategoryService
	Transactions   *services.TransactionService
	Dashboard      *services.DashboardService
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures NewServer.
type Options struct {
	Addr      string
	Tokens    *auth.Issuer
	Store     Pinger
	RateLimit ratelimit.Config
	Logger    *log.Logger
}

type Server struct {
	http.Server
	svc      Services
	tokens   *auth.Issuer
	store    Pinger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	logger   *log.Logger
	started  time.Time
	now      func() time.Time

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(svc Services, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}

	s := &Server{
		svc:      svc,
		tokens:   opts.Tokens,
		store:    opts.Store,
		limiter:  ratelimit.NewLimiter(opts.RateLimit),
		detector: security.NewDetector(),
		logger:   logger.WithComponent(log.ComponentHTTP),
		started:  time.Now(),
		now:      time.Now,
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusNotFound, "route not found").Write(w)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	// Routes are registered flat on the root router. Subrouters in
	// gorilla/mux lose the method mismatch of an earlier route, turning a
	// 405 into a 404.
	authed := s.tokens.Middleware(writeError)
	protected := func(h http.HandlerFunc) http.Handler { return authed(h) }
	member := func(h http.HandlerFunc) http.Handler { return authed(s.requireMember(h)) }

	r.HandleFunc("/api/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/catalog/issuers", s.handleIssuers).Methods(http.MethodGet)
	r.HandleFunc("/api/catalog/issuers/{issuer}/products", s.handleProducts).Methods(http.MethodGet)

	r.Handle("/api/households", protected(s.handleListHouseholds)).Methods(http.MethodGet)
	r.Handle("/api/invites/{token}/redeem", protected(s.handleRedeemInvite)).Methods(http.MethodPost)

	const hh = "/api/households/{hid}"
	r.Handle(hh+"/invites", member(s.handleCreateInvite)).Methods(http.MethodPost)

	r.Handle(hh+"/accounts", member(s.handleListAccounts)).Methods(http.MethodGet)
	r.Handle(hh+"/accounts", member(s.handleCreateAccount)).Methods(http.MethodPost)
	r.Handle(hh+"/accounts/{id}", member(s.handleGetAccount)).Methods(http.MethodGet)
	r.Handle(hh+"/accounts/{id}", member(s.handleUpdateAccount)).Methods(http.MethodPatch)
	r.Handle(hh+"/accounts/{id}", member(s.handleDeleteAccount)).Methods(http.MethodDelete)

	r.Handle(hh+"/payment-methods", member(s.handleListPaymentMethods)).Methods(http.MethodGet)
	r.Handle(hh+"/payment-methods", member(s.handleCreatePaymentMethod)).Methods(http.MethodPost)
	r.Handle(hh+"/payment-methods/{id}", member(s.handleDeletePaymentMethod)).Methods(http.MethodDelete)

	r.Handle(hh+"/categories", member(s.handleListCategories)).Methods(http.MethodGet)
	r.Handle(hh+"/categories", member(s.handleCreateCategory)).Methods(http.MethodPost)
	r.Handle(hh+"/categories/{id}", member(s.handleUpdateCategory)).Methods(http.MethodPatch)
	r.Handle(hh+"/categories/{id}", member(s.handleDeleteCategory)).Methods(http.MethodDelete)

	r.Handle(hh+"/transactions", member(s.handleListTransactions)).Methods(http.MethodGet)
	r.Handle(hh+"/transactions", member(s.handleCreateTransaction)).Methods(http.MethodPost)
	r.Handle(hh+"/transactions/{id}", member(s.handleGetTransaction)).Methods(http.MethodGet)
	r.Handle(hh+"/transactions/{id}", member(s.handleUpdateTransaction)).Methods(http.MethodPatch)
	r.Handle(hh+"/transactions/{id}", member(s.handleDeleteTransaction)).Methods(http.MethodDelete)

	r.Handle(hh+"/dashboard", member(s.handleDashboard)).Methods(http.MethodGet)

	var h http.Handler = r
	h = s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(),
			"Rate limit exceeded", log.FieldClientIP, s.detector.ExtractClientIP(r), log.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").Write(w)
	})(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.detector.Middleware(h)
	h = s.tracer.Middleware(h)
	return h
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
