package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"carteira/internal/log"
	"carteira/internal/middleware/auth"
	"carteira/internal/middleware/trace"
)

// requireMember rejects callers who do not belong to the {hid} household.
func (s *Server) requireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := auth.PrincipalFrom(r.Context())
		if !ok {
			writeError(w, r, auth.ErrMissingToken)
			return
		}
		hid := mux.Vars(r)["hid"]
		m, err := s.svc.Households.Authorize(r.Context(), hid, p.UserID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		logger := log.FromContext(r.Context()).With(log.FieldHouseholdID, hid, log.FieldUserID, p.UserID, "role", m.Role)
		ctx := log.WithLogger(r.Context(), logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// caller returns the authenticated user id. Routes behind the auth
// middleware always have one.
func caller(r *http.Request) string {
	p, _ := auth.PrincipalFrom(r.Context())
	return p.UserID
}

func householdID(r *http.Request) string {
	return mux.Vars(r)["hid"]
}

func pathID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks the store and reports middleware state.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]any{}

	if s.store == nil {
		checks["store"] = "not_configured"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else if err := s.store.Ping(ctx); err != nil {
		log.FromContext(ctx).WithComponent(log.ComponentStorage).WarnContext(ctx, "Readiness check failed",
			log.FieldError, err.Error(), log.FieldRequestID, trace.GetRequestID(ctx))
		checks["store"] = "failed: " + err.Error()
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	checks["rate_limiter"] = map[string]any{"active_clients": s.limiter.ActiveClients()}
	checks["requests_served"] = s.tracer.Total()
	checks["suspicious_requests"] = s.detector.Suspicious()

	NewResponse().Status(code).JSON(map[string]any{
		"status":    status,
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}
