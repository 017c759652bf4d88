package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"carteira/internal/catalog"
	"carteira/internal/core"
	"carteira/internal/log"
	"carteira/internal/ports"
)

type registerRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	HouseholdName string `json:"household_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      core.User       `json:"user"`
	Household *core.Household `json:"household,omitempty"`
}

func (s *Server) session(u core.User) (sessionResponse, error) {
	token, expires, err := s.tokens.Sign(u.ID, u.Email)
	if err != nil {
		return sessionResponse{}, err
	}
	return sessionResponse{Token: token, ExpiresAt: expires, User: u}, nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, household, err := s.svc.Households.Register(r.Context(), req.Email, req.Password, req.HouseholdName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := s.session(user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp.Household = &household
	NewResponse().Status(http.StatusCreated).JSON(resp).Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.svc.Households.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentAuth).WarnContext(r.Context(),
			"Login rejected", log.FieldOperation, log.OpLogin, log.FieldError, err.Error())
		writeError(w, r, err)
		return
	}
	resp, err := s.session(user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(resp).Write(w)
}

func (s *Server) handleListHouseholds(w http.ResponseWriter, r *http.Request) {
	ms, err := s.svc.Households.Memberships(r.Context(), caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if ms == nil {
		ms = []core.Membership{}
	}
	NewResponse().JSON(ms).Write(w)
}

func (s *Server) handleCreateInvite(w http.ResponseWriter, r *http.Request) {
	inv, err := s.svc.Households.CreateInvite(r.Context(), householdID(r), caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(inv).Write(w)
}

func (s *Server) handleRedeemInvite(w http.ResponseWriter, r *http.Request) {
	m, err := s.svc.Households.RedeemInvite(r.Context(), mux.Vars(r)["token"], caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(m).Write(w)
}

func (s *Server) handleIssuers(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(catalog.Issuers()).Write(w)
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["issuer"]
	if _, ok := catalog.LookupIssuer(id); !ok {
		writeError(w, r, fmt.Errorf("issuer %q: %w", id, ports.ErrNotFound))
		return
	}
	products := catalog.ProductsByIssuer(id)
	if products == nil {
		products = []catalog.Product{}
	}
	NewResponse().JSON(products).Write(w)
}
