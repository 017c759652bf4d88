package http

import (
	"net/http"

	"carteira/internal/core"
	"carteira/internal/services"
)

type accountRequest struct {
	Name           string           `json:"name"`
	Type           core.AccountType `json:"type"`
	IssuerID       string           `json:"issuer_id"`
	Color          string           `json:"color"`
	InitialBalance amountField      `json:"initial_balance"`
}

type accountPatchRequest struct {
	Name  *string           `json:"name"`
	Type  *core.AccountType `json:"type"`
	Color *string           `json:"color"`
}

type paymentMethodRequest struct {
	AccountID  string          `json:"account_id"`
	Name       string          `json:"name"`
	Type       core.MethodType `json:"type"`
	Brand      string          `json:"brand"`
	Last4      string          `json:"last4"`
	ClosingDay int             `json:"closing_day"`
	Color      string          `json:"color"`
	ProductID  string          `json:"product_id"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.svc.Accounts.List(r.Context(), householdID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if accounts == nil {
		accounts = []services.AccountView{}
	}
	NewResponse().JSON(accounts).Write(w)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	a, err := s.svc.Accounts.Get(r.Context(), householdID(r), pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(a).Write(w)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	balance, _, err := req.InitialBalance.Money("initial_balance")
	if err != nil {
		writeError(w, r, err)
		return
	}

	a, err := s.svc.Accounts.Create(r.Context(), householdID(r), caller(r), services.NewAccount{
		Name:           req.Name,
		Type:           req.Type,
		IssuerID:       req.IssuerID,
		Color:          req.Color,
		InitialBalance: balance,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(a).Write(w)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := s.svc.Accounts.Update(r.Context(), householdID(r), pathID(r), services.AccountPatch{
		Name:  req.Name,
		Type:  req.Type,
		Color: req.Color,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(a).Write(w)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Accounts.Delete(r.Context(), householdID(r), pathID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := s.svc.PaymentMethods.List(r.Context(), householdID(r), r.URL.Query().Get("account_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if methods == nil {
		methods = []core.PaymentMethod{}
	}
	NewResponse().JSON(methods).Write(w)
}

func (s *Server) handleCreatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req paymentMethodRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	pm, err := s.svc.PaymentMethods.Create(r.Context(), householdID(r), services.NewPaymentMethod{
		AccountID:  req.AccountID,
		Name:       req.Name,
		Type:       req.Type,
		Brand:      req.Brand,
		Last4:      req.Last4,
		ClosingDay: req.ClosingDay,
		Color:      req.Color,
		ProductID:  req.ProductID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(pm).Write(w)
}

func (s *Server) handleDeletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.PaymentMethods.Delete(r.Context(), householdID(r), pathID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusNoContent).Write(w)
}
