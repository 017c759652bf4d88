package http

import (
	"net/http"

	"carteira/internal/core"
	"carteira/internal/services"
)

type categoryRequest struct {
	Name  string               `json:"name"`
	Kind  core.TransactionKind `json:"kind"`
	Color string               `json:"color"`
}

type categoryPatchRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

type transactionRequest struct {
	AccountID       string               `json:"account_id"`
	PaymentMethodID string               `json:"payment_method_id"`
	CategoryID      string               `json:"category_id"`
	Description     string               `json:"description"`
	Amount          amountField          `json:"amount"`
	Kind            core.TransactionKind `json:"kind"`
	OccurredOn      string               `json:"occurred_on"`
	Notes           string               `json:"notes"`
	Installments    int                  `json:"installments"`
	Recurring       bool                 `json:"recurring"`
}

type transactionPatchRequest struct {
	Description *string `json:"description"`
	Notes       *string `json:"notes"`
	CategoryID  *string `json:"category_id"`
}

type deletedResponse struct {
	Deleted []string `json:"deleted"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.svc.Categories.List(r.Context(), householdID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if cats == nil {
		cats = []core.Category{}
	}
	NewResponse().JSON(cats).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.svc.Categories.Create(r.Context(), householdID(r), req.Name, req.Kind, req.Color)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(c).Write(w)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.svc.Categories.Update(r.Context(), householdID(r), pathID(r), services.CategoryPatch{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(c).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Categories.Delete(r.Context(), householdID(r), pathID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusNoContent).Write(w)
}

// handleListTransactions filters by billing date: from/to, or year/month
// defaulting to the current month.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	period, err := ParsePeriod(q, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts := services.ListOptions{
		Period:          period,
		AccountID:       q.Get("account_id"),
		PaymentMethodID: q.Get("payment_method_id"),
		Kind:            core.TransactionKind(q.Get("kind")),
	}
	ts, err := s.svc.Transactions.List(r.Context(), householdID(r), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if ts == nil {
		ts = []core.Transaction{}
	}
	NewResponse().JSON(ts).Write(w)
}

// handleCreateTransaction returns every row written, so an installment
// purchase answers with the whole plan.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	amount, present, err := req.Amount.Money("amount")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !present {
		writeError(w, r, core.Invalid("amount", core.ErrInvalidAmount))
		return
	}
	occurred, err := parseDateField("occurred_on", req.OccurredOn, core.DateOf(s.now()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.svc.Transactions.Create(r.Context(), householdID(r), caller(r), services.NewTransaction{
		AccountID:       req.AccountID,
		PaymentMethodID: req.PaymentMethodID,
		CategoryID:      req.CategoryID,
		Description:     req.Description,
		Amount:          amount,
		Kind:            req.Kind,
		OccurredOn:      occurred,
		Notes:           req.Notes,
		Installments:    req.Installments,
		Recurring:       req.Recurring,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(created).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Transactions.Get(r.Context(), householdID(r), pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(t).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.svc.Transactions.Update(r.Context(), householdID(r), pathID(r), services.TransactionPatch{
		Description: req.Description,
		Notes:       req.Notes,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(t).Write(w)
}

// handleDeleteTransaction answers with every removed id. Deleting a plan's
// parent removes the whole plan.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ids, err := s.svc.Transactions.Delete(r.Context(), householdID(r), pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(deletedResponse{Deleted: ids}).Write(w)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	mp, err := ParseMonthParams(r.URL.Query(), s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	summary, err := s.svc.Dashboard.Month(r.Context(), householdID(r), mp.Year, mp.Month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(summary).Write(w)
}
