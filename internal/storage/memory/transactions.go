package memory

import (
	"context"
	"sort"

	"carteira/internal/core"
	"carteira/internal/ports"
)

// checkTransaction mirrors the SQLite foreign keys. pending holds rows of
// the same batch that are not stored yet.
func (s *Store) checkTransaction(t core.Transaction, pending map[string]core.Transaction) error {
	if _, ok := s.transactions[t.ID]; ok {
		return conflict("transaction", t.ID)
	}
	if _, ok := pending[t.ID]; ok {
		return conflict("transaction", t.ID)
	}
	if _, ok := s.households[t.HouseholdID]; !ok {
		return notFound("household", t.HouseholdID)
	}
	if t.AccountID != "" {
		if _, ok := s.accounts[t.AccountID]; !ok {
			return notFound("account", t.AccountID)
		}
	}
	if t.PaymentMethodID != "" {
		if _, ok := s.methods[t.PaymentMethodID]; !ok {
			return notFound("payment method", t.PaymentMethodID)
		}
	}
	if t.CategoryID != "" {
		if _, ok := s.categories[t.CategoryID]; !ok {
			return notFound("category", t.CategoryID)
		}
	}
	if t.ParentID != "" {
		_, stored := s.transactions[t.ParentID]
		_, queued := pending[t.ParentID]
		if !stored && !queued {
			return notFound("parent transaction", t.ParentID)
		}
	}
	return nil
}

func (s *Store) ListTransactions(_ context.Context, f ports.TransactionFilter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.transactions {
		if t.HouseholdID != f.HouseholdID || !f.Period.Contains(t.BillingDate) {
			continue
		}
		if f.AccountID != "" && t.AccountID != f.AccountID {
			continue
		}
		if f.PaymentMethodID != "" && t.PaymentMethodID != f.PaymentMethodID {
			continue
		}
		if f.Kind != "" && t.Kind != f.Kind {
			continue
		}
		out = append(out, t)
	}
	sortTransactions(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// sortTransactions orders by billing date desc, created_at desc, id asc.
func sortTransactions(ts []core.Transaction) {
	sort.Slice(ts, func(i, j int) bool {
		a, b := ts[i], ts[j]
		if !a.BillingDate.Equal(b.BillingDate) {
			return a.BillingDate.After(b.BillingDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func (s *Store) GetTransaction(_ context.Context, householdID, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.HouseholdID != householdID {
		return core.Transaction{}, notFound("transaction", id)
	}
	return t, nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkTransaction(t, nil); err != nil {
		return err
	}
	s.transactions[t.ID] = t
	return nil
}

// CreatePlan checks every installment before storing any of them.
func (s *Store) CreatePlan(_ context.Context, plan []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := make(map[string]core.Transaction, len(plan))
	for _, t := range plan {
		if err := s.checkTransaction(t, pending); err != nil {
			return err
		}
		pending[t.ID] = t
	}
	for id, t := range pending {
		s.transactions[id] = t
	}
	return nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.transactions[t.ID]
	if !ok || cur.HouseholdID != t.HouseholdID {
		return notFound("transaction", t.ID)
	}
	if t.CategoryID != "" {
		if _, ok := s.categories[t.CategoryID]; !ok {
			return notFound("category", t.CategoryID)
		}
	}
	cur.Description, cur.Notes, cur.CategoryID = t.Description, t.Notes, t.CategoryID
	s.transactions[t.ID] = cur
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, householdID, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.HouseholdID != householdID {
		return nil, notFound("transaction", id)
	}
	var removed []core.Transaction
	for _, other := range s.transactions {
		if other.ID == id || other.ParentID == id {
			removed = append(removed, other)
		}
	}
	sort.Slice(removed, func(i, j int) bool {
		if removed[i].InstallmentIndex != removed[j].InstallmentIndex {
			return removed[i].InstallmentIndex < removed[j].InstallmentIndex
		}
		return removed[i].ID < removed[j].ID
	})
	ids := make([]string, 0, len(removed))
	for _, r := range removed {
		ids = append(ids, r.ID)
	}
	s.deleteTransactionLocked(id)
	return ids, nil
}

func (s *Store) deleteTransactionLocked(id string) {
	for cid, c := range s.transactions {
		if c.ParentID == id {
			delete(s.transactions, cid)
		}
	}
	delete(s.transactions, id)
}

func (s *Store) Totals(_ context.Context, householdID string, period core.Period) (core.Money, core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var income, expense core.Money
	for _, t := range s.transactions {
		if t.HouseholdID != householdID || !period.Contains(t.BillingDate) {
			continue
		}
		if t.Kind == core.Income {
			income = income.Add(t.Amount)
		} else {
			expense = expense.Add(t.Amount)
		}
	}
	return income, expense, nil
}

func (s *Store) ExpenseByCategory(_ context.Context, householdID string, period core.Period) ([]core.CategoryTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID := map[string]*core.CategoryTotal{}
	for _, t := range s.transactions {
		if t.HouseholdID != householdID || t.Kind != core.Expense || !period.Contains(t.BillingDate) {
			continue
		}
		ct, ok := byID[t.CategoryID]
		if !ok {
			c := s.categories[t.CategoryID]
			ct = &core.CategoryTotal{CategoryID: t.CategoryID, Name: c.Name, Color: c.Color}
			byID[t.CategoryID] = ct
		}
		ct.Amount = ct.Amount.Add(t.Amount)
	}
	out := make([]core.CategoryTotal, 0, len(byID))
	for _, ct := range byID {
		out = append(out, core.LabelCategoryTotal(*ct))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) ListRecurring(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.transactions {
		if t.Recurring {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].HouseholdID != out[j].HouseholdID {
			return out[i].HouseholdID < out[j].HouseholdID
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) Materialize(_ context.Context, templateID string, occurrence core.Transaction, runOn core.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tmpl, ok := s.transactions[templateID]
	if !ok || !tmpl.Recurring {
		return notFound("recurring template", templateID)
	}
	if err := s.checkTransaction(occurrence, nil); err != nil {
		return err
	}
	tmpl.LastRecurrence = runOn
	s.transactions[templateID] = tmpl
	s.transactions[occurrence.ID] = occurrence
	return nil
}
