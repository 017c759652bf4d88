// Package memory is an in-process ports.Store used when no database is
// configured and by tests. It enforces the same references, cascades and
// orderings as the SQLite repository.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"carteira/internal/core"
	"carteira/internal/ports"
)

type Store struct {
	mu           sync.Mutex
	users        map[string]core.User
	households   map[string]core.Household
	memberships  map[[2]string]core.Role
	invites      map[string]core.Invite
	accounts     map[string]core.Account
	methods      map[string]core.PaymentMethod
	categories   map[string]core.Category
	transactions map[string]core.Transaction
}

var _ ports.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:        map[string]core.User{},
		households:   map[string]core.Household{},
		memberships:  map[[2]string]core.Role{},
		invites:      map[string]core.Invite{},
		accounts:     map[string]core.Account{},
		methods:      map[string]core.PaymentMethod{},
		categories:   map[string]core.Category{},
		transactions: map[string]core.Transaction{},
	}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

func notFound(entity, id string) error {
	return fmt.Errorf("%s %q: %w", entity, id, ports.ErrNotFound)
}

func conflict(entity, id string) error {
	return fmt.Errorf("%s %q: %w", entity, id, ports.ErrConflict)
}

func (s *Store) Register(_ context.Context, user core.User, household core.Household, categories []core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return conflict("user", user.ID)
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return conflict("email", user.Email)
		}
	}
	if _, ok := s.households[household.ID]; ok {
		return conflict("household", household.ID)
	}
	seen := map[string]bool{}
	for _, c := range categories {
		if _, ok := s.categories[c.ID]; ok || seen[c.ID] {
			return conflict("category", c.ID)
		}
		if c.HouseholdID != household.ID {
			return notFound("household", c.HouseholdID)
		}
		seen[c.ID] = true
	}

	s.users[user.ID] = user
	s.households[household.ID] = household
	s.memberships[[2]string{household.ID, user.ID}] = core.RoleOwner
	for _, c := range categories {
		s.categories[c.ID] = c
	}
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return core.User{}, notFound("user", email)
}

func (s *Store) membership(householdID, userID string) (core.Membership, bool) {
	role, ok := s.memberships[[2]string{householdID, userID}]
	if !ok {
		return core.Membership{}, false
	}
	return core.Membership{
		HouseholdID:   householdID,
		HouseholdName: s.households[householdID].Name,
		UserID:        userID,
		Role:          role,
	}, true
}

func (s *Store) ListMemberships(_ context.Context, userID string) ([]core.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Membership
	for key := range s.memberships {
		if key[1] == userID {
			m, _ := s.membership(key[0], userID)
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		hi, hj := s.households[out[i].HouseholdID], s.households[out[j].HouseholdID]
		if !hi.CreatedAt.Equal(hj.CreatedAt) {
			return hi.CreatedAt.Before(hj.CreatedAt)
		}
		return hi.ID < hj.ID
	})
	return out, nil
}

func (s *Store) GetMembership(_ context.Context, householdID, userID string) (core.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.membership(householdID, userID)
	if !ok {
		return core.Membership{}, notFound("membership", householdID)
	}
	return m, nil
}

func (s *Store) CreateInvite(_ context.Context, inv core.Invite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.households[inv.HouseholdID]; !ok {
		return notFound("household", inv.HouseholdID)
	}
	if _, ok := s.invites[inv.Token]; ok {
		return conflict("invite", inv.Token)
	}
	s.invites[inv.Token] = inv
	return nil
}

func (s *Store) GetInvite(_ context.Context, token string) (core.Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invites[token]
	if !ok {
		return core.Invite{}, notFound("invite", token)
	}
	return inv, nil
}

func (s *Store) RedeemInvite(_ context.Context, token, userID string, at time.Time) (core.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invites[token]
	if !ok {
		return core.Membership{}, notFound("invite", token)
	}
	if inv.RedeemedBy != "" {
		return core.Membership{}, conflict("invite", token)
	}
	if _, ok := s.users[userID]; !ok {
		return core.Membership{}, notFound("user", userID)
	}
	key := [2]string{inv.HouseholdID, userID}
	if _, ok := s.memberships[key]; ok {
		return core.Membership{}, conflict("membership", inv.HouseholdID)
	}
	inv.RedeemedBy, inv.RedeemedAt = userID, at
	s.invites[token] = inv
	s.memberships[key] = core.RoleMember
	m, _ := s.membership(inv.HouseholdID, userID)
	return m, nil
}

func (s *Store) ListAccounts(_ context.Context, householdID string) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Account
	for _, a := range s.accounts {
		if a.HouseholdID == householdID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetAccount(_ context.Context, householdID, id string) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok || a.HouseholdID != householdID {
		return core.Account{}, notFound("account", id)
	}
	return a, nil
}

func (s *Store) CreateAccount(_ context.Context, a core.Account, seed *core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.households[a.HouseholdID]; !ok {
		return notFound("household", a.HouseholdID)
	}
	if _, ok := s.accounts[a.ID]; ok {
		return conflict("account", a.ID)
	}
	s.accounts[a.ID] = a
	if seed != nil {
		if err := s.checkTransaction(*seed, nil); err != nil {
			delete(s.accounts, a.ID)
			return fmt.Errorf("seed initial balance: %w", err)
		}
		s.transactions[seed.ID] = *seed
	}
	return nil
}

func (s *Store) UpdateAccount(_ context.Context, a core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.accounts[a.ID]
	if !ok || cur.HouseholdID != a.HouseholdID {
		return notFound("account", a.ID)
	}
	cur.Name, cur.Type, cur.Color = a.Name, a.Type, a.Color
	s.accounts[a.ID] = cur
	return nil
}

func (s *Store) DeleteAccount(_ context.Context, householdID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok || a.HouseholdID != householdID {
		return notFound("account", id)
	}
	for pmID, pm := range s.methods {
		if pm.AccountID == id {
			s.deleteMethodLocked(pmID)
		}
	}
	for tid, t := range s.transactions {
		if t.AccountID == id {
			s.deleteTransactionLocked(tid)
		}
	}
	delete(s.accounts, id)
	return nil
}

func (s *Store) AccountBalance(_ context.Context, householdID, id string) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok || a.HouseholdID != householdID {
		return core.Money{}, notFound("account", id)
	}
	var bal core.Money
	for _, t := range s.transactions {
		if t.HouseholdID != householdID || t.AccountID != id {
			continue
		}
		if t.Kind == core.Income {
			bal = bal.Add(t.Amount)
		} else {
			bal = bal.Sub(t.Amount)
		}
	}
	return bal, nil
}

func (s *Store) ListPaymentMethods(_ context.Context, householdID, accountID string) ([]core.PaymentMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.PaymentMethod
	for _, pm := range s.methods {
		if pm.HouseholdID == householdID && (accountID == "" || pm.AccountID == accountID) {
			out = append(out, pm)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetPaymentMethod(_ context.Context, householdID, id string) (core.PaymentMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pm, ok := s.methods[id]
	if !ok || pm.HouseholdID != householdID {
		return core.PaymentMethod{}, notFound("payment method", id)
	}
	return pm, nil
}

func (s *Store) CreatePaymentMethod(_ context.Context, pm core.PaymentMethod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.households[pm.HouseholdID]; !ok {
		return notFound("household", pm.HouseholdID)
	}
	if _, ok := s.accounts[pm.AccountID]; !ok {
		return notFound("account", pm.AccountID)
	}
	if _, ok := s.methods[pm.ID]; ok {
		return conflict("payment method", pm.ID)
	}
	s.methods[pm.ID] = pm
	return nil
}

func (s *Store) DeletePaymentMethod(_ context.Context, householdID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pm, ok := s.methods[id]
	if !ok || pm.HouseholdID != householdID {
		return notFound("payment method", id)
	}
	s.deleteMethodLocked(id)
	return nil
}

func (s *Store) deleteMethodLocked(id string) {
	for tid, t := range s.transactions {
		if t.PaymentMethodID == id {
			s.deleteTransactionLocked(tid)
		}
	}
	delete(s.methods, id)
}

func (s *Store) ListCategories(_ context.Context, householdID string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Category
	for _, c := range s.categories {
		if c.HouseholdID == householdID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, householdID, id string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok || c.HouseholdID != householdID {
		return core.Category{}, notFound("category", id)
	}
	return c, nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.households[c.HouseholdID]; !ok {
		return notFound("household", c.HouseholdID)
	}
	if _, ok := s.categories[c.ID]; ok {
		return conflict("category", c.ID)
	}
	s.categories[c.ID] = c
	return nil
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.categories[c.ID]
	if !ok || cur.HouseholdID != c.HouseholdID {
		return notFound("category", c.ID)
	}
	cur.Name, cur.Color = c.Name, c.Color
	s.categories[c.ID] = cur
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, householdID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok || c.HouseholdID != householdID {
		return notFound("category", id)
	}
	for tid, t := range s.transactions {
		if t.CategoryID == id {
			t.CategoryID = ""
			s.transactions[tid] = t
		}
	}
	delete(s.categories, id)
	return nil
}
