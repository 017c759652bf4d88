package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"carteira/internal/core"
	"carteira/internal/log"
	"carteira/internal/ports"
)

const (
	MinPasswordLength = 8
	InviteTTL         = 7 * 24 * time.Hour
)

// starter categories every new household gets
var defaultCategories = []struct {
	name  string
	kind  core.TransactionKind
	color string
}{
	{"Alimentação", core.Expense, "#10b981"},
	{"Transporte", core.Expense, "#3b82f6"},
	{"Moradia", core.Expense, "#f59e0b"},
	{"Salário", core.Income, "#22c55e"},
}

type householdStore interface {
	ports.UserStore
	ports.HouseholdStore
}

// HouseholdService handles registration, login, memberships and invites.
type HouseholdService struct {
	store    householdStore
	logger   *log.Logger
	now      func() time.Time
	hashCost int
}

func NewHouseholdService(store householdStore, logger *log.Logger) *HouseholdService {
	if logger == nil {
		logger = log.Discard()
	}
	return &HouseholdService{
		store:    store,
		logger:   logger.WithComponent(log.ComponentHousehold),
		now:      time.Now,
		hashCost: bcrypt.DefaultCost,
	}
}

// Register creates a user together with their first household.
func (s *HouseholdService) Register(ctx context.Context, email, password, householdName string) (core.User, core.Household, error) {
	if len(password) < MinPasswordLength {
		return core.User{}, core.Household{}, core.Invalid("password", core.ErrWeakPassword)
	}
	now := s.now().UTC()

	household := core.Household{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(householdName),
		CreatedAt: now,
	}
	if err := household.Validate(); err != nil {
		return core.User{}, core.Household{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return core.User{}, core.Household{}, core.Invalid("password", err)
		}
		return core.User{}, core.Household{}, fmt.Errorf("hash password: %w", err)
	}
	user := core.User{
		ID:           uuid.NewString(),
		Email:        core.NormalizeEmail(email),
		PasswordHash: hash,
		CreatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return core.User{}, core.Household{}, err
	}

	categories := make([]core.Category, 0, len(defaultCategories))
	for _, c := range defaultCategories {
		categories = append(categories, core.Category{
			ID:          uuid.NewString(),
			HouseholdID: household.ID,
			Name:        c.name,
			Kind:        c.kind,
			Color:       c.color,
		})
	}

	if err := s.store.Register(ctx, user, household, categories); err != nil {
		if errors.Is(err, ports.ErrConflict) {
			return core.User{}, core.Household{}, fmt.Errorf("email already registered: %w", err)
		}
		return core.User{}, core.Household{}, fmt.Errorf("register: %w", err)
	}

	s.logger.InfoContext(ctx, "Registered user",
		log.FieldOperation, log.OpRegister,
		log.FieldUserID, user.ID,
		log.FieldHouseholdID, household.ID)
	return user, household, nil
}

// Login checks the credentials. Unknown emails and wrong passwords fail
// the same way.
func (s *HouseholdService) Login(ctx context.Context, email, password string) (core.User, error) {
	user, err := s.store.GetUserByEmail(ctx, core.NormalizeEmail(email))
	if errors.Is(err, ports.ErrNotFound) {
		return core.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return core.User{}, fmt.Errorf("login: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		s.logger.WarnContext(ctx, "Failed login", log.FieldOperation, log.OpLogin, log.FieldUserID, user.ID)
		return core.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *HouseholdService) Memberships(ctx context.Context, userID string) ([]core.Membership, error) {
	ms, err := s.store.ListMemberships(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return ms, nil
}

// Authorize returns the caller's membership or ErrForbidden.
func (s *HouseholdService) Authorize(ctx context.Context, householdID, userID string) (core.Membership, error) {
	m, err := s.store.GetMembership(ctx, householdID, userID)
	if errors.Is(err, ports.ErrNotFound) {
		return core.Membership{}, ErrForbidden
	}
	if err != nil {
		return core.Membership{}, fmt.Errorf("authorize: %w", err)
	}
	return m, nil
}

func (s *HouseholdService) CreateInvite(ctx context.Context, householdID, userID string) (core.Invite, error) {
	if _, err := s.Authorize(ctx, householdID, userID); err != nil {
		return core.Invite{}, err
	}
	inv := core.Invite{
		Token:       uuid.NewString(),
		HouseholdID: householdID,
		CreatedBy:   userID,
		ExpiresAt:   s.now().UTC().Add(InviteTTL),
	}
	if err := s.store.CreateInvite(ctx, inv); err != nil {
		return core.Invite{}, fmt.Errorf("create invite: %w", err)
	}
	s.logger.InfoContext(ctx, "Created invite",
		log.FieldOperation, log.OpInvite,
		log.FieldHouseholdID, householdID,
		log.FieldUserID, userID)
	return inv, nil
}

// RedeemInvite adds the user to the invite's household. An invite works
// once.
func (s *HouseholdService) RedeemInvite(ctx context.Context, token, userID string) (core.Membership, error) {
	inv, err := s.store.GetInvite(ctx, token)
	if errors.Is(err, ports.ErrNotFound) {
		return core.Membership{}, ErrInviteInvalid
	}
	if err != nil {
		return core.Membership{}, fmt.Errorf("get invite: %w", err)
	}
	now := s.now().UTC()
	if inv.RedeemedBy != "" || !now.Before(inv.ExpiresAt) {
		return core.Membership{}, ErrInviteInvalid
	}
	if _, err := s.store.GetMembership(ctx, inv.HouseholdID, userID); err == nil {
		return core.Membership{}, fmt.Errorf("already a member of the household: %w", ports.ErrConflict)
	}

	m, err := s.store.RedeemInvite(ctx, token, userID, now)
	if errors.Is(err, ports.ErrConflict) {
		return core.Membership{}, ErrInviteInvalid
	}
	if err != nil {
		return core.Membership{}, fmt.Errorf("redeem invite: %w", err)
	}
	s.logger.InfoContext(ctx, "Redeemed invite",
		log.FieldOperation, log.OpRedeem,
		log.FieldHouseholdID, m.HouseholdID,
		log.FieldUserID, userID)
	return m, nil
}
