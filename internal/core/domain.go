package core

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

const (
	Expense TransactionKind = "expense"
	Income  TransactionKind = "income"

	Checking   AccountType = "checking"
	Savings    AccountType = "savings"
	Investment AccountType = "investment"
	Cash       AccountType = "cash"

	CreditCard MethodType = "credit_card"
	DebitCard  MethodType = "debit_card"
	Pix        MethodType = "pix"

	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

const (
	MaxDescriptionLength = 200
	MaxNameLength        = 100
	DefaultColor         = "#64748b"
	InitialBalanceLabel  = "Initial balance"
)

type (
	TransactionKind string
	AccountType     string
	MethodType      string
	Role            string

	User struct {
		ID           string    `json:"id"`
		Email        string    `json:"email"`
		PasswordHash []byte    `json:"-"`
		CreatedAt    time.Time `json:"created_at"`
	}

	Household struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"created_at"`
	}

	Membership struct {
		HouseholdID   string `json:"household_id"`
		HouseholdName string `json:"household_name,omitempty"`
		UserID        string `json:"user_id"`
		Role          Role   `json:"role"`
	}

	Invite struct {
		Token       string    `json:"token"`
		HouseholdID string    `json:"household_id"`
		CreatedBy   string    `json:"created_by"`
		ExpiresAt   time.Time `json:"expires_at"`
		RedeemedBy  string    `json:"redeemed_by,omitempty"`
		RedeemedAt  time.Time `json:"-"`
	}

	Account struct {
		ID             string      `json:"id"`
		HouseholdID    string      `json:"household_id"`
		Name           string      `json:"name"`
		Type           AccountType `json:"type"`
		IssuerID       string      `json:"issuer_id"`
		Color          string      `json:"color"`
		InitialBalance Money       `json:"initial_balance"`
		CreatedAt      time.Time   `json:"created_at"`
	}

	PaymentMethod struct {
		ID          string     `json:"id"`
		HouseholdID string     `json:"household_id"`
		AccountID   string     `json:"account_id"`
		Name        string     `json:"name"`
		Type        MethodType `json:"type"`
		Brand       string     `json:"brand"`
		Last4       string     `json:"last4"`
		ClosingDay  int        `json:"closing_day"`
		Color       string     `json:"color"`
		ProductID   string     `json:"product_id"`
		CreatedAt   time.Time  `json:"created_at"`
	}

	Category struct {
		ID          string          `json:"id"`
		HouseholdID string          `json:"household_id"`
		Name        string          `json:"name"`
		Kind        TransactionKind `json:"kind"`
		Color       string          `json:"color"`
	}

	Transaction struct {
		ID                string          `json:"id"`
		HouseholdID       string          `json:"household_id"`
		CreatedBy         string          `json:"created_by"`
		AccountID         string          `json:"account_id,omitempty"`
		PaymentMethodID   string          `json:"payment_method_id,omitempty"`
		CategoryID        string          `json:"category_id,omitempty"`
		Description       string          `json:"description"`
		Amount            Money           `json:"amount"`
		Kind              TransactionKind `json:"kind"`
		OccurredOn        Date            `json:"occurred_on"`
		BillingDate       Date            `json:"billing_date"`
		Notes             string          `json:"notes,omitempty"`
		TotalInstallments int             `json:"total_installments,omitempty"`
		InstallmentIndex  int             `json:"installment_index,omitempty"`
		ParentID          string          `json:"parent_id,omitempty"`
		Recurring         bool            `json:"recurring"`
		// LastRecurrence is the month a recurring template was last
		// materialised for.
		LastRecurrence Date      `json:"-"`
		CreatedAt      time.Time `json:"created_at"`
	}
)

func (k TransactionKind) Validate() error {
	switch k {
	case Expense, Income:
		return nil
	}
	return ErrInvalidKind
}

func (t AccountType) Validate() error {
	switch t {
	case Checking, Savings, Investment, Cash:
		return nil
	}
	return ErrInvalidAccountType
}

func (t MethodType) Validate() error {
	switch t {
	case CreditCard, DebitCard, Pix:
		return nil
	}
	return ErrInvalidMethodType
}

// ValidateColor accepts #rrggbb in either case.
func ValidateColor(c string) error {
	if len(c) != 7 || c[0] != '#' {
		return ErrInvalidColor
	}
	for _, r := range c[1:] {
		if !isHex(r) {
			return ErrInvalidColor
		}
	}
	return nil
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func validateName(field, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid(field, ErrEmptyName)
	}
	if len(name) > MaxNameLength {
		return invalid(field, fmt.Errorf("too long (max %d characters)", MaxNameLength))
	}
	return nil
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u User) Validate() error {
	if _, err := mail.ParseAddress(u.Email); err != nil || u.Email != NormalizeEmail(u.Email) {
		return invalid("email", ErrInvalidEmail)
	}
	if len(u.PasswordHash) == 0 {
		return invalid("password", ErrWeakPassword)
	}
	return nil
}

func (h Household) Validate() error {
	return validateName("household_name", h.Name)
}

func (a Account) Validate() error {
	if a.HouseholdID == "" {
		return invalid("household_id", ErrMissingHousehold)
	}
	if err := validateName("name", a.Name); err != nil {
		return err
	}
	if err := a.Type.Validate(); err != nil {
		return invalid("type", err)
	}
	if err := ValidateColor(a.Color); err != nil {
		return invalid("color", err)
	}
	if a.InitialBalance.Cents < 0 {
		return invalid("initial_balance", ErrInvalidAmount)
	}
	return nil
}

// ValidateClosingDay checks a statement closing day at the input boundary.
func ValidateClosingDay(day int) error {
	if day < 1 || day > 31 {
		return ErrInvalidClosingDay
	}
	return nil
}

func (pm PaymentMethod) Validate() error {
	if pm.HouseholdID == "" {
		return invalid("household_id", ErrMissingHousehold)
	}
	if pm.AccountID == "" {
		return invalid("account_id", ErrMissingInstrument)
	}
	if err := validateName("name", pm.Name); err != nil {
		return err
	}
	if err := pm.Type.Validate(); err != nil {
		return invalid("type", err)
	}
	if pm.Type == CreditCard {
		if err := ValidateClosingDay(pm.ClosingDay); err != nil {
			return invalid("closing_day", err)
		}
	} else if pm.ClosingDay != 0 {
		return invalid("closing_day", fmt.Errorf("%w: only credit cards have a closing day", ErrInvalidClosingDay))
	}
	if pm.Last4 != "" {
		if len(pm.Last4) != 4 {
			return invalid("last4", ErrInvalidLast4)
		}
		for _, r := range pm.Last4 {
			if r < '0' || r > '9' {
				return invalid("last4", ErrInvalidLast4)
			}
		}
	}
	if err := ValidateColor(pm.Color); err != nil {
		return invalid("color", err)
	}
	return nil
}

// BillingDate attributes a purchase on this instrument to a billing date.
// Only credit cards have a statement cycle.
func (pm PaymentMethod) BillingDate(occurred Date) Date {
	if pm.Type == CreditCard && pm.ClosingDay > 0 {
		return ResolveBillingDate(occurred, pm.ClosingDay)
	}
	return occurred
}

func (c Category) Validate() error {
	if c.HouseholdID == "" {
		return invalid("household_id", ErrMissingHousehold)
	}
	if err := validateName("name", c.Name); err != nil {
		return err
	}
	if err := c.Kind.Validate(); err != nil {
		return invalid("kind", err)
	}
	if err := ValidateColor(c.Color); err != nil {
		return invalid("color", err)
	}
	return nil
}

// ValidateDescription rejects blank or overlong descriptions.
func ValidateDescription(desc string) error {
	if strings.TrimSpace(desc) == "" {
		return invalid("description", ErrEmptyDescription)
	}
	if len(desc) > MaxDescriptionLength {
		return invalid("description", ErrDescriptionTooLong)
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.HouseholdID == "" {
		return invalid("household_id", ErrMissingHousehold)
	}
	if err := ValidateDescription(t.Description); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return invalid("amount", err)
	}
	if err := t.Kind.Validate(); err != nil {
		return invalid("kind", err)
	}
	if err := t.OccurredOn.Validate(); err != nil {
		return invalid("occurred_on", err)
	}
	if err := t.BillingDate.Validate(); err != nil {
		return invalid("billing_date", err)
	}
	if t.AccountID == "" && t.PaymentMethodID == "" {
		return invalid("account_id", ErrMissingInstrument)
	}
	if t.TotalInstallments != 0 {
		if t.TotalInstallments < MinInstallments || t.TotalInstallments > MaxInstallments {
			return invalid("installments", ErrInvalidInstallments)
		}
		if t.InstallmentIndex < 1 || t.InstallmentIndex > t.TotalInstallments {
			return invalid("installment_index", ErrInvalidInstallments)
		}
		if t.InstallmentIndex > 1 && t.ParentID == "" {
			return invalid("parent_id", fmt.Errorf("%w: installment %d has no parent", ErrInvalidInstallments, t.InstallmentIndex))
		}
		if t.Recurring {
			return invalid("recurring", fmt.Errorf("%w: installment plans cannot recur", ErrInvalidInstallments))
		}
	}
	return nil
}

// IsInstallment reports whether t belongs to an installment plan.
func (t Transaction) IsInstallment() bool {
	return t.TotalInstallments > 0
}
