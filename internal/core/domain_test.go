package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false},
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateIsMiddayAnchored(t *testing.T) {
	d := NewDate(2024, 3, 1)
	for _, zone := range []string{"America/Sao_Paulo", "Asia/Tokyo", "Pacific/Honolulu"} {
		loc, err := time.LoadLocation(zone)
		if err != nil {
			t.Skipf("zone data unavailable: %v", err)
		}
		if got := d.In(loc).Day(); got != 1 {
			t.Fatalf("%s: day = %d, want 1", zone, got)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2024-02-29" {
		t.Fatalf("got %s", d)
	}
	for _, bad := range []string{"", "2024-02-30", "29/02/2024", "2024-2-1"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q: expected ErrInvalidDate, got %v", bad, err)
		}
	}
}

func TestAddMonths(t *testing.T) {
	cases := []struct {
		in   Date
		n    int
		want string
	}{
		{NewDate(2024, 1, 31), 1, "2024-02-29"},
		{NewDate(2023, 1, 31), 1, "2023-02-28"},
		{NewDate(2024, 1, 31), 2, "2024-03-31"},
		{NewDate(2024, 12, 15), 1, "2025-01-15"},
		{NewDate(2024, 11, 30), 14, "2026-01-30"},
		{NewDate(2024, 3, 31), -1, "2024-02-29"},
		{NewDate(2024, 1, 10), -13, "2022-12-10"},
		{NewDate(2024, 5, 5), 0, "2024-05-05"},
	}
	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			if got := AddMonths(tc.in, tc.n).String(); got != tc.want {
				t.Fatalf("AddMonths(%s, %d) = %s, want %s", tc.in, tc.n, got, tc.want)
			}
		})
	}
}

func TestPeriod(t *testing.T) {
	p := MonthPeriod(2024, 2)
	if p.From.String() != "2024-02-01" || p.To.String() != "2024-02-29" {
		t.Fatalf("unexpected period %s..%s", p.From, p.To)
	}
	if !p.Contains(NewDate(2024, 2, 29)) || p.Contains(NewDate(2024, 3, 1)) {
		t.Fatal("Contains is not inclusive of the month only")
	}
	if err := (Period{From: NewDate(2024, 3, 1), To: NewDate(2024, 2, 1)}).Validate(); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestColorValidate(t *testing.T) {
	for _, ok := range []string{"#64748b", "#10B981", "#000000"} {
		if err := ValidateColor(ok); err != nil {
			t.Fatalf("%q: %v", ok, err)
		}
	}
	for _, bad := range []string{"", "64748b", "#64748", "#64748g", "#64748bb"} {
		if err := ValidateColor(bad); !errors.Is(err, ErrInvalidColor) {
			t.Fatalf("%q: expected ErrInvalidColor, got %v", bad, err)
		}
	}
}

func TestAccountValidate(t *testing.T) {
	good := Account{HouseholdID: "h", Name: "Nubank", Type: Checking, Color: "#8A05BE"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := map[string]func(a *Account){
		"household": func(a *Account) { a.HouseholdID = "" },
		"name":      func(a *Account) { a.Name = "  " },
		"type":      func(a *Account) { a.Type = "credit" },
		"color":     func(a *Account) { a.Color = "red" },
		"balance":   func(a *Account) { a.InitialBalance = Money{Cents: -1} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			a := good
			mutate(&a)
			if err := a.Validate(); !IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestPaymentMethodValidate(t *testing.T) {
	card := PaymentMethod{HouseholdID: "h", AccountID: "a", Name: "Roxinho", Type: CreditCard, ClosingDay: 10, Last4: "1234", Color: DefaultColor}
	if err := card.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	pix := PaymentMethod{HouseholdID: "h", AccountID: "a", Name: "Pix", Type: Pix, Color: DefaultColor}
	if err := pix.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(pm *PaymentMethod)
		want   error
	}{
		{"closing day zero", func(pm *PaymentMethod) { pm.ClosingDay = 0 }, ErrInvalidClosingDay},
		{"closing day 32", func(pm *PaymentMethod) { pm.ClosingDay = 32 }, ErrInvalidClosingDay},
		{"closing day on debit", func(pm *PaymentMethod) { pm.Type = DebitCard }, ErrInvalidClosingDay},
		{"short last4", func(pm *PaymentMethod) { pm.Last4 = "123" }, ErrInvalidLast4},
		{"letters in last4", func(pm *PaymentMethod) { pm.Last4 = "12a4" }, ErrInvalidLast4},
		{"bad type", func(pm *PaymentMethod) { pm.Type = "boleto" }, ErrInvalidMethodType},
		{"no account", func(pm *PaymentMethod) { pm.AccountID = "" }, ErrMissingInstrument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pm := card
			tc.mutate(&pm)
			if err := pm.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestPaymentMethodBillingDate(t *testing.T) {
	occurred := NewDate(2024, 3, 28)
	card := PaymentMethod{Type: CreditCard, ClosingDay: 25}
	if got := card.BillingDate(occurred); got.Month() != 4 || got.Year() != 2024 {
		t.Fatalf("credit card: got %s, want April 2024", got)
	}
	for _, typ := range []MethodType{DebitCard, Pix} {
		pm := PaymentMethod{Type: typ}
		if got := pm.BillingDate(occurred); !got.Equal(occurred) {
			t.Fatalf("%s: got %s, want %s", typ, got, occurred)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		HouseholdID: "h",
		AccountID:   "a",
		Description: "Mercado",
		Amount:      Money{Cents: 100},
		Kind:        Expense,
		OccurredOn:  NewDate(2025, 1, 1),
		BillingDate: NewDate(2025, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(tx *Transaction)
		want   error
	}{
		{"household", func(tx *Transaction) { tx.HouseholdID = "" }, ErrMissingHousehold},
		{"description", func(tx *Transaction) { tx.Description = " " }, ErrEmptyDescription},
		{"long description", func(tx *Transaction) { tx.Description = strings.Repeat("x", 201) }, ErrDescriptionTooLong},
		{"amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{"kind", func(tx *Transaction) { tx.Kind = "transfer" }, ErrInvalidKind},
		{"date", func(tx *Transaction) { tx.OccurredOn = Date{} }, ErrInvalidDate},
		{"instrument", func(tx *Transaction) { tx.AccountID = "" }, ErrMissingInstrument},
		{"installments", func(tx *Transaction) { tx.TotalInstallments = 30; tx.InstallmentIndex = 1 }, ErrInvalidInstallments},
		{"orphan child", func(tx *Transaction) { tx.TotalInstallments = 3; tx.InstallmentIndex = 2 }, ErrInvalidInstallments},
		{"recurring plan", func(tx *Transaction) { tx.TotalInstallments = 3; tx.InstallmentIndex = 1; tx.Recurring = true }, ErrInvalidInstallments},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := good
			tc.mutate(&tx)
			err := tx.Validate()
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !IsValidation(err) {
				t.Fatalf("expected a ValidationError, got %T", err)
			}
		})
	}
}

func TestUserValidate(t *testing.T) {
	u := User{Email: "ana@example.com", PasswordHash: []byte("hash")}
	if err := u.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	u.Email = "Ana@Example.com"
	if err := u.Validate(); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("non-normalized email accepted: %v", err)
	}
	if NormalizeEmail(" Ana@Example.com ") != "ana@example.com" {
		t.Fatal("NormalizeEmail did not lower-case and trim")
	}
}
