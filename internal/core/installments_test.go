package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func planTemplate(total int64, first Date) Transaction {
	return Transaction{
		HouseholdID:     "h1",
		CreatedBy:       "u1",
		AccountID:       "a1",
		PaymentMethodID: "pm1",
		CategoryID:      "c1",
		Description:     "Geladeira",
		Notes:           "loja centro",
		Amount:          Money{Cents: total},
		Kind:            Expense,
		OccurredOn:      first,
		BillingDate:     first,
	}
}

func TestGenerateInstallmentsSplitsEvenly(t *testing.T) {
	first := NewDate(2024, 4, 15)
	got, err := GenerateInstallments(InstallmentPlan{Template: planTemplate(12000, first), Count: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d entries", len(got))
	}
	parent := got[0].ID
	if parent == "" {
		t.Fatal("parent has no id")
	}
	for i, tx := range got {
		idx := i + 1
		if tx.Amount.Cents != 4000 {
			t.Fatalf("entry %d amount %s", idx, tx.Amount)
		}
		if want := fmt.Sprintf("Geladeira (%d/3)", idx); tx.Description != want {
			t.Fatalf("entry %d description %q", idx, tx.Description)
		}
		if want := AddMonths(first, i); !tx.BillingDate.Equal(want) {
			t.Fatalf("entry %d billing %s, want %s", idx, tx.BillingDate, want)
		}
		if tx.TotalInstallments != 3 || tx.InstallmentIndex != idx {
			t.Fatalf("entry %d metadata %d/%d", idx, tx.InstallmentIndex, tx.TotalInstallments)
		}
		if idx > 1 && tx.ParentID != parent {
			t.Fatalf("entry %d parent %q, want %q", idx, tx.ParentID, parent)
		}
		if tx.PaymentMethodID != "pm1" || tx.CategoryID != "c1" || tx.Notes != "loja centro" || tx.HouseholdID != "h1" {
			t.Fatalf("entry %d lost shared metadata: %+v", idx, tx)
		}
		if !tx.OccurredOn.Equal(first) {
			t.Fatalf("entry %d occurred_on changed to %s", idx, tx.OccurredOn)
		}
		if err := tx.Validate(); err != nil {
			t.Fatalf("entry %d invalid: %v", idx, err)
		}
	}
	if got[0].ParentID != "" {
		t.Fatal("parent references itself")
	}
}

func TestGenerateInstallmentsRemainderOnFirst(t *testing.T) {
	cases := []struct {
		total int64
		n     int
		first int64
		rest  int64
	}{
		{10000, 3, 3334, 3333},
		{100, 24, 8, 4},
		{1001, 2, 501, 500},
		{2400, 24, 100, 100},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d/%d", tc.total, tc.n), func(t *testing.T) {
			got, err := GenerateInstallments(InstallmentPlan{Template: planTemplate(tc.total, NewDate(2024, 1, 1)), Count: tc.n})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var sum int64
			for i, tx := range got {
				sum += tx.Amount.Cents
				want := tc.rest
				if i == 0 {
					want = tc.first
				}
				if tx.Amount.Cents != want {
					t.Fatalf("entry %d: got %d, want %d", i+1, tx.Amount.Cents, want)
				}
			}
			if sum != tc.total {
				t.Fatalf("sum %d != total %d", sum, tc.total)
			}
		})
	}
}

func TestGenerateInstallmentsSumProperty(t *testing.T) {
	for n := MinInstallments; n <= MaxInstallments; n++ {
		for _, total := range []int64{int64(n), 99, 1000, 12345, 999999} {
			if total < int64(n) {
				continue
			}
			got, err := GenerateInstallments(InstallmentPlan{Template: planTemplate(total, NewDate(2024, 1, 31)), Count: n})
			if err != nil {
				t.Fatalf("n=%d total=%d: %v", n, total, err)
			}
			if len(got) != n {
				t.Fatalf("n=%d: got %d entries", n, len(got))
			}
			var sum int64
			for i, tx := range got {
				sum += tx.Amount.Cents
				if !strings.HasSuffix(tx.Description, fmt.Sprintf("(%d/%d)", i+1, n)) {
					t.Fatalf("n=%d entry %d: %q", n, i+1, tx.Description)
				}
			}
			if sum != total {
				t.Fatalf("n=%d total=%d: sum %d", n, total, sum)
			}
		}
	}
}

func TestGenerateInstallmentsMonthEnd(t *testing.T) {
	got, err := GenerateInstallments(InstallmentPlan{Template: planTemplate(3000, NewDate(2024, 1, 31)), Count: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"2024-01-31", "2024-02-29", "2024-03-31"}
	for i, tx := range got {
		if tx.BillingDate.String() != want[i] {
			t.Fatalf("entry %d: got %s, want %s", i+1, tx.BillingDate, want[i])
		}
	}
}

func TestGenerateInstallmentsUniqueIDs(t *testing.T) {
	tmpl := planTemplate(5000, NewDate(2024, 1, 1))
	tmpl.ID = "fixed-parent"
	got, err := GenerateInstallments(InstallmentPlan{Template: tmpl, Count: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].ID != "fixed-parent" {
		t.Fatalf("parent id %q not kept", got[0].ID)
	}
	seen := map[string]bool{}
	for _, tx := range got {
		if seen[tx.ID] {
			t.Fatalf("duplicate id %s", tx.ID)
		}
		seen[tx.ID] = true
	}
}

func TestGenerateInstallmentsRejects(t *testing.T) {
	cases := []struct {
		name string
		plan InstallmentPlan
		want error
	}{
		{"one installment", InstallmentPlan{Template: planTemplate(1000, NewDate(2024, 1, 1)), Count: 1}, ErrInvalidInstallments},
		{"too many", InstallmentPlan{Template: planTemplate(1000, NewDate(2024, 1, 1)), Count: 25}, ErrInvalidInstallments},
		{"zero total", InstallmentPlan{Template: planTemplate(0, NewDate(2024, 1, 1)), Count: 3}, ErrInvalidAmount},
		{"fewer cents than installments", InstallmentPlan{Template: planTemplate(2, NewDate(2024, 1, 1)), Count: 3}, ErrInvalidAmount},
		{"no billing date", InstallmentPlan{Template: planTemplate(1000, Date{}), Count: 3}, ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := GenerateInstallments(tc.plan); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	long := planTemplate(1000, NewDate(2024, 1, 1))
	long.Description = strings.Repeat("x", 195)
	if _, err := GenerateInstallments(InstallmentPlan{Template: long, Count: 12}); !errors.Is(err, ErrDescriptionTooLong) {
		t.Fatalf("suffix overflow not caught: %v", err)
	}
}
