package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	MinInstallments = 2
	MaxInstallments = 24
)

// InstallmentPlan describes a financed purchase before it is split.
// Template carries the shared metadata (household, author, instrument,
// category, kind, notes, occurrence date); its Amount is the plan total,
// its Description the base description and its BillingDate the billing
// date of the first installment.
type InstallmentPlan struct {
	Template Transaction
	Count    int
}

func (p InstallmentPlan) Validate() error {
	if p.Count < MinInstallments || p.Count > MaxInstallments {
		return invalid("installments", ErrInvalidInstallments)
	}
	if err := p.Template.Amount.Validate(); err != nil {
		return invalid("amount", err)
	}
	if p.Template.Amount.Cents < int64(p.Count) {
		return invalid("amount", fmt.Errorf("%w: less than one cent per installment", ErrInvalidAmount))
	}
	if err := p.Template.BillingDate.Validate(); err != nil {
		return invalid("billing_date", err)
	}
	base := strings.TrimSpace(p.Template.Description)
	if err := ValidateDescription(base); err != nil {
		return err
	}
	if err := ValidateDescription(installmentLabel(base, p.Count, p.Count)); err != nil {
		return err
	}
	return nil
}

// GenerateInstallments splits a plan into Count linked transactions.
//
// Amounts are split evenly in cents and the remainder goes to the first
// installment, so the installments always sum to the plan total. Entry i is
// described as "<base> (i/N)" and billed AddMonths(first, i-1) months after
// the first billing date, always computed from the first date. The first
// entry is the parent; the others carry its ID in ParentID. IDs are
// assigned here so the plan can be persisted in a single write.
func GenerateInstallments(plan InstallmentPlan) ([]Transaction, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	n := int64(plan.Count)
	total := plan.Template.Amount.Cents
	share, remainder := total/n, total%n
	base := strings.TrimSpace(plan.Template.Description)
	first := plan.Template.BillingDate

	parentID := plan.Template.ID
	if parentID == "" {
		parentID = uuid.NewString()
	}

	out := make([]Transaction, 0, plan.Count)
	for i := 1; i <= plan.Count; i++ {
		t := plan.Template
		t.Amount = Money{Cents: share}
		if i == 1 {
			t.ID = parentID
			t.Amount.Cents += remainder
			t.ParentID = ""
		} else {
			t.ID = uuid.NewString()
			t.ParentID = parentID
		}
		t.Description = installmentLabel(base, i, plan.Count)
		t.BillingDate = AddMonths(first, i-1)
		t.TotalInstallments = plan.Count
		t.InstallmentIndex = i
		t.Recurring = false
		out = append(out, t)
	}
	return out, nil
}

func installmentLabel(base string, i, n int) string {
	return fmt.Sprintf("%s (%d/%d)", base, i, n)
}
