// Package services holds the business operations of carteira. Every
// household-scoped operation takes the household id explicitly.
//
// This file implements the strategy pattern used to decide when a
// recurring transaction template is due again. Each frequency has its own
// checker that knows both when the template is due and which date the new
// occurrence gets.
package services

import (
	"fmt"

	"carteira/internal/core"
)

type Frequency string

const (
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

// DuenessChecker is the strategy interface for recurring templates.
type DuenessChecker interface {
	// IsDue reports whether a template anchored on anchor, last
	// materialised for last, is due again on today.
	IsDue(last, today, anchor core.Date) bool
	// Occurrence is the date of the occurrence created on today.
	Occurrence(anchor, today core.Date) core.Date
}

// MonthlyChecker repeats a template on its day of month, clamped to short
// months, at most once per calendar month.
type MonthlyChecker struct{}

func (MonthlyChecker) IsDue(last, today, anchor core.Date) bool {
	if monthIndex(today) <= monthIndex(last) {
		return false
	}
	return today.Day() >= clampDay(anchor.Day(), today.Year(), today.Month())
}

func (MonthlyChecker) Occurrence(anchor, today core.Date) core.Date {
	return core.NewDate(today.Year(), today.Month(), clampDay(anchor.Day(), today.Year(), today.Month()))
}

// YearlyChecker repeats a template on its month and day once a year.
type YearlyChecker struct{}

func (YearlyChecker) IsDue(last, today, anchor core.Date) bool {
	if today.Year() <= last.Year() {
		return false
	}
	if today.Month() != anchor.Month() {
		return today.Month() > anchor.Month()
	}
	return today.Day() >= clampDay(anchor.Day(), today.Year(), today.Month())
}

func (YearlyChecker) Occurrence(anchor, today core.Date) core.Date {
	return core.NewDate(today.Year(), anchor.Month(), clampDay(anchor.Day(), today.Year(), anchor.Month()))
}

func monthIndex(d core.Date) int {
	return d.Year()*12 + d.Month() - 1
}

func clampDay(day, year, month int) int {
	if last := core.DaysIn(year, month); day > last {
		return last
	}
	return day
}

var duenessStrategies = map[Frequency]DuenessChecker{
	Monthly: MonthlyChecker{},
	Yearly:  YearlyChecker{},
}

// GetDuenessChecker returns the checker registered for a frequency.
func GetDuenessChecker(frequency Frequency) (DuenessChecker, error) {
	checker, ok := duenessStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", frequency)
	}
	return checker, nil
}
