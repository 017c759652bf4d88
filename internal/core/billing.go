package core

// ResolveBillingDate maps a purchase date to the date it is billed on for a
// card whose statement closes on closingDay.
//
// The closing day is clamped to the last day of the occurrence month, so a
// card closing on the 31st closes on the 30th in April and on the 28th or
// 29th in February. A purchase made after the statement closed moves to the
// same day of the following month (clamped to that month's length);
// otherwise it is billed on the day it occurred.
//
// closingDay is not validated here; use ValidateClosingDay at the input
// boundary.
func ResolveBillingDate(occurred Date, closingDay int) Date {
	closing := closingDay
	if last := DaysIn(occurred.Year(), occurred.Month()); closing > last {
		closing = last
	}
	if occurred.Day() > closing {
		return AddMonths(occurred, 1)
	}
	return occurred
}
