// Package http provides the JSON API handlers.
//
// This file implements request decoding and query parsing shared by the
// handlers.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"carteira/internal/core"
)

const maxBodyBytes = 1 << 20

// amountField accepts a decimal string ("120,00", "120.00") or a JSON number.
type amountField string

func (a *amountField) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amountField(s)
		return nil
	}
	if string(b) == "null" {
		*a = ""
		return nil
	}
	*a = amountField(b)
	return nil
}

// Money parses the field. Blank means absent.
func (a amountField) Money(field string) (core.Money, bool, error) {
	if strings.TrimSpace(string(a)) == "" {
		return core.Money{}, false, nil
	}
	m, err := core.ParseAmount(string(a))
	if err != nil {
		return core.Money{}, true, core.Invalid(field, err)
	}
	return m, true, nil
}

// decodeJSON reads a single JSON object into dst. Unknown fields and
// trailing data are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty request body", errBadRequest)
		}
		return fmt.Errorf("%w: malformed JSON body: %v", errBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON body", errBadRequest)
	}
	return nil
}

// parseDateField parses a YYYY-MM-DD value, using fallback when blank.
func parseDateField(field, value string, fallback core.Date) (core.Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	d, err := core.ParseDate(value)
	if err != nil {
		return core.Date{}, core.Invalid(field, err)
	}
	return d, nil
}

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams reads year and month from the query, defaulting each to
// the month of now.
func ParseMonthParams(query url.Values, now time.Time) (MonthParams, error) {
	params := MonthParams{Year: now.Year(), Month: int(now.Month())}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 || y > 9999 {
			return MonthParams{}, core.Invalid("year", core.ErrInvalidDate)
		}
		params.Year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return MonthParams{}, core.Invalid("month", core.ErrInvalidDate)
		}
		params.Month = m
	}
	return params, nil
}

// ParsePeriod reads either an explicit from/to range or a year/month pair.
func ParsePeriod(query url.Values, now time.Time) (core.Period, error) {
	from, to := strings.TrimSpace(query.Get("from")), strings.TrimSpace(query.Get("to"))
	if from == "" && to == "" {
		mp, err := ParseMonthParams(query, now)
		if err != nil {
			return core.Period{}, err
		}
		return core.MonthPeriod(mp.Year, mp.Month), nil
	}
	if from == "" {
		return core.Period{}, core.Invalid("from", core.ErrInvalidDate)
	}
	if to == "" {
		return core.Period{}, core.Invalid("to", core.ErrInvalidDate)
	}

	p := core.Period{}
	var err error
	if p.From, err = parseDateField("from", from, core.Date{}); err != nil {
		return core.Period{}, err
	}
	if p.To, err = parseDateField("to", to, core.Date{}); err != nil {
		return core.Period{}, err
	}
	if err := p.Validate(); err != nil {
		return core.Period{}, err
	}
	return p, nil
}
