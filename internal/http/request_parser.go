package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"iuran/internal/core"
)

// parsePeriod reads the month/year query parameters. Both absent means the
// current month; anything malformed or out of range is ErrInvalidPeriod so
// the response mapping stays uniform with the services.
func parsePeriod(r *http.Request) (core.Period, error) {
	q := r.URL.Query()
	monthStr, yearStr := q.Get("month"), q.Get("year")

	if monthStr == "" && yearStr == "" {
		return core.NewPeriod(time.Now()), nil
	}
	if monthStr == "" || yearStr == "" {
		return core.Period{}, fmt.Errorf("month and year must be given together: %w", core.ErrInvalidPeriod)
	}

	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return core.Period{}, fmt.Errorf("month %q: %w", monthStr, core.ErrInvalidPeriod)
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return core.Period{}, fmt.Errorf("year %q: %w", yearStr, core.ErrInvalidPeriod)
	}

	p := core.Period{Month: month, Year: year}
	if err := p.Validate(); err != nil {
		return core.Period{}, err
	}
	return p, nil
}

// parseDate parses a YYYY-MM-DD request field.
func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

// parseAmount converts a decimal amount string from a request body into
// cents. Accepts both "12500.50" and "12500,50".
func parseAmount(value string) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(value)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}
