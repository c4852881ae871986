package helpers

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNotANumber is returned by the strict parsers for unparseable input
var ErrNotANumber = errors.New("not a number")

// ParseAmountOrZero coerces a monetary form value. Anything that is not a finite,
// non-negative number becomes 0; an empty value is 0 as well.
func ParseAmountOrZero(value string) float64 {
	amount, err := ParseAmount(value)
	if err != nil {
		return 0
	}
	return amount
}

// ParseAmount parses a monetary form value strictly. Empty input is 0.
func ParseAmount(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}

	amount, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, value)
	}
	if amount < 0 {
		return 0, fmt.Errorf("amount must not be negative: %q", value)
	}
	return amount, nil
}

// ParseYear parses an academic year. Empty input is 0; fractional values are rejected.
func ParseYear(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}

	year, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(year) || math.IsInf(year, 0) || year != math.Trunc(year) {
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, value)
	}
	if year < math.MinInt32 || year > math.MaxInt32 {
		return 0, fmt.Errorf("year out of range: %q", value)
	}
	return int(year), nil
}

// ParseFlag parses a boolean form value the way HTML forms and JSON clients send them
func ParseFlag(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off", "":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean: %q", value)
}
