package shared

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatRupiah renders an IDR amount the way the dashboard cards show it,
// e.g. "Rp 1.250.000".
func FormatRupiah(amount float64) string {
	return idPrinter.Sprintf("%v", currency.Symbol(currency.IDR.Amount(roundAmount(amount))))
}

// FormatYen renders a JPY amount, e.g. "JP¥ 5.000".
func FormatYen(amount float64) string {
	return idPrinter.Sprintf("%v", currency.Symbol(currency.JPY.Amount(roundAmount(amount))))
}

// FormatPercent renders a margin with one decimal, e.g. "26,7%".
func FormatPercent(value float64) string {
	return idPrinter.Sprintf("%.1f%%", value)
}

func roundAmount(v float64) int64 {
	if v < 0 {
		return int64(v - 0.5)
	}
	return int64(v + 0.5)
}

// ParseAmount parses a numeric form field. Blank input is zero; ranges are
// not checked, so negative amounts are accepted.
func ParseAmount(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q bukan angka", ErrValidation, raw)
	}
	return v, nil
}

// ParseOptionalAmount parses a pointer field of a patch request.
func ParseOptionalAmount(raw *string) (*float64, error) {
	if raw == nil {
		return nil, nil
	}
	v, err := ParseAmount(*raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
