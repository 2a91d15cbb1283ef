// Package core provides the household budget domain: categories, expenses,
// family members and peso amounts.
//
// This file contains parsing and formatting of peso amounts.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var copPrinter = message.NewPrinter(language.MustParse("es-CO"))

// ParseAmount converts a user-typed amount to whole pesos.
//
// Grouping dots are not accepted; a single dot or comma is taken as the
// decimal separator and the value is rounded half away from zero.
//
// Examples:
//
//	ParseAmount("150")     -> 150, nil
//	ParseAmount("150,5")   -> 151, nil
//	ParseAmount("abc")     -> 0, ErrInvalidAmount
//	ParseAmount("-3")      -> 0, ErrInvalidAmount
func ParseAmount(s string) (Pesos, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return fromDecimal(d)
}

// PesosFromFloat rounds a model-provided number to whole pesos.
func PesosFromFloat(f float64) (Pesos, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidAmount
	}
	return fromDecimal(decimal.NewFromFloat(f))
}

func fromDecimal(d decimal.Decimal) (Pesos, error) {
	r := d.Round(0)
	if r.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}
	if r.GreaterThan(decimal.NewFromInt(1 << 53)) {
		return 0, ErrInvalidAmount
	}
	return Pesos(r.IntPart()), nil
}

// FormatCOP renders an amount the way Colombian pesos are written, without
// decimals: "$ 1.234.567".
func FormatCOP(p Pesos) string {
	if p < 0 {
		return "-$ " + copPrinter.Sprintf("%d", int64(-p))
	}
	return "$ " + copPrinter.Sprintf("%d", int64(p))
}

func (p Pesos) String() string {
	return FormatCOP(p)
}
