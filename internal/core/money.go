// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from display
// strings and formatting minor units (öre) back into kronor.
package core

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor currency units.
type Money struct {
	Cents int64
}

// ErrInvalidMoney is returned for strings that are not a decimal number.
var ErrInvalidMoney = errors.New("invalid amount")

var hundred = decimal.NewFromInt(100)

func (m Money) String() string {
	return FormatCents(m.Cents)
}

// MarshalJSON encodes money as a bare integer of minor units.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Cents)
}

func (m *Money) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &m.Cents)
}

// ParseMoneyToCents converts a display amount to minor units.
//
// Whitespace and currency symbols are ignored and a decimal comma is accepted
// as well as a dot. Fractions of a cent are rounded half away from zero. An empty input is
// zero. The sign is kept; positivity is checked at the write boundary.
//
// Examples:
//
//	ParseMoneyToCents("8 500 kr") -> 850000, nil
//	ParseMoneyToCents("12,345")   -> 1235, nil
//	ParseMoneyToCents("-4.50")    -> -450, nil
func ParseMoneyToCents(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsDigit(r), r == '.', r == '-':
			return r
		case r == ',':
			return '.'
		}
		return -1
	}, s)
	if cleaned == "" {
		return 0, ErrInvalidMoney
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, ErrInvalidMoney
	}
	cents := d.Mul(hundred).Round(0)
	if !cents.IsInteger() || cents.Abs().GreaterThan(decimal.NewFromInt(1<<62)) {
		return 0, ErrInvalidMoney
	}
	return cents.IntPart(), nil
}

// FormatCents renders minor units as Swedish kronor, e.g. "8 500,00 kr".
func FormatCents(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)
	frac := cents % 100

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	if frac < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(frac, 10))
	b.WriteString(" kr")
	return b.String()
}
