// Package core holds the ledger model: sale and expense entries, the numeric
// coercion applied to every quantity, and the derived daily totals.
//
// This file contains the Number type and the two ways of reading one from
// user input: CoerceNumber never fails and yields NaN for garbage, while
// ParseNonNegativeNumber reports the problem.
package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Number is a numeric ledger field (cylinder count, unit price, expense
// amount). It can hold NaN when the input was not numeric; NaN is stored as
// is and poisons every total that touches it.
type Number float64

var (
	ErrNotANumber     = errors.New("not a number")
	ErrNegativeNumber = errors.New("negative number")
)

// NaN returns the invalid-number marker.
func NaN() Number {
	return Number(math.NaN())
}

// CoerceNumber reads s the way a browser number input is read: surrounding
// whitespace is ignored, the empty string is zero and anything that does not
// parse becomes NaN.
//
// Examples:
//
//	CoerceNumber("5")    -> 5
//	CoerceNumber(" 2.5") -> 2.5
//	CoerceNumber("")     -> 0
//	CoerceNumber("abc")  -> NaN
func CoerceNumber(s string) Number {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return NaN()
	}
	return Number(f)
}

// ParseNonNegativeNumber is the strict counterpart of CoerceNumber. Empty,
// non-numeric and non-finite input returns ErrNotANumber; values below zero
// return ErrNegativeNumber.
func ParseNonNegativeNumber(s string) (Number, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrNotANumber
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrNotANumber
	}
	if f < 0 {
		return 0, ErrNegativeNumber
	}
	return Number(f), nil
}

// IsValid reports whether n is a finite number.
func (n Number) IsValid() bool {
	f := float64(n)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// String renders n without trailing zeros ("5", "2.5") or "NaN".
func (n Number) String() string {
	if !n.IsValid() {
		return "NaN"
	}
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// MarshalJSON writes invalid numbers as null since JSON has no NaN.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.IsValid() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(float64(n), 'f', -1, 64)), nil
}

// UnmarshalJSON accepts numbers, numeric strings (edited rows are saved as the
// raw input text), booleans and null. null reads back as zero.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null", "false":
		*n = 0
		return nil
	case "true":
		*n = 1
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = CoerceNumber(s)
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*n = NaN()
		return nil
	}
	*n = Number(f)
	return nil
}
