package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency the daily report is printed in.
const DefaultCurrency = "INR"

var ErrUnknownCurrency = errors.New("unknown currency")

// Figure is an exact aggregate amount. A figure built from a NaN input is
// invalid, and stays invalid through any arithmetic with it.
type Figure struct {
	value   decimal.Decimal
	invalid bool
}

// FigureOf converts a ledger number. Non-finite numbers give an invalid figure.
func FigureOf(n Number) Figure {
	if !n.IsValid() {
		return Figure{invalid: true}
	}
	return Figure{value: decimal.NewFromFloat(float64(n))}
}

// InvalidFigure returns the NaN figure.
func InvalidFigure() Figure {
	return Figure{invalid: true}
}

func (f Figure) Add(g Figure) Figure {
	if f.invalid || g.invalid {
		return InvalidFigure()
	}
	return Figure{value: f.value.Add(g.value)}
}

func (f Figure) Sub(g Figure) Figure {
	if f.invalid || g.invalid {
		return InvalidFigure()
	}
	return Figure{value: f.value.Sub(g.value)}
}

func (f Figure) Mul(g Figure) Figure {
	if f.invalid || g.invalid {
		return InvalidFigure()
	}
	return Figure{value: f.value.Mul(g.value)}
}

// IsValid reports whether f is a real number.
func (f Figure) IsValid() bool { return !f.invalid }

// Decimal returns the exact value. It is zero for invalid figures.
func (f Figure) Decimal() decimal.Decimal { return f.value }

// Equal is false whenever either side is invalid, like NaN comparison.
func (f Figure) Equal(g Figure) bool {
	return !f.invalid && !g.invalid && f.value.Equal(g.value)
}

// String prints the value without padding ("5", "2.5") or "NaN".
func (f Figure) String() string {
	if f.invalid {
		return "NaN"
	}
	return f.value.String()
}

// Fixed prints the value with exactly places decimals or "NaN".
func (f Figure) Fixed(places int32) string {
	if f.invalid {
		return "NaN"
	}
	return f.value.StringFixed(places)
}

// Currency prints figures as the report does: the currency grapheme followed
// by the amount with two decimals, e.g. "₹4500.00".
type Currency struct {
	code     string
	grapheme string
}

// NewCurrency looks up an ISO 4217 code.
func NewCurrency(code string) (Currency, error) {
	c := money.GetCurrency(strings.ToUpper(strings.TrimSpace(code)))
	if c == nil {
		return Currency{}, fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	return Currency{code: c.Code, grapheme: c.Grapheme}, nil
}

// MustCurrency is NewCurrency for codes known at compile time.
func MustCurrency(code string) Currency {
	c, err := NewCurrency(code)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Currency) Code() string     { return c.code }
func (c Currency) Grapheme() string { return c.grapheme }

// Format renders f, e.g. "₹1500.00", "₹-300.00" or "₹NaN".
func (c Currency) Format(f Figure) string {
	return c.grapheme + f.Fixed(2)
}
