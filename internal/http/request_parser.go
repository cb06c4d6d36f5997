// Package http serves the ledger page, its form endpoints and the report
// downloads.
//
// This file turns request bodies into ledger inputs. Bodies may be form
// encoded (the page) or JSON (scripts).
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

	"gasledger/internal/core"
)

const maxBodyBytes = 64 << 10

// FieldError names the input field that failed strict parsing.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return fmt.Sprintf("%s: %v", e.Field, e.Err) }
func (e *FieldError) Unwrap() error { return e.Err }

// RequestBodyParser reads a body once and serves string values from either
// a JSON object or form values.
type RequestBodyParser struct {
	jsonData map[string]any
	formData url.Values
}

func NewRequestBodyParser(r *http.Request) (*RequestBodyParser, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	p := &RequestBodyParser{}

	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") || strings.HasPrefix(trimmed, "{") {
		p.jsonData = make(map[string]any)
		if trimmed == "" {
			return p, nil
		}
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			return nil, fmt.Errorf("decode json body: %w", err)
		}
		return p, nil
	}

	p.formData, err = url.ParseQuery(trimmed)
	if err != nil {
		return nil, fmt.Errorf("decode form body: %w", err)
	}
	return p, nil
}

// Get returns the sanitized value for key, or "".
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if v, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(v))
		}
		return ""
	}
	return sanitizeInput(p.formData.Get(key))
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// numberParser converts raw text to a ledger number. Lenient mode never
// fails; strict mode rejects empty, non-numeric and negative values.
type numberParser struct {
	strict bool
}

func (np numberParser) parse(field, raw string) (core.Number, error) {
	if !np.strict {
		return core.CoerceNumber(raw), nil
	}
	n, err := core.ParseNonNegativeNumber(raw)
	if err != nil {
		return 0, &FieldError{Field: field, Err: err}
	}
	return n, nil
}

func (np numberParser) saleInput(p *RequestBodyParser) (core.SaleInput, error) {
	cylinders, err1 := np.parse("cylinders", p.Get("cylinders"))
	price, err2 := np.parse("price", p.Get("price"))
	if err := errors.Join(err1, err2); err != nil {
		return core.SaleInput{}, err
	}
	return core.SaleInput{Cylinders: cylinders, Price: price, Note: p.Get("note")}, nil
}

func (np numberParser) expenseInput(p *RequestBodyParser) (core.ExpenseInput, error) {
	amount, err := np.parse("amount", p.Get("amount"))
	if err != nil {
		return core.ExpenseInput{}, err
	}
	return core.ExpenseInput{Name: p.Get("name"), Amount: amount}, nil
}

// parseIndex reads the {index} path value.
func parseIndex(r *http.Request) (int, error) {
	raw := r.PathValue("index")
	i, err := strconv.Atoi(raw)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid index %q", raw)
	}
	return i, nil
}
