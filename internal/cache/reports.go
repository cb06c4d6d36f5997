package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"time"

	"gasledger/internal/core"
)

// RenderFunc writes one report for state.
type RenderFunc func(ctx context.Context, w io.Writer, state core.LedgerState) error

// Reports caches rendered report bytes by format and ledger content.
type Reports struct {
	lru *LRUCache[[]byte]
}

func NewReports(maxSize int, ttl time.Duration) *Reports {
	return &Reports{lru: NewLRUCache[[]byte](maxSize, ttl)}
}

// Key identifies a report: the same format over an equal ledger gives the
// same key.
func Key(format string, state core.LedgerState) (string, error) {
	data, err := json.Marshal(struct {
		Sales      []core.SaleEntry    `json:"s"`
		Expenses   []core.ExpenseEntry `json:"e"`
		ActiveDate string              `json:"d"`
	}{state.Sales, state.Expenses, state.ActiveDate})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return format + ":" + hex.EncodeToString(sum[:]), nil
}

// Render returns the cached report for state, rendering and storing it on a
// miss. hit reports whether the bytes came from the cache. Failed renders are
// not cached.
func (r *Reports) Render(ctx context.Context, format string, state core.LedgerState, render RenderFunc) (data []byte, hit bool, err error) {
	key, err := Key(format, state)
	if err != nil {
		return nil, false, err
	}
	if data, ok := r.lru.Get(key); ok {
		return data, true, nil
	}

	var buf bytes.Buffer
	if err := render(ctx, &buf, state); err != nil {
		return nil, false, err
	}
	data = buf.Bytes()
	r.lru.Set(key, data)
	return data, false, nil
}

func (r *Reports) CleanExpired() int { return r.lru.CleanExpired() }

func (r *Reports) Size() int { return r.lru.Size() }
