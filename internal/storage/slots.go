// Package storage persists the ledger into three named key-value slots and
// provides the slot backends (memory, SQLite, Redis).
package storage

import (
	"context"
	"errors"
	"sync"
)

// Slot names. They match the keys the browser version of the ledger used.
const (
	KeySales      = "entries"
	KeyExpenses   = "expenses"
	KeyActiveDate = "mainDate"
)

var ErrSlotNotFound = errors.New("slot not found")

// Slots is a durable string key-value store.
type Slots interface {
	// Get returns ErrSlotNotFound when key was never written.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// MemorySlots keeps slots in process memory.
type MemorySlots struct {
	mu     sync.Mutex
	values map[string]string
}

var _ Slots = (*MemorySlots)(nil)

func NewMemorySlots() *MemorySlots {
	return &MemorySlots{values: make(map[string]string)}
}

func (m *MemorySlots) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrSlotNotFound
	}
	return v, nil
}

func (m *MemorySlots) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
