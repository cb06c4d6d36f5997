package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gasledger/internal/core"
)

func TestStorePublish(t *testing.T) {
	s := New()
	state := core.LedgerState{Sales: []core.SaleEntry{{Cylinders: 2}}, ActiveDate: "2024-01-01"}

	require.NoError(t, s.PublishLedger(context.Background(), state))
	state.Sales[0].Cylinders = 99

	last, n := s.Last()
	assert.Equal(t, 1, n)
	assert.Equal(t, core.Number(2), last.Sales[0].Cylinders)
	assert.Equal(t, "2024-01-01", last.ActiveDate)
}

func TestStoreFailWith(t *testing.T) {
	s := New()
	s.FailWith(errors.New("quota"))

	assert.Error(t, s.PublishLedger(context.Background(), core.LedgerState{}))
	_, n := s.Last()
	assert.Zero(t, n)

	s.FailWith(nil)
	assert.NoError(t, s.PublishLedger(context.Background(), core.LedgerState{}))
}
