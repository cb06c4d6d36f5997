package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceNumber(t *testing.T) {
	cases := []struct {
		in    string
		out   float64
		valid bool
	}{
		{"5", 5, true},
		{" 2.5 ", 2.5, true},
		{"", 0, true},
		{"   ", 0, true},
		{"-3", -3, true},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"12,5", 0, false},
	}
	for _, tc := range cases {
		got := CoerceNumber(tc.in)
		if !tc.valid {
			assert.False(t, got.IsValid(), "%q should be NaN", tc.in)
			continue
		}
		assert.Equal(t, tc.out, float64(got), "%q", tc.in)
	}
}

func TestParseNonNegativeNumber(t *testing.T) {
	n, err := ParseNonNegativeNumber(" 900 ")
	require.NoError(t, err)
	assert.Equal(t, Number(900), n)

	n, err = ParseNonNegativeNumber("0")
	require.NoError(t, err)
	assert.Equal(t, Number(0), n)

	for _, in := range []string{"", "abc", "NaN", "Inf"} {
		_, err := ParseNonNegativeNumber(in)
		assert.ErrorIs(t, err, ErrNotANumber, "%q", in)
	}
	_, err = ParseNonNegativeNumber("-1")
	assert.ErrorIs(t, err, ErrNegativeNumber)
}

func TestNumberJSON(t *testing.T) {
	var sales []SaleEntry
	raw := `[{"cylinders":5,"price":"950","note":"cash","date":"2024-01-01"},
	         {"cylinders":null,"price":"abc","note":"","date":""},
	         {"cylinders":2,"price":900}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &sales))
	require.Len(t, sales, 3)

	assert.Equal(t, Number(5), sales[0].Cylinders)
	assert.Equal(t, Number(950), sales[0].Price)
	assert.Equal(t, Number(0), sales[1].Cylinders)
	assert.False(t, sales[1].Price.IsValid())
	assert.Equal(t, "", sales[2].Note)

	out, err := json.Marshal(SaleEntry{Cylinders: NaN(), Price: 2.5, Note: "x", Date: "d"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"cylinders":null,"price":2.5,"note":"x","date":"d"}`, string(out))
}

func TestStateCloneIsIndependent(t *testing.T) {
	s := LedgerState{Sales: []SaleEntry{{Cylinders: 1}}, ActiveDate: "2024-01-01"}
	c := s.Clone()
	c.Sales[0].Cylinders = 9
	assert.Equal(t, Number(1), s.Sales[0].Cylinders)
	assert.NotNil(t, c.Expenses)
	assert.False(t, c.IsEmpty())
	assert.True(t, LedgerState{}.IsEmpty())
}
