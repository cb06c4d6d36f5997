package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gasledger/internal/core"
)

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        map[string]string
		json        bool
	}{
		{
			name:        "form",
			contentType: "application/x-www-form-urlencoded",
			body:        "name=fuel&amount=300",
			want:        map[string]string{"name": "fuel", "amount": "300", "missing": ""},
		},
		{
			name:        "json",
			contentType: "application/json",
			body:        `{"name":" fuel ","amount":300.5,"paid":true}`,
			want:        map[string]string{"name": "fuel", "amount": "300.5", "paid": "true", "missing": ""},
			json:        true,
		},
		{
			name: "json detected without header",
			body: `{"date":"2024-01-01"}`,
			want: map[string]string{"date": "2024-01-01"},
			json: true,
		},
		{
			name:        "control characters stripped",
			contentType: "application/x-www-form-urlencoded",
			body:        "note=a%00b",
			want:        map[string]string{"note": "ab"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			p, err := NewRequestBodyParser(req)

			require.NoError(t, err)
			assert.Equal(t, tt.json, p.IsJSON())
			for k, v := range tt.want {
				assert.Equal(t, v, p.Get(k), k)
			}
		})
	}
}

func TestNumberParser(t *testing.T) {
	lenient := numberParser{}
	n, err := lenient.parse("price", "abc")
	require.NoError(t, err)
	assert.False(t, n.IsValid())

	n, err = lenient.parse("price", "")
	require.NoError(t, err)
	assert.Equal(t, core.Number(0), n)

	strict := numberParser{strict: true}
	_, err = strict.parse("price", "")
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "price", fe.Field)
	assert.ErrorIs(t, err, core.ErrNotANumber)

	_, err = strict.parse("amount", "-3")
	assert.ErrorIs(t, err, core.ErrNegativeNumber)

	n, err = strict.parse("amount", "12.5")
	require.NoError(t, err)
	assert.Equal(t, core.Number(12.5), n)
}

func TestParseIndex(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/sales/3/delete", nil)
	req.SetPathValue("index", "3")
	i, err := parseIndex(req)
	require.NoError(t, err)
	assert.Equal(t, 3, i)

	req.SetPathValue("index", "x")
	_, err = parseIndex(req)
	assert.Error(t, err)
}

func TestExtractClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:4321"
	req.Header.Set("X-Forwarded-For", "198.51.100.1")
	assert.Equal(t, "203.0.113.7", extractClientIP(req), "untrusted peer cannot forward")

	req.RemoteAddr = "10.0.0.2:4321"
	assert.Equal(t, "198.51.100.1", extractClientIP(req))
}

func TestRateLimiterWindow(t *testing.T) {
	rl := newRateLimiter(1, time.Minute)
	defer rl.stop()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("a"))
	assert.False(t, rl.allow("a"))
	assert.True(t, rl.allow("b"))

	now = now.Add(time.Minute)
	assert.True(t, rl.allow("a"))

	now = now.Add(5 * time.Minute)
	rl.cleanupStaleEntries()
	assert.Empty(t, rl.clients)
}

func TestRequestID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-ID", "upstream-42")
	assert.Equal(t, "upstream-42", requestID(r))

	r.Header.Set("X-Request-ID", strings.Repeat("x", 65))
	assert.True(t, strings.HasPrefix(requestID(r), "req_"))

	r.Header.Del("X-Request-ID")
	id := requestID(r)
	assert.Len(t, id, len("req_")+16)
	assert.NotEqual(t, id, requestID(r))
}
