package resilience

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"explicit transient", NewTransientError(eris.New("x"), 503), true},
		{"wrapped transient", eris.Wrap(NewTransientError(eris.New("x"), 429), "outer"), true},
		{"rate limit error", eris.New("anthropic: rate_limit_error"), true},
		{"overloaded error", eris.New("API returned overloaded_error"), true},
		{"http 429", eris.New("unexpected status 429"), true},
		{"http 529", eris.New("status 529 overloaded"), true},
		{"connection reset", eris.New("read tcp: connection reset by peer"), true},
		{"io timeout", eris.New("dial tcp: i/o timeout"), true},
		{"auth failure", eris.New("401 unauthorized"), false},
		{"bad request", eris.New("invalid_request_error: max_tokens required"), false},
		{"plain error", eris.New("something else"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504, 529} {
		assert.True(t, IsTransientHTTPStatus(code), "code %d", code)
	}
	for _, code := range []int{200, 201, 400, 401, 403, 404, 422} {
		assert.False(t, IsTransientHTTPStatus(code), "code %d", code)
	}
}

func TestTransientErrorUnwrap(t *testing.T) {
	inner := eris.New("inner")
	te := NewTransientError(inner, 500)
	assert.Equal(t, "inner", te.Error())
	assert.Equal(t, inner, te.Unwrap())
	assert.Equal(t, 500, te.StatusCode)
}
