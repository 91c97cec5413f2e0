package domainerrors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		err := New(CodeNotFound, "campaign not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("through wrap chain", func(t *testing.T) {
		cause := errors.New("sql: no rows")
		err := Wrap(cause, CodeNotFound, "campaign not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("uncoded error has no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "below minimum", MessageOf(New(CodeValidation, "below minimum")))
	assert.Equal(t, "internal error", MessageOf(errors.New("raw infra detail")))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest:         http.StatusBadRequest,
		CodeInvalidInput:       http.StatusBadRequest,
		CodeValidation:         http.StatusBadRequest,
		CodeUnauthorized:       http.StatusUnauthorized,
		CodeForbidden:          http.StatusForbidden,
		CodeNotFound:           http.StatusNotFound,
		CodeConflict:           http.StatusConflict,
		CodeAlreadyPending:     http.StatusConflict,
		CodeAlreadyResolved:    http.StatusConflict,
		CodeInvalidTransition:  http.StatusConflict,
		CodeTimeout:            http.StatusGatewayTimeout,
		CodeInvariantViolation: http.StatusInternalServerError,
		CodeInternal:           http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), string(code))
	}
}
