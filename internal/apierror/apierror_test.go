package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_WrappedChain(t *testing.T) {
	err := fmt.Errorf("checkout: %w", Conflict("stock changed"))
	assert.Equal(t, KindConflict, KindOf(err))
	assert.True(t, Retryable(err))
}

func TestKindOf_UntaggedIsServer(t *testing.T) {
	err := errors.New("pq: connection reset")
	assert.Equal(t, KindServer, KindOf(err))
	assert.False(t, Retryable(err))
}

func TestFrom_MasksServerErrors(t *testing.T) {
	resp := From(Server("insert sale", errors.New("duplicate key value violates unique constraint")))
	assert.Equal(t, "internal server error", resp.Detail)
	assert.Equal(t, KindServer, resp.Kind)

	resp = From(fmt.Errorf("wrap: %w", Validation("amount must be positive")))
	assert.Equal(t, "amount must be positive", resp.Detail)
	assert.Equal(t, KindValidation, resp.Kind)
}

func TestStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation: http.StatusUnprocessableEntity,
		KindNotFound:   http.StatusNotFound,
		KindConflict:   http.StatusConflict,
		KindForbidden:  http.StatusForbidden,
		KindNetwork:    http.StatusServiceUnavailable,
		KindServer:     http.StatusInternalServerError,
	}
	for k, want := range cases {
		assert.Equal(t, want, Status(k), string(k))
	}
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := Network("mail server unreachable", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "mail server unreachable: dial tcp: timeout", err.Error())
}
