package shared

import (
	"context"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	t.Run("should find the kind through wrapping", func(t *testing.T) {
		err := errors.Wrap(errors.Wrap(ErrQuotaExceeded, "tier free"), "could not submit")
		assert.Equal(t, ErrorKindQuotaExceeded, KindOf(err))
		assert.True(t, IsKind(err, ErrorKindQuotaExceeded))
		assert.ErrorIs(t, err, ErrQuotaExceeded)
	})

	t.Run("should classify context errors as cancelled", func(t *testing.T) {
		assert.Equal(t, ErrorKindCancelled, KindOf(errors.Wrap(context.Canceled, "lookup")))
		assert.Equal(t, ErrorKindCancelled, KindOf(context.DeadlineExceeded))
	})

	t.Run("should classify unknown errors as internal", func(t *testing.T) {
		assert.Equal(t, ErrorKindInternal, KindOf(errors.New("boom")))
		assert.Equal(t, ErrorKind(""), KindOf(nil))
		assert.False(t, IsKind(nil, ErrorKindInternal))
	})
}

func TestHTTPStatusOf(t *testing.T) {
	cases := map[error]int{
		ErrMalformedDocument:     http.StatusBadRequest,
		ErrUnsupportedFormat:     http.StatusUnsupportedMediaType,
		ErrQuotaExceeded:         http.StatusTooManyRequests,
		ErrQuotaCheckUnavailable: http.StatusServiceUnavailable,
		ErrNotFound:              http.StatusNotFound,
		errors.New("boom"):       http.StatusInternalServerError,
	}
	for err, code := range cases {
		assert.Equal(t, code, HTTPStatusOf(errors.Wrap(err, "wrapped")), err.Error())
	}
}
