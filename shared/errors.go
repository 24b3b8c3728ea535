// Copyright (C) 2026 l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package shared

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

// ErrorKind classifies every error the analysis pipeline can surface to a caller.
type ErrorKind string

const (
	ErrorKindMalformedDocument     ErrorKind = "MalformedDocument"
	ErrorKindUnsupportedFormat     ErrorKind = "UnsupportedFormat"
	ErrorKindQuotaExceeded         ErrorKind = "QuotaExceeded"
	ErrorKindQuotaCheckUnavailable ErrorKind = "QuotaCheckUnavailable"
	ErrorKindUpstreamUnavailable   ErrorKind = "UpstreamUnavailable"
	ErrorKindCorrelationDegraded   ErrorKind = "CorrelationDegraded"
	ErrorKindCancelled             ErrorKind = "Cancelled"
	ErrorKindNotFound              ErrorKind = "NotFound"
	ErrorKindInvalidTransition     ErrorKind = "InvalidTransition"
	ErrorKindInternal              ErrorKind = "Internal"
)

type kindError struct {
	kind ErrorKind
	msg  string
}

func (e *kindError) Error() string {
	return e.msg
}

func (e *kindError) Kind() ErrorKind {
	return e.kind
}

var (
	ErrMalformedDocument     error = &kindError{kind: ErrorKindMalformedDocument, msg: "malformed sbom document"}
	ErrUnsupportedFormat     error = &kindError{kind: ErrorKindUnsupportedFormat, msg: "unsupported sbom format"}
	ErrQuotaExceeded         error = &kindError{kind: ErrorKindQuotaExceeded, msg: "quota exceeded"}
	ErrQuotaCheckUnavailable error = &kindError{kind: ErrorKindQuotaCheckUnavailable, msg: "quota check unavailable"}
	ErrUpstreamUnavailable   error = &kindError{kind: ErrorKindUpstreamUnavailable, msg: "vulnerability database unavailable"}
	ErrCorrelationDegraded   error = &kindError{kind: ErrorKindCorrelationDegraded, msg: "too many vulnerability lookups failed"}
	ErrCancelled             error = &kindError{kind: ErrorKindCancelled, msg: "analysis cancelled"}
	ErrNotFound              error = &kindError{kind: ErrorKindNotFound, msg: "not found"}
	ErrInvalidTransition     error = &kindError{kind: ErrorKindInvalidTransition, msg: "invalid analysis status transition"}
)

// KindOf returns the kind of the first classified error in the chain.
// context cancellation and deadlines are reported as cancelled, everything else as internal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorKindCancelled
	}
	return ErrorKindInternal
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

var kindStatus = map[ErrorKind]int{
	ErrorKindMalformedDocument:     http.StatusBadRequest,
	ErrorKindUnsupportedFormat:     http.StatusUnsupportedMediaType,
	ErrorKindQuotaExceeded:         http.StatusTooManyRequests,
	ErrorKindQuotaCheckUnavailable: http.StatusServiceUnavailable,
	ErrorKindUpstreamUnavailable:   http.StatusBadGateway,
	ErrorKindCorrelationDegraded:   http.StatusBadGateway,
	ErrorKindNotFound:              http.StatusNotFound,
	ErrorKindInvalidTransition:     http.StatusConflict,
	ErrorKindCancelled:             http.StatusRequestTimeout,
}

// HTTPStatusOf returns the http status code matching the kind of err.
func HTTPStatusOf(err error) int {
	if code, ok := kindStatus[KindOf(err)]; ok {
		return code
	}
	return http.StatusInternalServerError
}
