// Copyright (C) 2025 l3montree GmbH
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

package monitoring

import (
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var AlertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "sbomguard_alerts_total",
	Help: "Unexpected errors and recovered panics reported to error tracking",
}, []string{"type"})

// Alert reports an unexpected error to the error tracker and logs it.
// Without a configured sentry client the event id is nil and only the log remains.
func Alert(message string, err error) {
	evID := sentry.CurrentHub().CaptureException(errors.Wrap(err, message))
	AlertsTotal.WithLabelValues("error").Inc()
	slog.Error("unexpected error", "msg", message, "err", err, "eventID", evID)
}

// RecoverAndAlert is used by recover blocks (http handlers, pipeline runs, daemons).
func RecoverAndAlert(message string, err error) {
	evID := sentry.CurrentHub().Recover(err)
	AlertsTotal.WithLabelValues("panic").Inc()
	slog.Error("recovered from panic", "msg", message, "err", err, "eventID", evID)
}
