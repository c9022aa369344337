package middleware

import (
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
)

// SentryMiddleware runs each request in its own hub and transaction. The
// transaction is renamed to the matched route once routing is done, so
// /benchmarks/latest/units?cursor=... groups with its siblings. Panics are
// reported and re-raised; 5xx responses are captured as messages.
func SentryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub := sentry.GetHubFromContext(r.Context())
		if hub == nil {
			hub = sentry.CurrentHub().Clone()
		}

		transaction := sentry.StartTransaction(
			sentry.SetHubOnContext(r.Context(), hub),
			r.Method+" "+r.URL.Path,
			sentry.WithOpName("http.server"),
			sentry.WithTransactionSource(sentry.SourceURL),
			sentry.ContinueFromRequest(r),
		)
		defer transaction.Finish()

		r = r.WithContext(transaction.Context())

		scope := hub.Scope()
		scope.SetRequest(r)
		if requestID := GetRequestID(r.Context()); requestID != "" {
			scope.SetTag("request_id", requestID)
			transaction.SetTag("request_id", requestID)
		}

		defer func() {
			if err := recover(); err != nil {
				transaction.Status = sentry.SpanStatusInternalError
				hub.RecoverWithContext(r.Context(), err)
				panic(err)
			}
		}()

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		if route := routePattern(r); route != "" {
			transaction.Name = r.Method + " " + route
			transaction.Source = sentry.SourceRoute
		}

		status := rec.Status()
		transaction.Status = httpStatusToSpanStatus(status)
		transaction.SetData("http.response.status_code", status)

		if status >= http.StatusInternalServerError {
			hub.CaptureMessage(fmt.Sprintf("HTTP %d: %s %s", status, r.Method, transaction.Name))
		}
	})
}

var spanStatusByHTTP = map[int]sentry.SpanStatus{
	http.StatusBadRequest:            sentry.SpanStatusInvalidArgument,
	http.StatusUnauthorized:          sentry.SpanStatusUnauthenticated,
	http.StatusNotFound:              sentry.SpanStatusNotFound,
	http.StatusRequestEntityTooLarge: sentry.SpanStatusFailedPrecondition,
	http.StatusTooManyRequests:       sentry.SpanStatusResourceExhausted,
	499:                              sentry.SpanStatusCanceled,
	http.StatusNotImplemented:        sentry.SpanStatusUnimplemented,
	http.StatusServiceUnavailable:    sentry.SpanStatusUnavailable,
	http.StatusGatewayTimeout:        sentry.SpanStatusDeadlineExceeded,
}

// httpStatusToSpanStatus converts HTTP status code to Sentry span status.
func httpStatusToSpanStatus(status int) sentry.SpanStatus {
	if s, ok := spanStatusByHTTP[status]; ok {
		return s
	}
	switch {
	case status >= 200 && status < 400:
		return sentry.SpanStatusOK
	case status >= 400 && status < 500:
		return sentry.SpanStatusInvalidArgument
	case status >= 500:
		return sentry.SpanStatusInternalError
	default:
		return sentry.SpanStatusUnknown
	}
}
