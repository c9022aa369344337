package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	}))

	t.Run("generates an id", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, captured)
		assert.Equal(t, captured, w.Header().Get("X-Request-ID"))
	})

	t.Run("propagates the caller's id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "req-42")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "req-42", captured)
	})

	t.Run("replaces an oversized id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", strings.Repeat("x", maxRequestIDLength+1))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Len(t, captured, 36)
	})
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.SetFlags(0)
	defer log.SetOutput(io.Discard)

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(AccessLog)
	r.Get("/benchmarks/latest", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	})

	req := httptest.NewRequest(http.MethodGet, "/benchmarks/latest", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var entry accessLogEntry
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, http.MethodGet, entry.Method)
	assert.Equal(t, "/benchmarks/latest", entry.Path)
	assert.Equal(t, "/benchmarks/latest", entry.Route)
	assert.Equal(t, http.StatusTeapot, entry.Status)
	assert.Equal(t, len("short and stout"), entry.Bytes)
	assert.Equal(t, "203.0.113.7", entry.RemoteAddr)
	assert.NotEmpty(t, entry.RequestID)
}

func TestLimitBody(t *testing.T) {
	handler := LimitBody(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			var maxErr *http.MaxBytesError
			assert.ErrorAs(t, err, &maxErr)
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("small body passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/search", strings.NewReader("{}")))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("declared length is rejected before the handler", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"sequence":[1,2,3]}`)))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

		var resp struct {
			Code string `json:"code"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "PAYLOAD_TOO_LARGE", resp.Code)
	})

	t.Run("unknown length is capped while reading", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"sequence":[1,2,3]}`))
		req.ContentLength = -1
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestSentryMiddleware_PassesThrough(t *testing.T) {
	handler := SentryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotNil(t, sentry.GetHubFromContext(r.Context()))
		assert.NotNil(t, sentry.SpanFromContext(r.Context()))
		w.WriteHeader(http.StatusAccepted)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/benchmarks", nil))

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestSentryMiddleware_NamesTransactionByRoute(t *testing.T) {
	var tx *sentry.Span
	r := chi.NewRouter()
	r.Use(SentryMiddleware)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tx = sentry.TransactionFromContext(r.Context())
			next.ServeHTTP(w, r)
		})
	})
	r.Get("/benchmarks/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/benchmarks/abc", nil))

	require.NotNil(t, tx)
	assert.Equal(t, "GET /benchmarks/{id}", tx.Name)
	assert.Equal(t, sentry.SourceRoute, tx.Source)
	assert.Equal(t, sentry.SpanStatusNotFound, tx.Status)
}

func TestStatusRecorder(t *testing.T) {
	w := httptest.NewRecorder()
	rec := &statusRecorder{ResponseWriter: w}
	assert.Equal(t, http.StatusOK, rec.Status())

	rec.Write([]byte("abc"))
	rec.WriteHeader(http.StatusInternalServerError)
	assert.Equal(t, http.StatusOK, rec.Status(), "first write fixes the status")
	assert.Equal(t, 3, rec.bytes)
	assert.Equal(t, w, rec.Unwrap())
}

func TestHTTPStatusToSpanStatus(t *testing.T) {
	assert.Equal(t, sentry.SpanStatusOK, httpStatusToSpanStatus(http.StatusOK))
	assert.Equal(t, sentry.SpanStatusInvalidArgument, httpStatusToSpanStatus(http.StatusBadRequest))
	assert.Equal(t, sentry.SpanStatusUnauthenticated, httpStatusToSpanStatus(http.StatusUnauthorized))
	assert.Equal(t, sentry.SpanStatusNotFound, httpStatusToSpanStatus(http.StatusNotFound))
	assert.Equal(t, sentry.SpanStatusFailedPrecondition, httpStatusToSpanStatus(http.StatusRequestEntityTooLarge))
	assert.Equal(t, sentry.SpanStatusInternalError, httpStatusToSpanStatus(http.StatusInternalServerError))
	assert.Equal(t, sentry.SpanStatusUnavailable, httpStatusToSpanStatus(http.StatusServiceUnavailable))
	assert.Equal(t, sentry.SpanStatusOK, httpStatusToSpanStatus(http.StatusNoContent))
	assert.Equal(t, sentry.SpanStatusInvalidArgument, httpStatusToSpanStatus(http.StatusConflict))
	assert.Equal(t, sentry.SpanStatusInternalError, httpStatusToSpanStatus(http.StatusBadGateway))
}
