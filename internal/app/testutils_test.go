package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/vberezan/sport-booking-api/internal/validator"
	"go.opentelemetry.io/otel"
)

func newTestApplication(opts ...func(*application)) *application {
	app := &application{
		validator: validator.NewValidator(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:   noopMetrics(),
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// noopMetrics builds the application counters against the default global
// meter provider, which discards everything unless a real one is installed.
func noopMetrics() metrics {
	meter := otel.Meter("test")

	bookingsCreated, _ := meter.Int64Counter("bookings.created")
	bookingsRejected, _ := meter.Int64Counter("bookings.rejected")
	paymentsSettled, _ := meter.Int64Counter("payments.settled")
	notificationsSent, _ := meter.Int64Counter("notifications.created")

	return metrics{
		bookingsCreated:   bookingsCreated,
		bookingsRejected:  bookingsRejected,
		paymentsSettled:   paymentsSettled,
		notificationsSent: notificationsSent,
	}
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	var reader io.Reader

	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

// asCustomer stamps the authenticated customer id onto the request context,
// the same way the authentication middleware does.
func asCustomer(r *http.Request, customerId int) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), SessionKeyCustomerId, customerId))
}

// withURLParam injects a chi route parameter so handlers can be called
// without going through the router.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)

	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, wantErrMessage string) {
	if wantStatus >= 200 && wantStatus < 300 {
		return
	}

	var errorResp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}

	if wantErrMessage == "" {
		return
	}

	if wantStatus == http.StatusUnprocessableEntity && len(errorResp.Errors) > 0 {
		for _, issue := range errorResp.Errors {
			if issue == wantErrMessage {
				return
			}
		}
		t.Errorf("Expected validation error message '%s' not found in response", wantErrMessage)
		return
	}

	if errorResp.Message != wantErrMessage {
		t.Errorf("Error message = %v, want %v", errorResp.Message, wantErrMessage)
	}
}

func ptr[T any](v T) *T {
	return &v
}
