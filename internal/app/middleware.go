package app

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")

				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// requireAuthentication resolves the customer identity. Login itself is
// handled by the fronting identity service, which either establishes the
// session or injects X-Customer-ID on proxied requests.
func (app *application) requireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		customerId := app.sessionManager.GetInt(r.Context(), SessionKeyCustomerId.String())

		if customerId == 0 {
			if header := r.Header.Get("X-Customer-ID"); header != "" {
				if id, err := strconv.Atoi(header); err == nil && id > 0 {
					customerId = id
					app.sessionManager.Put(r.Context(), SessionKeyCustomerId.String(), id)
				}
			}
		}

		if customerId == 0 {
			app.unauthorizedAccessResponse(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), SessionKeyCustomerId, customerId)
		r = r.WithContext(ctx)

		next.ServeHTTP(w, r)
	})
}

func (app *application) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.config.adminToken == "" {
			app.forbiddenResponse(w, r)
			return
		}

		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

		if subtle.ConstantTimeCompare([]byte(token), []byte(app.config.adminToken)) != 1 {
			app.forbiddenResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}
