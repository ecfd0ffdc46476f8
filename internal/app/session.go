package app

import "net/http"

type sessionKey string

const (
	SessionKeyCustomerId = sessionKey("customerID")
)

func (s sessionKey) String() string {
	return string(s)
}

func (app *application) contextGetCustomerId(r *http.Request) int {
	customerId, ok := r.Context().Value(SessionKeyCustomerId).(int)
	if !ok {
		panic("missing customer id from context")
	}

	return customerId
}
