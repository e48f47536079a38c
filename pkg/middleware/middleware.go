package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/siadin-id/siadin/pkg/composables"
	"github.com/siadin-id/siadin/pkg/configuration"
	"github.com/siadin-id/siadin/pkg/constants"
	"github.com/siadin-id/siadin/pkg/identity"
)

// PrincipalIDHeader carries the authenticated principal's ID, set by the
// authenticating proxy in front of this service.
const PrincipalIDHeader = "X-Principal-ID"

// OperationBudget bounds every request context with a deadline. Repository
// and cache calls all take the request context, so a stuck operation fails
// with context.DeadlineExceeded instead of holding its connection. A zero or
// negative budget disables the bound.
func OperationBudget(budget time.Duration) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if budget <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			ctx, cancel := context.WithTimeout(r.Context(), budget)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Provide puts a static value on every request context under the given key.
func Provide(key constants.ContextKey, value any) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), key, value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Principal resolves the principal ID header against the directory and stores
// the principal on the context. Requests without a valid header stay
// anonymous; individual routes decide whether that is acceptable.
func Principal(directory identity.Directory) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(PrincipalIDHeader)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			id, err := uuid.Parse(raw)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			principal, err := directory.PrincipalByID(r.Context(), id)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := composables.WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestParams collects per-request metadata into a Params value on the
// context. Runs after Principal so Authenticated reflects the resolved state.
func RequestParams() mux.MiddlewareFunc {
	conf := configuration.Use()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, authErr := composables.UsePrincipal(r.Context())
			params := &composables.Params{
				IP:            getRealIP(r, conf),
				UserAgent:     r.UserAgent(),
				RequestID:     getRequestID(r, conf),
				Authenticated: authErr == nil,
				Request:       r,
				Writer:        w,
			}
			ctx := composables.WithParams(r.Context(), params)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getRealIP(r *http.Request, conf *configuration.Configuration) string {
	if ip := r.Header.Get(conf.RealIPHeader); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func getRequestID(r *http.Request, conf *configuration.Configuration) string {
	if id := r.Header.Get(conf.RequestIDHeader); id != "" {
		return id
	}
	return uuid.New().String()
}
