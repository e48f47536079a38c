package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/siadin-id/siadin/pkg/composables"
)

// RequestTokenHeader carries the request-integrity token on mutating calls.
const RequestTokenHeader = "X-Request-Token"

// SignRequestToken computes the integrity token for a principal: hex-encoded
// HMAC-SHA256 of the principal ID under the shared secret.
func SignRequestToken(secret string, principalID uuid.UUID) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(principalID.String()))
	return hex.EncodeToString(mac.Sum(nil))
}

// RequestToken rejects mutating requests whose token does not match the
// authenticated principal. An empty secret disables the check (development).
func RequestToken(secret string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" || !isMutating(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			principal, err := composables.UsePrincipal(r.Context())
			if err != nil {
				rejectToken(w, "REQUEST_UNAUTHENTICATED", "mutating calls require an authenticated principal", http.StatusUnauthorized)
				return
			}
			want := SignRequestToken(secret, principal.ID)
			got := r.Header.Get(RequestTokenHeader)
			if got == "" || !hmac.Equal([]byte(want), []byte(got)) {
				rejectToken(w, "REQUEST_TOKEN_INVALID", "missing or invalid request token", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func rejectToken(w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    code,
		"message": message,
	})
}
