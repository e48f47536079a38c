package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/siadin-id/siadin/pkg/composables"
	"github.com/siadin-id/siadin/pkg/configuration"
	"github.com/siadin-id/siadin/pkg/identity"
	"github.com/siadin-id/siadin/pkg/serrors"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}

// respondServiceError translates service errors to HTTP responses. Field
// validation errors carry a per-field message map; coded errors keep their
// code and message; anything else is logged upstream and collapses to a
// generic 500.
func respondServiceError(w http.ResponseWriter, err error) {
	var fields serrors.ValidationErrors
	if errors.As(err, &fields) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"code":    "VALIDATION_ERROR",
			"message": fields.Error(),
			"fields":  fields.Messages(),
		})
		return
	}
	var base *serrors.BaseError
	if !errors.As(err, &base) {
		writeJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
		return
	}
	writeJSONError(w, statusForKind(base.Kind), base.Code, base.Message)
}

func statusForKind(kind serrors.Kind) int {
	switch kind {
	case serrors.KindValidation:
		return http.StatusBadRequest
	case serrors.KindNotFound:
		return http.StatusNotFound
	case serrors.KindConflict:
		return http.StatusConflict
	case serrors.KindPermission:
		return http.StatusForbidden
	case serrors.KindDependency:
		return http.StatusFailedDependency
	default:
		return http.StatusInternalServerError
	}
}

// requirePrincipal fetches the authenticated principal or answers 401.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (identity.Principal, bool) {
	principal, err := composables.UsePrincipal(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
		return identity.Principal{}, false
	}
	return principal, true
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_BODY", "unable to parse request body")
		return false
	}
	return true
}

// pageParams reads limit/offset with the configured defaults and cap.
func pageParams(r *http.Request) (limit, offset int) {
	conf := configuration.Use()
	limit = conf.PageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > conf.MaxPageSize {
		limit = conf.MaxPageSize
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
