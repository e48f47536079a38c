package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/siadin-id/siadin/pkg/composables"
	"github.com/siadin-id/siadin/pkg/identity"
	"github.com/siadin-id/siadin/pkg/rbac"
)

func okHandler(t *testing.T, called *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestPrincipal_ResolvesHeader(t *testing.T) {
	p := identity.Principal{ID: uuid.New(), Name: "Budi Santoso", Roles: []rbac.Role{rbac.RoleAgencyOwner}}
	directory := identity.NewStaticDirectory(p)

	var got identity.Principal
	handler := Principal(directory)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = composables.UsePrincipal(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(PrincipalIDHeader, p.ID.String())
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, p.ID, got.ID)
	require.Equal(t, "Budi Santoso", got.Name)
}

func TestPrincipal_UnknownStaysAnonymous(t *testing.T) {
	directory := identity.NewStaticDirectory()

	var err error
	handler := Principal(directory)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err = composables.UsePrincipal(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(PrincipalIDHeader, uuid.New().String())
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.ErrorIs(t, err, composables.ErrNoPrincipal)
}

func TestRequestToken_AllowsMatchingToken(t *testing.T) {
	const secret = "test-secret"
	p := identity.Principal{ID: uuid.New(), Name: "Root Admin"}

	called := false
	handler := RequestToken(secret)(okHandler(t, &called))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(composables.WithPrincipal(req.Context(), p))
	req.Header.Set(RequestTokenHeader, SignRequestToken(secret, p.ID))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.True(t, called)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequestToken_RejectsBadToken(t *testing.T) {
	const secret = "test-secret"
	p := identity.Principal{ID: uuid.New(), Name: "Root Admin"}

	called := false
	handler := RequestToken(secret)(okHandler(t, &called))

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	req = req.WithContext(composables.WithPrincipal(req.Context(), p))
	req.Header.Set(RequestTokenHeader, SignRequestToken(secret, uuid.New()))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.False(t, called)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequestToken_SkipsReads(t *testing.T) {
	called := false
	handler := RequestToken("test-secret")(okHandler(t, &called))

	// No principal and no token, but GET is not guarded.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.True(t, called)
}

func TestRequestToken_RequiresPrincipal(t *testing.T) {
	called := false
	handler := RequestToken("test-secret")(okHandler(t, &called))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	require.False(t, called)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestToken_DisabledWithoutSecret(t *testing.T) {
	called := false
	handler := RequestToken("")(okHandler(t, &called))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	require.True(t, called)
}

func TestOperationBudget_SetsDeadline(t *testing.T) {
	const budget = 15 * time.Second

	var deadline time.Time
	var ok bool
	handler := OperationBudget(budget)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, ok = r.Context().Deadline()
	}))

	start := time.Now()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.True(t, ok)
	require.WithinDuration(t, start.Add(budget), deadline, time.Second)
}

func TestOperationBudget_DisabledWithoutBudget(t *testing.T) {
	var ok bool
	handler := OperationBudget(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = r.Context().Deadline()
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.False(t, ok)
}
