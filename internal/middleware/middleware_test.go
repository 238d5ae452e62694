package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"emall-backend/internal/apperr"
	"emall-backend/internal/policy"
	"emall-backend/internal/token"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, header string, mws ...echo.MiddlewareFunc) (policy.Principal, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var seen policy.Principal
	h := func(c echo.Context) error {
		seen = PrincipalFrom(c)
		return nil
	}
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return seen, h(c)
}

func TestAuthenticate(t *testing.T) {
	maker := token.NewJWTMaker("middleware-secret", time.Minute)
	signed, err := maker.Create(7, policy.RoleShopOwner)
	require.NoError(t, err)

	p, err := run(t, "Bearer "+signed, Authenticate(maker))
	require.NoError(t, err)
	assert.Equal(t, policy.Principal{UserID: 7, Role: policy.RoleShopOwner}, p)

	p, err = run(t, "", Authenticate(maker))
	require.NoError(t, err)
	assert.False(t, p.Authenticated())

	_, err = run(t, "Token "+signed, Authenticate(maker))
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))

	_, err = run(t, "Bearer not-a-jwt", Authenticate(maker))
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
}

func TestRequireRole(t *testing.T) {
	maker := token.NewJWTMaker("middleware-secret", time.Minute)
	customer, err := maker.Create(1, policy.RoleCustomer)
	require.NoError(t, err)
	admin, err := maker.Create(2, policy.RoleAdmin)
	require.NoError(t, err)

	_, err = run(t, "", Authenticate(maker), RequireRole(policy.RoleAdmin))
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))

	_, err = run(t, "Bearer "+customer, Authenticate(maker), RequireRole(policy.RoleAdmin))
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	_, err = run(t, "Bearer "+admin, Authenticate(maker), RequireRole(policy.RoleShopOwner, policy.RoleAdmin))
	assert.NoError(t, err)

	_, err = run(t, "", Authenticate(maker), RequireAuth())
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
}

func TestEntityType(t *testing.T) {
	cases := map[string]string{
		"/api/admin/shops/:id/status":              "shops",
		"/api/admin/subscription-prices":           "subscription-prices",
		"/api/subscriptions/shops/:shopId/upgrade": "subscriptions",
		"/api": "",
	}
	for route, want := range cases {
		assert.Equal(t, want, entityType(route), route)
	}
}
