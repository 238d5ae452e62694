package middleware

import (
	"strings"

	"emall-backend/internal/apperr"
	"emall-backend/internal/policy"
	"emall-backend/internal/token"

	"github.com/labstack/echo/v4"
)

const (
	authorizationHeader = "Authorization"
	authorizationBearer = "bearer"
	principalKey        = "principal"
)

// Authenticate reads an optional bearer token. A request without one
// continues as anonymous; a malformed or expired token is rejected.
func Authenticate(tokens token.Maker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(authorizationHeader)
			if header == "" {
				return next(c)
			}

			fields := strings.Fields(header)
			if len(fields) != 2 || strings.ToLower(fields[0]) != authorizationBearer {
				return apperr.Unauthenticated("invalid authorization header format")
			}

			claims, err := tokens.Verify(fields[1])
			if err != nil {
				return apperr.Unauthenticated("invalid or expired token")
			}

			c.Set(principalKey, policy.Principal{UserID: claims.UserID, Role: claims.Role})
			return next(c)
		}
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !PrincipalFrom(c).Authenticated() {
				return apperr.Unauthenticated("authentication required")
			}
			return next(c)
		}
	}
}

func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := PrincipalFrom(c)
			if !p.Authenticated() {
				return apperr.Unauthenticated("authentication required")
			}
			for _, role := range roles {
				if p.Role == role {
					return next(c)
				}
			}
			return apperr.Forbidden("insufficient role")
		}
	}
}

// PrincipalFrom returns the caller, or the zero Principal when anonymous.
func PrincipalFrom(c echo.Context) policy.Principal {
	p, _ := c.Get(principalKey).(policy.Principal)
	return p
}
