package middleware

import (
	"net/http"
	"strings"

	"emall-backend/internal/model"
	"emall-backend/internal/repository"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ActivityLog records successful state-changing requests under the given
// path prefixes. Write failures are logged and never fail the request.
func ActivityLog(repo repository.ActivityLogRepository, log zerolog.Logger, prefixes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			req := c.Request()
			p := PrincipalFrom(c)
			if err != nil || req.Method == http.MethodGet || !p.Authenticated() || !hasPrefix(req.URL.Path, prefixes) {
				return err
			}

			entry := &model.ActivityLog{
				UserID:     p.UserID,
				Action:     req.Method + " " + c.Path(),
				EntityType: entityType(c.Path()),
				EntityID:   firstParam(c),
				Details:    req.URL.Path,
				IPAddress:  c.RealIP(),
				UserAgent:  req.UserAgent(),
			}
			if logErr := repo.Create(req.Context(), entry); logErr != nil {
				log.Warn().Err(logErr).Str("action", entry.Action).Msg("activity log not stored")
			}

			return nil
		}
	}
}

func hasPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// entityType is the first route segment after /api and, for admin
// routes, after /admin: /api/admin/shops/:id -> shops.
func entityType(route string) string {
	segments := strings.Split(strings.Trim(route, "/"), "/")
	for _, s := range segments {
		if s == "api" || s == "admin" || s == "" || strings.HasPrefix(s, ":") {
			continue
		}
		return s
	}
	return ""
}

func firstParam(c echo.Context) string {
	values := c.ParamValues()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
