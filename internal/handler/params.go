package handler

import (
	"strconv"

	"emall-backend/internal/apperr"

	"github.com/labstack/echo/v4"
)

func uintParam(c echo.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.New(apperr.KindValidation, apperr.CodeInvalidFormat, "invalid "+name).
			WithDetail(name, raw)
	}
	return uint(id), nil
}

// uintQuery returns 0 when the query parameter is absent.
func uintQuery(c echo.Context, name string) (uint, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperr.New(apperr.KindValidation, apperr.CodeInvalidFormat, "invalid "+name).
			WithDetail(name, raw)
	}
	return uint(id), nil
}

func bind(c echo.Context, dest any) error {
	if err := c.Bind(dest); err != nil {
		return apperr.Validation("malformed request").WithDetail("body", err.Error())
	}
	return nil
}

func message(text string) map[string]string {
	return map[string]string{"message": text}
}
