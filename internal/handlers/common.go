package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// APIError is the error envelope every endpoint returns on failure.
type APIError struct {
	Detail string `json:"detail"`
	Status int    `json:"status"`
}

func errorResponse(c echo.Context, code int, err error) error {
	return c.JSON(code, APIError{Detail: err.Error(), Status: code})
}

func errorMessage(c echo.Context, code int, detail string) error {
	return c.JSON(code, APIError{Detail: detail, Status: code})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func parseID(c echo.Context, name string) (uint, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v <= 0 {
		return 0, echo.NewHTTPError(400, "invalid id")
	}
	return uint(v), nil
}
