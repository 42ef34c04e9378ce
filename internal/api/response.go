package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Response is the JSON envelope of every API reply.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func dataResponse(c echo.Context, status int, data any) error {
	return c.JSON(status, Response{
		Status:  status,
		Message: http.StatusText(status),
		Data:    data,
	})
}

func success(c echo.Context, data any) error {
	return dataResponse(c, http.StatusOK, data)
}

func badRequest(c echo.Context, msg string) error {
	return dataResponse(c, http.StatusBadRequest, msg)
}

func notFound(c echo.Context, msg string) error {
	return dataResponse(c, http.StatusNotFound, msg)
}

func internalError(c echo.Context) error {
	return dataResponse(c, http.StatusInternalServerError, "Something went wrong")
}
