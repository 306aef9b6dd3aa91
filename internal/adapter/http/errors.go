package http

import (
	"errors"
	"net/http"

	apperr "assetfin-backend/pkg/errors"

	"github.com/labstack/echo/v4"
)

// respondError maps usecase errors to a JSON body. Internal causes are never echoed.
func respondError(c echo.Context, err error) error {
	var ae *apperr.AppError
	if !errors.As(err, &ae) {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: apperr.CodeInternal.String()})
	}
	status := apperr.HTTPStatus(ae.Code)
	msg := ae.Message
	if ae.Detail != "" && status < http.StatusInternalServerError {
		msg += ": " + ae.Detail
	}
	return c.JSON(status, ErrorResponse{Error: msg, Code: ae.Code.String()})
}

// bindAndValidate answers 400/422 itself; ok=false means the response is already written.
func bindAndValidate(c echo.Context, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Code:    apperr.CodeValidation.String(),
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

func missingParam(c echo.Context, name string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: "missing " + name,
		Code:  apperr.CodeMissingParameter.String(),
	})
}

func invalidQuery(c echo.Context, name, msg string) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Code:    apperr.CodeValidation.String(),
		Details: []FieldError{{Field: name, Message: msg}},
	})
}
