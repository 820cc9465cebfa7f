package util

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Validatable is implemented by request and response payloads.
type Validatable interface {
	Validate() error
}

// BindAndValidateBody binds the JSON body of c into v and validates it.
// Binding and validation failures are returned as 400.
func BindAndValidateBody(c echo.Context, v Validatable) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		LogFromEchoContext(c).Debug().Err(err).Msg("Failed to bind request body")
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body").SetInternal(err)
	}

	if err := v.Validate(); err != nil {
		LogFromEchoContext(c).Debug().Err(err).Msg("Request body failed validation")
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}

	return nil
}

// ValidateAndReturn validates v before writing it as JSON with the given status code.
// An invalid response is a server bug and results in 500.
func ValidateAndReturn(c echo.Context, code int, v Validatable) error {
	if err := v.Validate(); err != nil {
		LogFromEchoContext(c).Error().Err(err).Msg("Response failed validation")
		return errors.Wrap(err, "invalid response")
	}

	return c.JSON(code, v)
}
