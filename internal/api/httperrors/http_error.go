package httperrors

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/go-trader/internal/txerr"
	"github/chapool/go-trader/internal/util"
)

// Public error types.
const (
	TypeGeneric             = "generic"
	TypeValidation          = "validation"
	TypeSigning             = "signing"
	TypeNetwork             = "network"
	TypeTimeout             = "timeout"
	TypeProtocolRevert      = "protocol_revert"
	TypeConfirmationTimeout = "confirmation_timeout"
)

// HTTPError is the JSON body of every error response.
type HTTPError struct {
	Code  int    `json:"status"`
	Type  string `json:"type"`
	Title string `json:"title"`

	Internal error `json:"-"`
}

func NewHTTPError(code int, errorType string, title string) *HTTPError {
	return &HTTPError{Code: code, Type: errorType, Title: title}
}

func (e *HTTPError) Error() string {
	if e.Internal == nil {
		return fmt.Sprintf("HTTPError %d (%s): %s", e.Code, e.Type, e.Title)
	}

	return fmt.Sprintf("HTTPError %d (%s): %s - %v", e.Code, e.Type, e.Title, e.Internal)
}

func (e *HTTPError) Unwrap() error {
	return e.Internal
}

// FromError maps classified engine errors to HTTP errors. Unclassified errors become 500.
func FromError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return &HTTPError{Code: echoErr.Code, Type: TypeGeneric, Title: fmt.Sprint(echoErr.Message), Internal: err}
	}

	res := &HTTPError{Internal: err, Title: err.Error()}

	switch txerr.KindOf(err) {
	case txerr.KindValidation:
		res.Code, res.Type = http.StatusBadRequest, TypeValidation
	case txerr.KindSigning:
		res.Code, res.Type = http.StatusForbidden, TypeSigning
	case txerr.KindNetwork:
		res.Code, res.Type = http.StatusBadGateway, TypeNetwork
	case txerr.KindTimeout:
		res.Code, res.Type = http.StatusGatewayTimeout, TypeTimeout
	case txerr.KindProtocolRevert:
		res.Code, res.Type = http.StatusUnprocessableEntity, TypeProtocolRevert
	case txerr.KindConfirmationTimeout:
		res.Code, res.Type = http.StatusAccepted, TypeConfirmationTimeout
	default:
		res.Code, res.Type = http.StatusInternalServerError, TypeGeneric
		res.Title = http.StatusText(http.StatusInternalServerError)
	}

	return res
}

// HTTPErrorHandler writes errors returned by handlers as HTTPError JSON.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	httpErr := FromError(err)
	log := util.LogFromEchoContext(c)

	if httpErr.Code >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", httpErr.Code).Msg("Request failed")
	} else {
		log.Debug().Err(err).Int("status", httpErr.Code).Msg("Request failed")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(httpErr.Code)
	} else {
		err = c.JSON(httpErr.Code, httpErr)
	}

	if err != nil {
		log.Warn().Err(err).Msg("Failed to write error response")
	}
}
