package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/formavista/sabana/core"
	"github.com/formavista/sabana/core/sabana"
)

// errStatusCodes maps every rejected precondition of the assignment engine to
// a distinct, client-actionable status. Anything else is an opaque 500.
var errStatusCodes = map[error]int{
	sabana.ErrInvalidReference:    http.StatusBadRequest,
	sabana.ErrDuplicateAssignment: http.StatusBadRequest,
	sabana.ErrScopeMismatch:       http.StatusBadRequest,
	sabana.ErrInstructorInactive:  http.StatusBadRequest,
	sabana.ErrNotAssigned:         http.StatusNotFound,
	sabana.ErrNotFound:            http.StatusNotFound,
	sabana.ErrCohortNotFound:      http.StatusNotFound,
	sabana.ErrQuarterNotInCohort:  http.StatusNotFound,
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Error()
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			if c, ok := errStatusCodes[origErr]; ok {
				code = c
				message = origErr.Error()
				break
			}

			// any other error is a server error; do not leak query detail
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg
			logger.Error(msg, errors.Wrap(err, msg))

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead {
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
