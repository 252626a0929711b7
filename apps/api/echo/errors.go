package echoapi

import (
	"fmt"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hocphi/core"
	"github.com/trezcool/hocphi/core/student"
)

const (
	msgRetrieveFailed = "Error retrieving data"
	msgAddFailed      = "Error adding student"
	msgUpdateFailed   = "Error updating student"
	msgDeleteFailed   = "Error deleting student"
)

// apiResponse is the body of every JSON endpoint.
type apiResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Err     string            `json:"err,omitempty"`
	Fields  []core.FieldError `json:"fields,omitempty"`
}

// routeError attaches the user-facing message of a route to err.
// View routes answer in plain text, the others in JSON.
type routeError struct {
	message string
	view    bool
	err     error
}

func apiError(message string, err error) error {
	return &routeError{message: message, err: err}
}

func viewError(message string, err error) error {
	return &routeError{message: message, view: true, err: err}
}

func (e *routeError) Error() string { return e.message + ": " + e.err.Error() }
func (e *routeError) Cause() error  { return e.err }
func (e *routeError) Unwrap() error { return e.err }

func notFoundText(err error) (string, bool) {
	switch err {
	case student.ErrNotFound:
		return "Student not found", true
	case student.ErrClassNotFound:
		return "Class not found", true
	}
	return "", false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		resp := apiResponse{Message: http.StatusText(http.StatusInternalServerError)}
		view := false
		detail := err

		var rerr *routeError
		if errors.As(err, &rerr) {
			resp.Message = rerr.message
			view = rerr.view
			detail = rerr.err
		}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			resp.Err = fmt.Sprint(origErr.Message)
			if rerr == nil {
				resp.Message = http.StatusText(code)
			}
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			resp.Fields = core.ValidationFieldErrors(origErr, translator)
			if len(resp.Fields) > 0 {
				resp.Err = resp.Fields[0].Error
			}
		case *core.ValidationError:
			code = http.StatusBadRequest
			resp.Fields = origErr.Fields
			resp.Err = origErr.Error()
		default:
			if text, ok := notFoundText(origErr); ok {
				code = http.StatusNotFound
				resp.Err = detail.Error()
				if view {
					resp.Message = text
				}
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			resp.Err = detail.Error()
			logger.Error(resp.Message, errors.Wrap(err, resp.Message), map[string]interface{}{
				"method":     ctx.Request().Method,
				"path":       ctx.Request().URL.Path,
				"request_id": ctx.Response().Header().Get(echo.HeaderXRequestID),
			})

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			resp.Err = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			switch {
			case ctx.Request().Method == http.MethodHead: // Issue #608
				err = ctx.NoContent(code)
			case view:
				err = ctx.String(code, resp.Message)
			default:
				err = ctx.JSON(code, resp)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
