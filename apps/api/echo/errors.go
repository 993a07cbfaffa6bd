package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/labtrack/backend/core"
	"github.com/labtrack/backend/core/user"
)

var errUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var (
			code    int
			message interface{}

			httpErr   *echo.HTTPError
			valErrs   validator.ValidationErrors
			appValErr *core.ValidationError
		)

		switch {
		case errors.Is(err, middleware.ErrJWTMissing):
			code = http.StatusUnauthorized
			message = middleware.ErrJWTMissing.Message
		case errors.As(err, &httpErr):
			if herr, ok := httpErr.Internal.(*echo.HTTPError); ok {
				httpErr = herr
			}
			code = httpErr.Code
			message = httpErr.Message
		case errors.As(err, &valErrs):
			fldErrs := make(map[string]string, len(valErrs))
			for _, vErr := range valErrs {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case errors.As(err, &appValErr):
			if appValErr.Fields != nil {
				fldErrs := make(map[string]string, len(appValErr.Fields))
				for _, fErr := range appValErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = appValErr.Error()
			}
			code = http.StatusBadRequest
		case errors.Is(err, user.ErrInvalidCredentials):
			code = http.StatusUnauthorized
			message = errors.Cause(err).Error()
		case errors.Is(err, core.ErrForbidden):
			code = http.StatusForbidden
			message = errors.Cause(err).Error()
		case errors.Is(err, core.ErrNotFound):
			code = http.StatusNotFound
			message = errors.Cause(err).Error()
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			args := []interface{}{errors.Wrap(err, msg)}
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				if id, idErr := claims.UserID(); idErr == nil {
					args = append(args, user.User{ID: id, Name: claims.Name, Email: claims.Email})
				}
			}
			logger.Error(msg, args...)
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
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
