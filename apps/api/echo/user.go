package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/labtrack/backend/core"
	"github.com/labtrack/backend/core/user"
)

type userApi struct {
	conf     *core.Config
	svc      user.Service
	validate *validator.Validate
}

func registerUserAPI(e *echo.Echo, conf *core.Config, svc user.Service, validate *validator.Validate) {
	api := userApi{
		conf:     conf,
		svc:      svc,
		validate: validate,
	}

	e.POST("/signup", api.signup)
	e.POST("/login", api.login)
}

// Handlers

func (api *userApi) signup(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	if _, err := api.svc.Signup(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "signing up")
	}
	return ctx.JSON(http.StatusCreated, MessageResponse{Message: "User created successfully"})
}

func (api *userApi) login(ctx echo.Context) error {
	var data user.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(GetUserClaims(usr, api.conf), api.conf.SecretKey)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{
		AccessToken: token,
		UserID:      usr.ID,
		Name:        usr.Name,
		StudentID:   usr.StudentID,
	})
}

type (
	LoginResponse struct {
		AccessToken string `json:"access_token"`
		UserID      int    `json:"user_id"`
		Name        string `json:"name"`
		StudentID   string `json:"student_id"`
	}

	MessageResponse struct {
		Message string `json:"message"`
	}
)
