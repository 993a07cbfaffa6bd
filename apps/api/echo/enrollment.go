package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/labtrack/backend/core/enrollment"
)

type enrollmentApi struct {
	svc      enrollment.Service
	validate *validator.Validate
}

func registerEnrollmentAPI(e *echo.Echo, jwt echo.MiddlewareFunc, svc enrollment.Service, validate *validator.Validate) {
	api := enrollmentApi{
		svc:      svc,
		validate: validate,
	}

	e.POST("/enrollments", api.create, jwt)
	e.GET("/enrollments/:id", api.queryByUser)
}

// Handlers

func (api *enrollmentApi) create(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}

	var data enrollment.NewEnrollment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEnrollment")
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}

	if _, err = api.svc.Enroll(ctx.Request().Context(), userID, data); err != nil {
		return errors.Wrap(err, "enrolling")
	}
	return ctx.JSON(http.StatusCreated, MessageResponse{Message: "Enrolled successfully"})
}

func (api *enrollmentApi) queryByUser(ctx echo.Context) error {
	userID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	enrollments, err := api.svc.QueryByUser(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	return ctx.JSON(http.StatusOK, enrollments)
}
