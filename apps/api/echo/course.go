package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/labtrack/backend/core/course"
	"github.com/labtrack/backend/core/enrollment"
)

type courseApi struct {
	svc           course.Service
	enrollmentSvc enrollment.Service
}

// itemRoute maps a course.Kind to the path segments and labels of its endpoints.
type itemRoute struct {
	kind   course.Kind
	plural string // labs, quizzes, exams
	label  string // Lab, Quiz, Exam
}

var itemRoutes = []itemRoute{
	{kind: course.KindLab, plural: "labs", label: "Lab"},
	{kind: course.KindQuiz, plural: "quizzes", label: "Quiz"},
	{kind: course.KindExam, plural: "exams", label: "Exam"},
}

func registerCourseAPI(e *echo.Echo, jwt echo.MiddlewareFunc, svc course.Service, enrollmentSvc enrollment.Service) {
	api := courseApi{
		svc:           svc,
		enrollmentSvc: enrollmentSvc,
	}

	e.GET("/courses", api.query)
	e.GET("/courses/:id", api.retrieve)

	for _, r := range itemRoutes {
		e.GET("/courses/:id/"+r.plural, api.queryItems(r.kind), jwt)
		e.POST("/"+r.plural+"/:id/completion", api.setCompletion(r), jwt)
	}
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	courses, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	detail, err := api.enrollmentSvc.CourseDetail(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "retrieving course")
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *courseApi) queryItems(kind course.Kind) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		userID, err := getContextUserID(ctx)
		if err != nil {
			return err
		}
		courseID, err := paramID(ctx, "id")
		if err != nil {
			return err
		}

		items, err := api.enrollmentSvc.QueryItemsWithCompletion(ctx.Request().Context(), kind, userID, courseID)
		if err != nil {
			return errors.Wrapf(err, "querying %s items", kind)
		}
		return ctx.JSON(http.StatusOK, items)
	}
}

func (api *courseApi) setCompletion(r itemRoute) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		userID, err := getContextUserID(ctx)
		if err != nil {
			return err
		}
		itemID, err := paramID(ctx, "id")
		if err != nil {
			return err
		}

		var data enrollment.CompletionUpdate
		if err = ctx.Bind(&data); err != nil {
			return errors.Wrap(err, "binding to CompletionUpdate")
		}
		if _, err = api.enrollmentSvc.SetCompletion(ctx.Request().Context(), r.kind, userID, itemID, data.Value()); err != nil {
			return errors.Wrapf(err, "setting %s completion", r.kind)
		}
		return ctx.JSON(http.StatusOK, MessageResponse{Message: r.label + " completion updated"})
	}
}
