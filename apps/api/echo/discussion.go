package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/labtrack/backend/core/discussion"
)

type discussionApi struct {
	svc discussion.Service
}

func registerDiscussionAPI(e *echo.Echo, jwt echo.MiddlewareFunc, svc discussion.Service) {
	api := discussionApi{svc: svc}

	// course boards: reads are public
	e.POST("/discussions", api.createOnCourse, jwt)
	e.GET("/discussions/:id", api.queryCourse)
	e.PUT("/discussions/:id", api.update(discussion.BoardCourse, "Discussion"), jwt)
	e.DELETE("/discussions/:id", api.destroy(discussion.BoardCourse, "Discussion"), jwt)

	// item boards: enrolled users only
	for _, r := range itemRoutes {
		board := discussion.BoardOf(r.kind)
		label := r.label + " discussion"
		e.GET("/"+r.plural+"/:id/discussions", api.queryItem(r), jwt)
		e.POST("/"+r.plural+"/:id/discussions", api.createOnItem(r), jwt)
		e.PUT("/"+string(board)+"-discussions/:id", api.update(board, label), jwt)
		e.DELETE("/"+string(board)+"-discussions/:id", api.destroy(board, label), jwt)
	}
}

// Handlers

func (api *discussionApi) createOnCourse(ctx echo.Context) error {
	userID, err := getContextUserID(ctx)
	if err != nil {
		return err
	}

	var data discussion.NewCourseDiscussion
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourseDiscussion")
	}
	if _, err = api.svc.CreateOnCourse(ctx.Request().Context(), userID, data); err != nil {
		return errors.Wrap(err, "creating discussion")
	}
	return ctx.JSON(http.StatusCreated, MessageResponse{Message: "Discussion created"})
}

func (api *discussionApi) queryCourse(ctx echo.Context) error {
	courseID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	discussions, err := api.svc.QueryCourse(ctx.Request().Context(), courseID)
	if err != nil {
		return errors.Wrap(err, "querying discussions")
	}
	return ctx.JSON(http.StatusOK, discussions)
}

func (api *discussionApi) queryItem(r itemRoute) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		userID, err := getContextUserID(ctx)
		if err != nil {
			return err
		}
		itemID, err := paramID(ctx, "id")
		if err != nil {
			return err
		}

		discussions, err := api.svc.QueryItem(ctx.Request().Context(), userID, r.kind, itemID)
		if err != nil {
			return errors.Wrapf(err, "querying %s discussions", r.kind)
		}
		return ctx.JSON(http.StatusOK, discussions)
	}
}

func (api *discussionApi) createOnItem(r itemRoute) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		userID, err := getContextUserID(ctx)
		if err != nil {
			return err
		}
		itemID, err := paramID(ctx, "id")
		if err != nil {
			return err
		}

		var data discussion.Content
		if err = ctx.Bind(&data); err != nil {
			return errors.Wrap(err, "binding to Content")
		}
		if _, err = api.svc.CreateOnItem(ctx.Request().Context(), userID, r.kind, itemID, data); err != nil {
			return errors.Wrapf(err, "creating %s discussion", r.kind)
		}
		return ctx.JSON(http.StatusCreated, MessageResponse{Message: r.label + " discussion created"})
	}
}

func (api *discussionApi) update(board discussion.Board, label string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		userID, err := getContextUserID(ctx)
		if err != nil {
			return err
		}
		id, err := paramID(ctx, "id")
		if err != nil {
			return err
		}

		var data discussion.Content
		if err = ctx.Bind(&data); err != nil {
			return errors.Wrap(err, "binding to Content")
		}
		if _, err = api.svc.Update(ctx.Request().Context(), userID, board, id, data); err != nil {
			return errors.Wrap(err, "updating discussion")
		}
		return ctx.JSON(http.StatusOK, MessageResponse{Message: label + " updated"})
	}
}

func (api *discussionApi) destroy(board discussion.Board, label string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		userID, err := getContextUserID(ctx)
		if err != nil {
			return err
		}
		id, err := paramID(ctx, "id")
		if err != nil {
			return err
		}

		if err = api.svc.Delete(ctx.Request().Context(), userID, board, id); err != nil {
			return errors.Wrap(err, "deleting discussion")
		}
		return ctx.JSON(http.StatusOK, MessageResponse{Message: label + " deleted"})
	}
}
