package enrollment

import (
	"context"

	"github.com/pkg/errors"

	"github.com/labtrack/backend/core/course"
)

// CanAccess reports whether the user is enrolled in the course.
func (svc *service) CanAccess(ctx context.Context, userID, courseID int) (bool, error) {
	if _, err := svc.repo.GetEnrollment(ctx, userID, courseID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, errors.Wrap(err, "finding enrollment")
	}
	return true, nil
}

// ResolveCourse returns the course owning the item. ok is false if the item does not exist.
func (svc *service) ResolveCourse(ctx context.Context, kind course.Kind, itemID int) (int, bool, error) {
	item, err := svc.courseSvc.GetItem(ctx, kind, itemID)
	if err != nil {
		if errors.Is(err, course.ErrItemNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return item.CourseID, true, nil
}

// CanAccessItem reports whether the user is enrolled in the course owning the item.
// It is false for an unknown item.
func (svc *service) CanAccessItem(ctx context.Context, userID int, kind course.Kind, itemID int) (bool, error) {
	courseID, ok, err := svc.ResolveCourse(ctx, kind, itemID)
	if err != nil || !ok {
		return false, err
	}
	return svc.CanAccess(ctx, userID, courseID)
}
