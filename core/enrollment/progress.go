package enrollment

import (
	"context"

	"github.com/pkg/errors"

	"github.com/labtrack/backend/core/course"
)

// ComputeProgress returns the integer percentage of done over total, 0 if total is 0.
func ComputeProgress(done, total int) int {
	if total <= 0 {
		return 0
	}
	return done * 100 / total
}

// Recalculate re-derives the progress of the (user, course) enrollment from the
// completion ledgers. It does nothing if the user is not enrolled in the course.
func (svc *service) Recalculate(ctx context.Context, userID, courseID int) error {
	e, err := svc.repo.GetEnrollment(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return errors.Wrap(err, "finding enrollment")
	}

	total, err := svc.courseSvc.CountItems(ctx, courseID)
	if err != nil {
		return err
	}
	done, err := svc.repo.CountCompleted(ctx, userID, courseID)
	if err != nil {
		return errors.Wrap(err, "counting completed items")
	}

	progress := ComputeProgress(done.Total(), total.Total())
	if err = svc.repo.UpdateProgress(ctx, e.ID, progress); err != nil {
		return errors.Wrap(err, "updating progress")
	}
	return nil
}

// SetCompletion records the completion flag of an item for a user, then
// recalculates the progress of the item's course.
func (svc *service) SetCompletion(ctx context.Context, kind course.Kind, userID, itemID int, isComplete bool) (Completion, error) {
	item, err := svc.courseSvc.GetItem(ctx, kind, itemID)
	if err != nil {
		return Completion{}, err
	}

	c, err := svc.repo.UpsertCompletion(ctx, Completion{
		Kind:       kind,
		UserID:     userID,
		ItemID:     item.ID,
		IsComplete: isComplete,
	})
	if err != nil {
		return Completion{}, errors.Wrapf(err, "saving %s completion", kind)
	}

	// not in the upsert transaction: concurrent completions of one course may race, the last one wins
	if err = svc.Recalculate(ctx, userID, item.CourseID); err != nil {
		return Completion{}, err
	}
	return c, nil
}
