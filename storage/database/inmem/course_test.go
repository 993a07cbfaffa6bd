package inmemdb_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labtrack/backend/core/course"
	"github.com/labtrack/backend/core/discussion"
	"github.com/labtrack/backend/core/enrollment"
	"github.com/labtrack/backend/tests"
)

func Test_courseRepository_DeleteCourse(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, env.UserRepo, "Ada", "ada@test.io", "S001", "pwd", false)
	counts := course.ItemCounts{course.KindLab: 2, course.KindQuiz: 1, course.KindExam: 1}
	doomed, doomedItems := testutil.CreateCourse(t, env.CourseSvc, "Doomed", counts)
	kept, keptItems := testutil.CreateCourse(t, env.CourseSvc, "Kept", counts)

	for _, c := range []course.Course{doomed, kept} {
		testutil.Enroll(t, env.EnrollmentRepo, usr.ID, c.ID)
		testutil.CreateDiscussion(t, env.DiscussionRepo, discussion.BoardCourse, c.ID, usr.ID, "a long enough course post")
	}
	for _, items := range []map[course.Kind][]course.Item{doomedItems, keptItems} {
		for kind, kindItems := range items {
			for _, item := range kindItems {
				_, err := env.EnrollmentSvc.SetCompletion(ctx, kind, usr.ID, item.ID, true)
				require.NoError(t, err)
				testutil.CreateDiscussion(t, env.DiscussionRepo, discussion.BoardOf(kind), item.ID, usr.ID, "item post")
			}
		}
	}

	require.NoError(t, env.CourseRepo.DeleteCourse(ctx, doomed.ID))

	_, err := env.CourseRepo.GetCourse(ctx, doomed.ID)
	assert.True(t, errors.Is(err, course.ErrNotFound))
	_, err = env.EnrollmentRepo.GetEnrollment(ctx, usr.ID, doomed.ID)
	assert.True(t, errors.Is(err, enrollment.ErrNotFound))

	discussions, err := env.DiscussionRepo.QueryDiscussions(ctx, discussion.BoardCourse, doomed.ID)
	require.NoError(t, err)
	assert.Empty(t, discussions)
	for kind, items := range doomedItems {
		for _, item := range items {
			_, err = env.CourseRepo.GetItem(ctx, kind, item.ID)
			assert.True(t, errors.Is(err, course.ErrItemNotFound))
			discussions, err = env.DiscussionRepo.QueryDiscussions(ctx, discussion.BoardOf(kind), item.ID)
			require.NoError(t, err)
			assert.Empty(t, discussions)
		}
		completions, err := env.EnrollmentRepo.QueryCompletions(ctx, kind, usr.ID, doomed.ID)
		require.NoError(t, err)
		assert.Empty(t, completions)
	}

	// the other course is untouched
	e, err := env.EnrollmentRepo.GetEnrollment(ctx, usr.ID, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, e.Progress)
	gotCounts, err := env.CourseRepo.CountItems(ctx, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, counts[course.KindLab], gotCounts[course.KindLab])
	for kind, items := range keptItems {
		completions, err := env.EnrollmentRepo.QueryCompletions(ctx, kind, usr.ID, kept.ID)
		require.NoError(t, err)
		assert.Len(t, completions, len(items))
	}
}
