package course_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labtrack/backend/core/course"
	"github.com/labtrack/backend/tests"
)

func Test_service_Create(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	c, err := env.CourseSvc.Create(ctx, course.NewCourse{
		Title:   "  Go Fundamentals ",
		Labs:    []course.NewItem{{Title: "Lab 1"}, {Title: "Lab 2"}},
		Quizzes: []course.NewItem{{Title: "Quiz 1"}},
		Exams:   []course.NewItem{{Title: "Final", Description: "2h"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Go Fundamentals", c.Title)

	counts, err := env.CourseSvc.CountItems(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, course.ItemCounts{course.KindLab: 2, course.KindQuiz: 1, course.KindExam: 1}, counts)

	labs, err := env.CourseSvc.QueryItems(ctx, course.KindLab, c.ID)
	require.NoError(t, err)
	require.Len(t, labs, 2)
	assert.Equal(t, "Lab 1", labs[0].Title)
	assert.Equal(t, "Lab 2", labs[1].Title)
}

func Test_service_Create_invalid(t *testing.T) {
	tests := []struct {
		name string
		nc   course.NewCourse
	}{
		{name: "missing title", nc: course.NewCourse{Title: "  "}},
		{name: "item without title", nc: course.NewCourse{
			Title: "Go",
			Labs:  []course.NewItem{{Title: "Lab 1"}},
			Exams: []course.NewItem{{Title: " ", Description: "2h"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewEnv(t)
			ctx := context.Background()

			_, err := env.CourseSvc.Create(ctx, tt.nc)
			assert.Error(t, err)

			courses, err := env.CourseSvc.QueryAll(ctx)
			require.NoError(t, err)
			assert.Empty(t, courses, "no partial course is left behind")
		})
	}
}

func Test_service_CreateItem(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	c, _ := testutil.CreateCourse(t, env.CourseSvc, "Go", nil)

	item, err := env.CourseSvc.CreateItem(ctx, c.ID, course.KindQuiz, course.NewItem{Title: " Quiz 1 "})
	require.NoError(t, err)
	assert.Equal(t, "Quiz 1", item.Title)
	assert.Equal(t, c.ID, item.CourseID)

	_, err = env.CourseSvc.CreateItem(ctx, c.ID+1, course.KindQuiz, course.NewItem{Title: "Quiz 2"})
	assert.ErrorIs(t, err, course.ErrNotFound)
	_, err = env.CourseSvc.CreateItem(ctx, c.ID, "essay", course.NewItem{Title: "Essay"})
	assert.Error(t, err)
}
