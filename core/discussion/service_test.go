package discussion_test

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labtrack/backend/core"
	"github.com/labtrack/backend/core/course"
	"github.com/labtrack/backend/core/discussion"
	"github.com/labtrack/backend/tests"
)

func isValidationErr(err error) bool {
	var valErr *core.ValidationError
	return errors.As(err, &valErr)
}

func Test_service_CreateOnCourse(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, env.UserRepo, "Ada", "ada@test.io", "S001", "pwd", false)
	c, _ := testutil.CreateCourse(t, env.CourseSvc, "Go", nil)

	t.Run("too short", func(t *testing.T) {
		_, err := env.DiscussionSvc.CreateOnCourse(ctx, usr.ID, discussion.NewCourseDiscussion{CourseID: c.ID, Content: strings.Repeat("x", 14)})
		assert.True(t, isValidationErr(err), "got %v", err)
	})
	t.Run("unknown course", func(t *testing.T) {
		_, err := env.DiscussionSvc.CreateOnCourse(ctx, usr.ID, discussion.NewCourseDiscussion{CourseID: 999, Content: strings.Repeat("x", 15)})
		assert.True(t, errors.Is(err, course.ErrNotFound), "got %v", err)
	})
	t.Run("not enrolled is fine", func(t *testing.T) {
		d, err := env.DiscussionSvc.CreateOnCourse(ctx, usr.ID, discussion.NewCourseDiscussion{CourseID: c.ID, Content: strings.Repeat("x", 15)})
		require.NoError(t, err)
		assert.Equal(t, usr.Email, d.UserEmail)
		assert.Equal(t, c.ID, d.ParentID)
	})
}

func Test_service_itemBoards(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	author := testutil.CreateUser(t, env.UserRepo, "Ada", "ada@test.io", "S001", "pwd", false)
	outsider := testutil.CreateUser(t, env.UserRepo, "Bob", "bob@test.io", "S002", "pwd", false)
	c, items := testutil.CreateCourse(t, env.CourseSvc, "Go", course.ItemCounts{course.KindLab: 1, course.KindQuiz: 1, course.KindExam: 1})
	testutil.Enroll(t, env.EnrollmentRepo, author.ID, c.ID)

	for _, kind := range course.Kinds {
		itemID := items[kind][0].ID

		t.Run(string(kind)+": not enrolled", func(t *testing.T) {
			_, err := env.DiscussionSvc.CreateOnItem(ctx, outsider.ID, kind, itemID, discussion.Content{Content: "hello"})
			assert.True(t, errors.Is(err, core.ErrForbidden), "got %v", err)
			_, err = env.DiscussionSvc.QueryItem(ctx, outsider.ID, kind, itemID)
			assert.True(t, errors.Is(err, core.ErrForbidden), "got %v", err)
		})
		t.Run(string(kind)+": unknown item", func(t *testing.T) {
			_, err := env.DiscussionSvc.CreateOnItem(ctx, author.ID, kind, 999, discussion.Content{Content: "hello"})
			assert.True(t, errors.Is(err, core.ErrForbidden), "got %v", err)
		})
		t.Run(string(kind)+": too short", func(t *testing.T) {
			_, err := env.DiscussionSvc.CreateOnItem(ctx, author.ID, kind, itemID, discussion.Content{Content: "hell"})
			assert.True(t, isValidationErr(err), "got %v", err)
		})
		t.Run(string(kind)+": newest first", func(t *testing.T) {
			first, err := env.DiscussionSvc.CreateOnItem(ctx, author.ID, kind, itemID, discussion.Content{Content: "hello"})
			require.NoError(t, err)
			second, err := env.DiscussionSvc.CreateOnItem(ctx, author.ID, kind, itemID, discussion.Content{Content: "world"})
			require.NoError(t, err)

			got, err := env.DiscussionSvc.QueryItem(ctx, author.ID, kind, itemID)
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, second.ID, got[0].ID)
			assert.Equal(t, first.ID, got[1].ID)
			assert.Equal(t, author.Email, got[0].UserEmail)
		})
	}
}

func Test_service_UpdateDelete(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	author := testutil.CreateUser(t, env.UserRepo, "Ada", "ada@test.io", "S001", "pwd", false)
	other := testutil.CreateUser(t, env.UserRepo, "Bob", "bob@test.io", "S002", "pwd", false)
	c, items := testutil.CreateCourse(t, env.CourseSvc, "Go", course.ItemCounts{course.KindLab: 1})
	courseDisc := testutil.CreateDiscussion(t, env.DiscussionRepo, discussion.BoardCourse, c.ID, author.ID, "a long enough course post")
	labDisc := testutil.CreateDiscussion(t, env.DiscussionRepo, discussion.BoardLab, items[course.KindLab][0].ID, author.ID, "lab post")

	tests := []struct {
		name    string
		userID  int
		board   discussion.Board
		id      int
		content string
		wantErr error
		invalid bool
	}{
		{name: "non author, valid content", userID: other.ID, board: discussion.BoardCourse, id: courseDisc.ID, content: strings.Repeat("x", 20), wantErr: core.ErrForbidden},
		{name: "non author, invalid content", userID: other.ID, board: discussion.BoardLab, id: labDisc.ID, content: "x", wantErr: core.ErrForbidden},
		{name: "unknown discussion", userID: author.ID, board: discussion.BoardLab, id: 999, content: "hello", wantErr: core.ErrNotFound},
		{name: "wrong board", userID: author.ID, board: discussion.BoardQuiz, id: labDisc.ID, content: "hello", wantErr: core.ErrNotFound},
		{name: "course: 14 chars", userID: author.ID, board: discussion.BoardCourse, id: courseDisc.ID, content: strings.Repeat("x", 14), invalid: true},
		{name: "course: 15 chars", userID: author.ID, board: discussion.BoardCourse, id: courseDisc.ID, content: strings.Repeat("x", 15)},
		{name: "lab: 4 chars", userID: author.ID, board: discussion.BoardLab, id: labDisc.ID, content: "abcd", invalid: true},
		{name: "lab: 5 chars", userID: author.ID, board: discussion.BoardLab, id: labDisc.ID, content: "abcde"},
	}
	for _, tt := range tests {
		t.Run("update: "+tt.name, func(t *testing.T) {
			d, err := env.DiscussionSvc.Update(ctx, tt.userID, tt.board, tt.id, discussion.Content{Content: tt.content})
			switch {
			case tt.invalid:
				assert.True(t, isValidationErr(err), "got %v", err)
			case tt.wantErr != nil:
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.content, d.Content)
			}
		})
	}

	t.Run("delete: non author", func(t *testing.T) {
		err := env.DiscussionSvc.Delete(ctx, other.ID, discussion.BoardLab, labDisc.ID)
		assert.True(t, errors.Is(err, core.ErrForbidden), "got %v", err)
	})
	t.Run("delete: author", func(t *testing.T) {
		require.NoError(t, env.DiscussionSvc.Delete(ctx, author.ID, discussion.BoardLab, labDisc.ID))
		_, err := env.DiscussionRepo.GetDiscussion(ctx, discussion.BoardLab, labDisc.ID)
		assert.True(t, errors.Is(err, discussion.ErrNotFound))
	})
}
