package echoapi_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labtrack/backend/core/course"
	"github.com/labtrack/backend/core/discussion"
	"github.com/labtrack/backend/tests"
)

func Test_discussionApi_course(t *testing.T) {
	env, app := newTestApp(t)
	ctx := context.Background()

	author := testutil.CreateUser(t, env.UserRepo, "Ada", "ada@test.io", "S001", "pwd", false)
	other := testutil.CreateUser(t, env.UserRepo, "Bob", "bob@test.io", "S002", "pwd", false)
	authorToken, otherToken := getToken(t, env, author), getToken(t, env, other)
	c, _ := testutil.CreateCourse(t, env.CourseSvc, "Go", nil)
	body := func(content string) []byte {
		return []byte(fmt.Sprintf(`{"course_id": %d, "content": %q}`, c.ID, content))
	}
	tooShort := marchallObj(t, map[string]string{"content": "ensure this field has at least 15 characters"})

	runHTTPTests(t, app, []httpTest{
		{
			name: "auth required", method: http.MethodPost, path: "/discussions", body: body(strings.Repeat("x", 15)),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "14 characters", method: http.MethodPost, path: "/discussions", token: authorToken, body: body(strings.Repeat("x", 14)),
			wantCode: http.StatusBadRequest, wantData: tooShort,
		},
		{
			name: "unknown course", method: http.MethodPost, path: "/discussions", token: authorToken,
			body:     []byte(`{"course_id": 999, "content": "a long enough course post"}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: course.ErrNotFound.Error()}),
		},
		{
			name: "not enrolled, 15 characters", method: http.MethodPost, path: "/discussions", token: authorToken, body: body(strings.Repeat("x", 15)),
			wantCode: http.StatusCreated, wantData: marchallObj(t, httpMsg{Message: "Discussion created"}),
		},
	})

	discussions, err := env.DiscussionSvc.QueryCourse(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, discussions, 1)
	d := discussions[0]
	assert.Equal(t, author.Email, d.UserEmail)
	path := fmt.Sprintf("/discussions/%d", d.ID)

	runHTTPTests(t, app, []httpTest{
		{name: "public read", path: fmt.Sprintf("/discussions/%d", c.ID), wantData: marchallList(t, d)},
		{
			name: "update by non author", method: http.MethodPut, path: path, token: otherToken, body: []byte(`{"content": "x"}`),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: discussion.ErrNotOwner.Error()}),
		},
		{
			name: "update too short", method: http.MethodPut, path: path, token: authorToken, body: []byte(`{"content": "short"}`),
			wantCode: http.StatusBadRequest, wantData: tooShort,
		},
		{
			name: "update", method: http.MethodPut, path: path, token: authorToken, body: []byte(`{"content": "an updated course post"}`),
			wantData: marchallObj(t, httpMsg{Message: "Discussion updated"}),
		},
		{
			name: "delete by non author", method: http.MethodDelete, path: path, token: otherToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: discussion.ErrNotOwner.Error()}),
		},
		{name: "delete", method: http.MethodDelete, path: path, token: authorToken, wantData: marchallObj(t, httpMsg{Message: "Discussion deleted"})},
		{
			name: "delete again", method: http.MethodDelete, path: path, token: authorToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: discussion.ErrNotFound.Error()}),
		},
		{name: "empty board", path: fmt.Sprintf("/discussions/%d", c.ID), wantData: marchallList(t)},
	})
}

func Test_discussionApi_items(t *testing.T) {
	env, app := newTestApp(t)
	ctx := context.Background()

	author := testutil.CreateUser(t, env.UserRepo, "Ada", "ada@test.io", "S001", "pwd", false)
	outsider := testutil.CreateUser(t, env.UserRepo, "Bob", "bob@test.io", "S002", "pwd", false)
	authorToken, outsiderToken := getToken(t, env, author), getToken(t, env, outsider)
	c, items := testutil.CreateCourse(t, env.CourseSvc, "Go", course.ItemCounts{course.KindLab: 1, course.KindQuiz: 1, course.KindExam: 1})
	testutil.Enroll(t, env.EnrollmentRepo, author.ID, c.ID)

	routes := []struct {
		kind   course.Kind
		plural string
		label  string
	}{
		{kind: course.KindLab, plural: "labs", label: "Lab"},
		{kind: course.KindQuiz, plural: "quizzes", label: "Quiz"},
		{kind: course.KindExam, plural: "exams", label: "Exam"},
	}
	notEnrolled := marchallObj(t, httpErr{Error: discussion.ErrNotEnrolled.Error()})
	tooShort := marchallObj(t, map[string]string{"content": "ensure this field has at least 5 characters"})

	for _, r := range routes {
		t.Run(r.plural, func(t *testing.T) {
			item := items[r.kind][0]
			boardPath := fmt.Sprintf("/%s/%d/discussions", r.plural, item.ID)

			runHTTPTests(t, app, []httpTest{
				{name: "auth required", path: boardPath, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
				{name: "read: not enrolled", path: boardPath, token: outsiderToken, wantCode: http.StatusForbidden, wantData: notEnrolled},
				{
					name: "write: not enrolled", method: http.MethodPost, path: boardPath, token: outsiderToken,
					body: []byte(`{"content": "hello"}`), wantCode: http.StatusForbidden, wantData: notEnrolled,
				},
				{
					name: "unknown item", method: http.MethodPost, path: fmt.Sprintf("/%s/999/discussions", r.plural), token: authorToken,
					body: []byte(`{"content": "hello"}`), wantCode: http.StatusForbidden, wantData: notEnrolled,
				},
				{
					name: "4 characters", method: http.MethodPost, path: boardPath, token: authorToken,
					body: []byte(`{"content": "hell"}`), wantCode: http.StatusBadRequest, wantData: tooShort,
				},
				{
					name: "5 characters", method: http.MethodPost, path: boardPath, token: authorToken,
					body: []byte(`{"content": "hello"}`), wantCode: http.StatusCreated,
					wantData: marchallObj(t, httpMsg{Message: r.label + " discussion created"}),
				},
			})

			discussions, err := env.DiscussionSvc.QueryItem(ctx, author.ID, r.kind, item.ID)
			require.NoError(t, err)
			require.Len(t, discussions, 1)
			d := discussions[0]
			path := fmt.Sprintf("/%s-discussions/%d", r.kind, d.ID)

			runHTTPTests(t, app, []httpTest{
				{name: "read", path: boardPath, token: authorToken, wantData: marchallList(t, d)},
				{
					name: "update by non author", method: http.MethodPut, path: path, token: outsiderToken,
					body: []byte(`{"content": "hijacked"}`), wantCode: http.StatusForbidden,
					wantData: marchallObj(t, httpErr{Error: discussion.ErrNotOwner.Error()}),
				},
				{
					name: "update", method: http.MethodPut, path: path, token: authorToken,
					body: []byte(`{"content": "hello again"}`), wantData: marchallObj(t, httpMsg{Message: r.label + " discussion updated"}),
				},
				{
					name: "delete", method: http.MethodDelete, path: path, token: authorToken,
					wantData: marchallObj(t, httpMsg{Message: r.label + " discussion deleted"}),
				},
				{name: "read empty", path: boardPath, token: authorToken, wantData: marchallList(t)},
			})
		})
	}
}
