package echoapi_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labtrack/backend/core/course"
	"github.com/labtrack/backend/core/enrollment"
	"github.com/labtrack/backend/tests"
)

func Test_courseApi_query(t *testing.T) {
	env, app := newTestApp(t)

	runHTTPTests(t, app, []httpTest{{name: "empty", path: "/courses", wantData: marchallList(t)}})

	goCourse, _ := testutil.CreateCourse(t, env.CourseSvc, "Go", nil)
	sqlCourse, _ := testutil.CreateCourse(t, env.CourseSvc, "SQL", nil)
	usr := testutil.CreateUser(t, env.UserRepo, "Ada", "ada@test.io", "S001", "pwd", false)
	testutil.Enroll(t, env.EnrollmentRepo, usr.ID, goCourse.ID)

	runHTTPTests(t, app, []httpTest{
		{name: "all", path: "/courses", wantData: marchallList(t, goCourse, sqlCourse)},
		{name: "trailing slash", path: "/courses/", wantData: marchallList(t, goCourse, sqlCourse)},
		{
			name: "detail", path: fmt.Sprintf("/courses/%d", goCourse.ID),
			wantData: marchallObj(t, course.Detail{Course: goCourse, EnrolledUsers: []int{usr.ID}}),
		},
		{
			name: "detail (no enrollment)", path: fmt.Sprintf("/courses/%d", sqlCourse.ID),
			wantData: marchallObj(t, course.Detail{Course: sqlCourse, EnrolledUsers: []int{}}),
		},
		{name: "unknown", path: "/courses/999", wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: course.ErrNotFound.Error()})},
		{name: "invalid id", path: "/courses/abc", wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})},
	})
}

func Test_courseApi_items(t *testing.T) {
	env, app := newTestApp(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, env.UserRepo, "Ada", "ada@test.io", "S001", "pwd", false)
	token := getToken(t, env, usr)
	c, items := testutil.CreateCourse(t, env.CourseSvc, "Go", course.ItemCounts{course.KindLab: 2, course.KindQuiz: 1, course.KindExam: 1})
	lab1, lab2 := items[course.KindLab][0], items[course.KindLab][1]
	testutil.Enroll(t, env.EnrollmentRepo, usr.ID, c.ID)
	_, err := env.EnrollmentSvc.SetCompletion(ctx, course.KindLab, usr.ID, lab1.ID, true)
	require.NoError(t, err)

	runHTTPTests(t, app, []httpTest{
		{name: "auth required", path: fmt.Sprintf("/courses/%d/labs", c.ID), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "labs", path: fmt.Sprintf("/courses/%d/labs", c.ID), token: token,
			wantData: marchallList(t,
				enrollment.ItemStatus{Item: lab1, IsComplete: true},
				enrollment.ItemStatus{Item: lab2, IsComplete: false},
			),
		},
		{
			name: "quizzes", path: fmt.Sprintf("/courses/%d/quizzes", c.ID), token: token,
			wantData: marchallList(t, enrollment.ItemStatus{Item: items[course.KindQuiz][0]}),
		},
		{
			name: "exams", path: fmt.Sprintf("/courses/%d/exams", c.ID), token: token,
			wantData: marchallList(t, enrollment.ItemStatus{Item: items[course.KindExam][0]}),
		},
		{name: "unknown course", path: "/courses/999/labs", token: token, wantData: marchallList(t)},
	})
}

func Test_courseApi_setCompletion(t *testing.T) {
	env, app := newTestApp(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, env.UserRepo, "Ada", "ada@test.io", "S001", "pwd", false)
	token := getToken(t, env, usr)
	c, items := testutil.CreateCourse(t, env.CourseSvc, "Go", course.ItemCounts{course.KindLab: 1, course.KindQuiz: 1})
	lab, quiz := items[course.KindLab][0], items[course.KindQuiz][0]
	testutil.Enroll(t, env.EnrollmentRepo, usr.ID, c.ID)

	progress := func(t *testing.T) int {
		e, err := env.EnrollmentRepo.GetEnrollment(ctx, usr.ID, c.ID)
		require.NoError(t, err)
		return e.Progress
	}

	steps := []struct {
		test         httpTest
		wantProgress int
	}{
		{
			test: httpTest{
				name: "lab: default is complete", method: http.MethodPost, path: fmt.Sprintf("/labs/%d/completion", lab.ID), token: token,
				wantData: marchallObj(t, httpMsg{Message: "Lab completion updated"}),
			},
			wantProgress: 50,
		},
		{
			test: httpTest{
				name: "quiz: complete", method: http.MethodPost, path: fmt.Sprintf("/quizzes/%d/completion", quiz.ID), token: token,
				body: []byte(`{"is_complete": true}`), wantData: marchallObj(t, httpMsg{Message: "Quiz completion updated"}),
			},
			wantProgress: 100,
		},
		{
			test: httpTest{
				name: "lab: incomplete", method: http.MethodPost, path: fmt.Sprintf("/labs/%d/completion", lab.ID), token: token,
				body: []byte(`{"is_complete": false}`), wantData: marchallObj(t, httpMsg{Message: "Lab completion updated"}),
			},
			wantProgress: 50,
		},
		{
			test: httpTest{
				name: "unknown exam", method: http.MethodPost, path: "/exams/999/completion", token: token,
				wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: course.ErrItemNotFound.Error()}),
			},
			wantProgress: 50,
		},
		{
			test: httpTest{
				name: "auth required", method: http.MethodPost, path: fmt.Sprintf("/labs/%d/completion", lab.ID),
				wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
			},
			wantProgress: 50,
		},
	}
	for _, step := range steps {
		runHTTPTests(t, app, []httpTest{step.test})
		assert.Equal(t, step.wantProgress, progress(t), step.test.name)
	}
}
