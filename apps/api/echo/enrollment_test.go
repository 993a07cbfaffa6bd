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
	emailsvc "github.com/labtrack/backend/services/email"
	"github.com/labtrack/backend/tests"
)

func Test_enrollmentApi(t *testing.T) {
	env, app := newTestApp(t)

	usr := testutil.CreateUser(t, env.UserRepo, "Ada", "ada@test.io", "S001", "pwd", false)
	token := getToken(t, env, usr)
	c, _ := testutil.CreateCourse(t, env.CourseSvc, "Go", nil)

	runHTTPTests(t, app, []httpTest{
		{
			name: "auth required", method: http.MethodPost, path: "/enrollments", body: []byte(fmt.Sprintf(`{"course_id": %d}`, c.ID)),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "course required", method: http.MethodPost, path: "/enrollments", token: token, body: []byte(`{}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"course_id": "this field is required"}),
		},
		{
			name: "unknown course", method: http.MethodPost, path: "/enrollments", token: token, body: []byte(`{"course_id": 999}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: course.ErrNotFound.Error()}),
		},
		{
			name: "enrolled", method: http.MethodPost, path: "/enrollments", token: token, body: []byte(fmt.Sprintf(`{"course_id": %d}`, c.ID)),
			wantCode: http.StatusCreated, wantData: marchallObj(t, httpMsg{Message: "Enrolled successfully"}),
		},
		{
			name: "already enrolled", method: http.MethodPost, path: "/enrollments", token: token, body: []byte(fmt.Sprintf(`{"course_id": %d}`, c.ID)),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: enrollment.ErrAlreadyEnrolled.Error()}),
		},
	})
	assert.Len(t, emailsvc.SentMessagesTo(usr.Email), 1)

	enrollments, err := env.EnrollmentSvc.QueryByUser(context.Background(), usr.ID)
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, 0, enrollments[0].Progress)

	runHTTPTests(t, app, []httpTest{
		{name: "by user", path: fmt.Sprintf("/enrollments/%d", usr.ID), wantData: marchallList(t, enrollments[0])},
		{name: "by unknown user", path: "/enrollments/999", wantData: marchallList(t)},
		{name: "invalid id", path: "/enrollments/abc", wantCode: http.StatusNotFound},
	})
}
