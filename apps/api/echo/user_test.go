package echoapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/labtrack/backend/apps/api/echo"
	"github.com/labtrack/backend/core/user"
	emailsvc "github.com/labtrack/backend/services/email"
	"github.com/labtrack/backend/tests"
)

func Test_userApi_signup(t *testing.T) {
	env, app := newTestApp(t)
	testutil.CreateUser(t, env.UserRepo, "Ada", "ada@test.io", "S001", "pwd", false)

	tests := []httpTest{
		{
			name: "missing fields", method: http.MethodPost, path: "/signup", body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"name":       "this field is required",
				"email":      "this field is required",
				"student_id": "this field is required",
				"password":   "this field is required",
			}),
		},
		{
			name: "invalid email", method: http.MethodPost, path: "/signup",
			body:     []byte(`{"name": "Bob", "email": "bob", "student_id": "S002", "password": "pwd"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "enter a valid email address"}),
		},
		{
			name: "duplicate email", method: http.MethodPost, path: "/signup",
			body:     []byte(`{"name": "Bob", "email": "ADA@test.io", "student_id": "S002", "password": "pwd"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: user.ErrUserExists.Error()}),
		},
		{
			name: "duplicate student id", method: http.MethodPost, path: "/signup",
			body:     []byte(`{"name": "Bob", "email": "bob@test.io", "student_id": "S001", "password": "pwd"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: user.ErrUserExists.Error()}),
		},
		{
			name: "malformed body", method: http.MethodPost, path: "/signup", body: []byte(`{"name": `),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "created", method: http.MethodPost, path: "/signup",
			body:     []byte(`{"name": "Bob", "email": "Bob@Test.io", "student_id": "S002", "track": "backend", "password": "pwd"}`),
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, httpMsg{Message: "User created successfully"}),
		},
	}
	runHTTPTests(t, app, tests)

	usr, err := env.UserRepo.GetUser(context.Background(), user.GetFilter{Email: "bob@test.io"})
	require.NoError(t, err)
	assert.Equal(t, "backend", usr.Track)
	assert.False(t, usr.IsInstructor)
	assert.Len(t, emailsvc.SentMessagesTo("bob@test.io"), 1)
}

func Test_userApi_login(t *testing.T) {
	env, app := newTestApp(t)
	usr := testutil.CreateUser(t, env.UserRepo, "Ada", "ada@test.io", "S001", "pwd", false)
	invalidCreds := marchallObj(t, httpErr{Error: "invalid credentials"})

	runHTTPTests(t, app, []httpTest{
		{
			name: "wrong password", method: http.MethodPost, path: "/login",
			body: []byte(`{"email": "ada@test.io", "password": "bad"}`), wantCode: http.StatusUnauthorized, wantData: invalidCreds,
		},
		{
			name: "unknown email", method: http.MethodPost, path: "/login",
			body: []byte(`{"email": "bob@test.io", "password": "pwd"}`), wantCode: http.StatusUnauthorized, wantData: invalidCreds,
		},
		{
			name: "empty", method: http.MethodPost, path: "/login",
			body: []byte(`{}`), wantCode: http.StatusUnauthorized, wantData: invalidCreds,
		},
	})

	t.Run("success", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/login", []byte(`{"email": " ADA@test.io", "password": "pwd"}`))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, usr.ID, resp.UserID)
		assert.Equal(t, usr.Name, resp.Name)
		assert.Equal(t, usr.StudentID, resp.StudentID)

		claims := new(Claims)
		_, err := jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
			return []byte(env.Conf.SecretKey), nil
		})
		require.NoError(t, err)
		assert.Equal(t, strconv.Itoa(usr.ID), claims.Subject)
		assert.Equal(t, usr.Email, claims.Email)
	})
}

func Test_jwtMiddleware(t *testing.T) {
	env, app := newTestApp(t)
	usr := testutil.CreateUser(t, env.UserRepo, "Ada", "ada@test.io", "S001", "pwd", false)

	expired := GetUserClaims(usr, env.Conf)
	expired.ExpiresAt = expired.IssuedAt - 60
	expiredToken, err := GenerateToken(expired, env.Conf.SecretKey)
	require.NoError(t, err)
	forgedToken, err := GenerateToken(GetUserClaims(usr, env.Conf), "not-the-secret")
	require.NoError(t, err)
	invalidToken := marchallObj(t, httpErr{Error: "invalid or expired jwt"})

	runHTTPTests(t, app, []httpTest{
		{name: "no token", method: http.MethodPost, path: "/enrollments", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "expired", method: http.MethodPost, path: "/enrollments", token: expiredToken, wantCode: http.StatusUnauthorized, wantData: invalidToken},
		{name: "forged", method: http.MethodPost, path: "/enrollments", token: forgedToken, wantCode: http.StatusUnauthorized, wantData: invalidToken},
		{name: "garbage", method: http.MethodPost, path: "/enrollments", token: "abc.def.ghi", wantCode: http.StatusUnauthorized, wantData: invalidToken},
	})

	validToken := getToken(t, env, usr)
	schemes := []struct {
		name     string
		header   string
		wantCode int
	}{
		{name: "bearer lowercase", header: "bearer " + validToken, wantCode: http.StatusBadRequest},
		{name: "bearer uppercase", header: "BEARER " + validToken, wantCode: http.StatusBadRequest},
		{name: "scheme only", header: "Bearer ", wantCode: http.StatusUnauthorized},
		{name: "other scheme", header: "Basic " + validToken, wantCode: http.StatusUnauthorized},
	}
	for _, tt := range schemes {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/enrollments", []byte(`{}`))
			req.Header.Set(echo.HeaderAuthorization, tt.header)
			app.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}
