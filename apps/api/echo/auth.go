package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/labtrack/backend/core"
	"github.com/labtrack/backend/core/user"
)

var (
	contextTokenKey = "userToken"
	signingMethod   = jwt.SigningMethodHS256
)

// Claims represents the authorization claims transmitted via a JWT.
// The Subject is the user ID.
type Claims struct {
	jwt.StandardClaims
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	StudentID string `json:"student_id,omitempty"`
}

func (c Claims) UserID() (int, error) {
	return strconv.Atoi(c.Subject)
}

func GetUserClaims(usr user.User, conf *core.Config) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   strconv.Itoa(usr.ID),
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Name:      usr.Name,
		Email:     usr.Email,
		StudentID: usr.StudentID,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims, secretKey string) (string, error) {
	token := jwt.NewWithClaims(signingMethod, claims)
	ss, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// newJWTConfig returns the JWT auth middleware config. Tokens must be HS256 signed with secretKey
// and carry a numeric subject.
func newJWTConfig(secretKey string) middleware.JWTConfig {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != signingMethod.Alg() {
			return nil, errors.Errorf("unexpected jwt signing method %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	}

	return middleware.JWTConfig{
		ContextKey: contextTokenKey,
		ParseTokenFunc: func(auth string, _ echo.Context) (interface{}, error) {
			token, err := jwt.ParseWithClaims(auth, new(Claims), keyFunc)
			if err != nil {
				return nil, err
			}
			if !token.Valid {
				return nil, errors.New("invalid token")
			}
			if _, err = token.Claims.(*Claims).UserID(); err != nil {
				return nil, errors.Wrap(err, "parsing subject")
			}
			return token, nil
		},
	}
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextUserID(ctx echo.Context) (int, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return 0, err
	}
	id, err := claims.UserID()
	if err != nil {
		return 0, errUnauthorized
	}
	return id, nil
}

func paramID(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "not found").SetInternal(err)
	}
	return id, nil
}
