package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/recomendo/core"
	"github.com/trezcool/recomendo/core/teacher"
)

const (
	tokenAudience     = "Teachers"
	contextTeacherKey = "teacher"
)

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "userToken",
		Claims:        new(Claims),
	}
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
}

// GetTeacherClaims returns the claims of a fresh token for t.
// origIat is carried over by token refreshes.
func GetTeacherClaims(t teacher.Teacher, conf *core.Config, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   t.ID,
			Audience:  tokenAudience,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Name:         t.Name,
		Email:        t.Email,
	}
}

// GenerateToken generates a signed JWT token string representing the teacher Claims.
func GenerateToken(claims *Claims, conf *core.Config) (string, error) {
	jwtConf := newJWTConfig(conf)
	token := jwt.NewWithClaims(jwt.GetSigningMethod(jwtConf.SigningMethod), claims)

	ss, err := token.SignedString(jwtConf.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func (s *Server) generateToken(t teacher.Teacher, origIat ...int64) (string, error) {
	return GenerateToken(GetTeacherClaims(t, s.Conf, origIat...), s.Conf)
}

func (s *Server) contextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(s.jwt.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// contextTeacherID is the ID of the authenticated teacher; every recommendation query is scoped to it.
func (s *Server) contextTeacherID(ctx echo.Context) (string, error) {
	claims, err := s.contextClaims(ctx)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errUnauthorized
	}
	return claims.Subject, nil
}

func (s *Server) contextTeacher(ctx echo.Context) (teacher.Teacher, error) {
	if t, ok := ctx.Get(contextTeacherKey).(teacher.Teacher); ok {
		return t, nil
	}

	id, err := s.contextTeacherID(ctx)
	if err != nil {
		return teacher.Teacher{}, err
	}
	t, err := s.TeacherSvc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		// the account behind a valid token is gone
		if errors.Cause(err) == teacher.ErrNotFound {
			return teacher.Teacher{}, errUnauthorized
		}
		return teacher.Teacher{}, errors.Wrap(err, "finding teacher by ID")
	}
	ctx.Set(contextTeacherKey, t)
	return t, nil
}

func (s *Server) refreshToken(ctx echo.Context) (string, error) {
	claims, err := s.contextClaims(ctx)
	if err != nil {
		return "", err
	}

	t, err := s.contextTeacher(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context teacher")
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(s.Conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	token, err := s.generateToken(t, claims.OrigIssuedAt)
	return token, errors.Wrap(err, "generating token")
}
