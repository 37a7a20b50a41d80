package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/recomendo/apps/api/echo"
	"github.com/trezcool/recomendo/services/ratelimit"
	"github.com/trezcool/recomendo/tests"
)

func newRateLimitedServer(t *testing.T, limit int) (*Server, *miniredis.Miniredis) {
	t.Helper()
	redis := miniredis.RunT(t)
	limiter, err := ratelimit.NewFixedWindowLimiter(redis.Addr(), "", "test:ratelimit", limit, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = limiter.Close() })

	return NewServer(ServerDeps{
		Conf:              env.Conf,
		Logger:            env.Logger,
		TeacherSvc:        env.TeacherSvc,
		StudentSvc:        env.StudentSvc,
		CollegeSvc:        env.CollegeSvc,
		RecommendationSvc: env.RecommendationSvc,
		Validate:          env.Validate,
		Translator:        env.Translator,
		Limiter:           limiter,
	}), redis
}

func Test_rateLimit(t *testing.T) {
	env.Reset()

	tch := testutil.CreateTeacher(t, env.TeacherRepo, "Grace Hopper", "grace@test.cd", "Zx9!qwRt")
	srv, _ := newRateLimitedServer(t, 2)
	body := marchallObj(t, LoginRequest{Email: tch.Email, Password: "wrong-password"})

	for i := 0; i < 2; i++ {
		req, rec := newRequest(http.MethodPost, "/v1/auth/login", body)
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "attempt %d", i+1)
	}

	req, rec := newRequest(http.MethodPost, "/v1/auth/login", body)
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error": "too many requests, try again later"}`, rec.Body.String())

	// other routes have their own window
	req, rec = newRequest(http.MethodPost, "/v1/auth/password-reset", marchallObj(t, PasswordResetRequest{Email: tch.Email}))
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// authed endpoints are not throttled
	for i := 0; i < 3; i++ {
		req, rec = newAuthRequest(http.MethodGet, "/v1/auth/me", getToken(t, tch))
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func Test_rateLimit_failClosed(t *testing.T) {
	env.Reset()

	srv, redis := newRateLimitedServer(t, 10)
	redis.Close()

	body := marchallObj(t, LoginRequest{Email: "grace@test.cd", Password: "Zx9!qwRt"})
	req, rec := newRequest(http.MethodPost, "/v1/auth/login", body)
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
