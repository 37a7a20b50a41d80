package tests

import (
	"bytes"
	"context"
	"net/http"
	"net/mail"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/recomendo/apps/api/echo"
	"github.com/trezcool/recomendo/core/teacher"
	"github.com/trezcool/recomendo/tests"
)

func Test_authApi_register(t *testing.T) {
	env.Reset()

	testutil.CreateTeacher(t, env.TeacherRepo, "Taken", "taken@test.cd", "")

	reqMsg := "this field is required"
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": reqMsg, "email": reqMsg, "password": reqMsg, "institution": reqMsg}),
		},
		{
			name: "invalid password", wantCode: http.StatusBadRequest,
			body: marchallObj(t, teacher.NewTeacher{Name: "Ada Lovelace", Email: "ada@test.cd", Password: "ab c", Institution: "Test HS"}),
			wantData: marchallObj(t, map[string]string{"password": "password must contain at least 6 characters"}),
		},
		{
			name: "password similar to email", wantCode: http.StatusBadRequest,
			body: marchallObj(t, teacher.NewTeacher{Name: "Ada Lovelace", Email: "ada@test.cd", Password: "ada@test.cd", Institution: "Test HS"}),
			wantData: marchallObj(t, map[string]string{"password": "password cannot be similar to your name or email"}),
		},
		{
			name: "duplicate email", wantCode: http.StatusBadRequest,
			body: marchallObj(t, teacher.NewTeacher{Name: "Ada Lovelace", Email: " TAKEN@test.cd ", Password: "Str0ng!pass", Institution: "Test HS"}),
			wantData: marchallObj(t, map[string]string{"email": "a teacher with this email already exists"}),
		},
		{
			name: "registered", wantCode: http.StatusCreated,
			body: marchallObj(t, teacher.NewTeacher{Name: " Ada Lovelace ", Email: "Ada@Test.cd", Password: "Str0ng!pass", Institution: "Test HS"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/auth/register"

		t.Run(tt.name, func(t *testing.T) {
			rec := serve(tt)
			if tt.wantCode != http.StatusCreated {
				checkCodeAndData(t, tt, rec)
				return
			}

			checkCode(t, tt, rec)
			var resp echoapi.RegisterResponse
			unmarchall(t, rec, &resp)
			assert.Equal(t, "Teacher registered successfully", resp.Message)
			assert.Equal(t, "Ada Lovelace", resp.Teacher.Name)
			assert.Equal(t, "ada@test.cd", resp.Teacher.Email)
			assert.NotEmpty(t, resp.Teacher.ID)
			assert.NotEmpty(t, resp.Token)

			// the new account can log in
			_, err := env.TeacherSvc.Authenticate(context.Background(), "ada@test.cd", "Str0ng!pass")
			assert.NoError(t, err)
		})
	}
}

func Test_authApi_login(t *testing.T) {
	env.Reset()

	tch := testutil.CreateTeacher(t, env.TeacherRepo, "Grace Hopper", "grace@test.cd", "C0b0l!rocks")
	badCredentials := marchallObj(t, httpErr{Error: "invalid email or password"})

	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echoapi.LoginRequest{Email: "this field is required", Password: "this field is required"}),
		},
		{
			name: "unknown email", wantCode: http.StatusUnauthorized, wantData: badCredentials,
			body: marchallObj(t, echoapi.LoginRequest{Email: "nobody@test.cd", Password: "C0b0l!rocks"}),
		},
		{
			name: "wrong password", wantCode: http.StatusUnauthorized, wantData: badCredentials,
			body: marchallObj(t, echoapi.LoginRequest{Email: tch.Email, Password: "wrong-password"}),
		},
		{
			name: "logged in", wantCode: http.StatusOK,
			body: marchallObj(t, echoapi.LoginRequest{Email: "GRACE@test.cd", Password: "C0b0l!rocks"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/auth/login"

		t.Run(tt.name, func(t *testing.T) {
			rec := serve(tt)
			if tt.wantCode != http.StatusOK {
				checkCodeAndData(t, tt, rec)
				return
			}

			checkCode(t, tt, rec)
			var resp echoapi.LoginResponse
			unmarchall(t, rec, &resp)
			assert.NotEmpty(t, resp.Token)
			assert.Equal(t, tch.ID, resp.Teacher.ID)

			// the token opens the authed endpoints
			meRec := serve(httpTest{method: http.MethodGet, path: "/v1/auth/me", token: resp.Token})
			assert.Equal(t, http.StatusOK, meRec.Code)
		})
	}
}

func Test_authApi_me(t *testing.T) {
	env.Reset()

	tch := testutil.CreateTeacher(t, env.TeacherRepo, "Grace Hopper", "grace@test.cd", "")
	ghost := teacher.Teacher{ID: "00000000-0000-0000-0000-000000000000", Name: "Ghost", Email: "ghost@test.cd"}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Invalid token", token: "not.a.token", wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "invalid or expired jwt"}),
		},
		{
			name: "Deleted account", token: getToken(t, ghost), wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "teacher not authenticated"}),
		},
		{name: "Me", token: getToken(t, tch), wantCode: http.StatusOK, wantData: marchallObj(t, tch)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/auth/me"

		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, serve(tt))
		})
	}
}

func Test_authApi_refreshToken(t *testing.T) {
	env.Reset()

	tch := testutil.CreateTeacher(t, env.TeacherRepo, "Grace Hopper", "grace@test.cd", "")

	now := time.Now()
	unrefreshableClaims := &echoapi.Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    env.Conf.AppName,
			Subject:   tch.ID,
			ExpiresAt: now.Add(env.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		OrigIssuedAt: now.Add(-2 * env.Conf.Server.JWTRefreshExpirationDelta).Unix(), // older than threshold
		Name:         tch.Name,
		Email:        tch.Email,
	}
	unrefreshableToken, err := echoapi.GenerateToken(unrefreshableClaims, env.Conf)
	require.NoError(t, err)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Refresh period expired", token: unrefreshableToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"})},
		{name: "Token refreshed", token: getToken(t, tch), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/auth/token-refresh"

		t.Run(tt.name, func(t *testing.T) {
			rec := serve(tt)

			// cannot guess new token.. just check that it's not empty
			if tt.wantCode == http.StatusOK {
				checkCode(t, tt, rec)
				var resp echoapi.TokenResponse
				unmarchall(t, rec, &resp)
				assert.NotEmpty(t, resp.Token)
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_authApi_passwordReset(t *testing.T) {
	env.Reset()

	tch := testutil.CreateTeacher(t, env.TeacherRepo, "Grace Hopper", "grace@test.cd", "C0b0l!rocks")
	successData := marchallObj(t, echoapi.SuccessResponse{Success: "If the email address supplied is associated with an account on this system, " +
		"an email will arrive in your inbox shortly with instructions to reset your password."})
	linkRegex := regexp.MustCompile(`/password-reset-confirm\?uid=([^&\s]+)&(?:amp;)?token=([^\s"<]+)`)

	type extraTest struct {
		emailSent bool
		to        mail.Address
	}
	tests := []httpTest{
		{name: "required fields", wantCode: http.StatusBadRequest, wantData: marchallObj(t, echoapi.PasswordResetRequest{Email: "this field is required"})},
		{
			name: "invalid email", wantCode: http.StatusBadRequest, body: marchallObj(t, echoapi.PasswordResetRequest{Email: "lol"}),
			wantData: marchallObj(t, echoapi.PasswordResetRequest{Email: "email must be a valid email address"}),
		},
		{
			name: "unknown email", wantCode: http.StatusOK, body: marchallObj(t, echoapi.PasswordResetRequest{Email: "lol@test.com"}),
			wantData: successData, extra: extraTest{emailSent: false},
		},
		{
			name: "known email", wantCode: http.StatusOK, body: marchallObj(t, echoapi.PasswordResetRequest{Email: tch.Email}),
			wantData: successData, extra: extraTest{emailSent: true, to: mail.Address{Name: tch.Name, Address: tch.Email}},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/auth/password-reset"

		t.Run(tt.name, func(t *testing.T) {
			env.Mail.Outbox.Clear()

			checkCodeAndData(t, tt, serve(tt))

			extra, ok := tt.extra.(extraTest)
			if !ok {
				return
			}
			msgs := env.Mail.Outbox.Messages()
			if !extra.emailSent {
				assert.Empty(t, msgs)
				return
			}
			require.Len(t, msgs, 1)
			msg := msgs[0]
			assert.Equal(t, extra.to, msg.To[0])
			assert.Contains(t, msg.TextContent, extra.to.Name)
			assert.Contains(t, msg.HTMLContent, extra.to.Name)
			assert.Regexp(t, linkRegex, msg.TextContent)
			assert.Regexp(t, linkRegex, msg.HTMLContent)
		})
	}

	t.Run("confirm with the emailed link", func(t *testing.T) {
		env.Mail.Outbox.Clear()
		rec := serve(httpTest{
			method: http.MethodPost, path: "/v1/auth/password-reset",
			body: marchallObj(t, echoapi.PasswordResetRequest{Email: tch.Email}),
		})
		require.Equal(t, http.StatusOK, rec.Code)
		msgs := env.Mail.Outbox.Messages()
		require.Len(t, msgs, 1)
		match := linkRegex.FindStringSubmatch(msgs[0].TextContent)
		require.Len(t, match, 3)
		uid, token := match[1], strings.TrimSpace(match[2])

		reqMsg := "this field is required"
		confirmTests := []httpTest{
			{
				name: "required fields", wantCode: http.StatusBadRequest,
				wantData: marchallObj(t, teacher.ResetPassword{Token: reqMsg, UID: reqMsg, Password: reqMsg, PasswordConfirm: reqMsg}),
			},
			{
				name: "PasswordConfirm must = Password", wantCode: http.StatusBadRequest,
				body:     marchallObj(t, teacher.ResetPassword{Token: token, UID: uid, Password: "N3w!secret", PasswordConfirm: "lol"}),
				wantData: marchallObj(t, map[string]string{"passwordConfirm": "passwordConfirm must be equal to Password"}),
			},
			{
				name: "invalid token", wantCode: http.StatusBadRequest,
				body:     marchallObj(t, teacher.ResetPassword{Token: "abc-def", UID: uid, Password: "N3w!secret", PasswordConfirm: "N3w!secret"}),
				wantData: marchallObj(t, httpErr{Error: "invalid or expired password reset link"}),
			},
			{
				name: "valid token", wantCode: http.StatusOK,
				body:     marchallObj(t, teacher.ResetPassword{Token: token, UID: uid, Password: "N3w!secret", PasswordConfirm: "N3w!secret"}),
				wantData: marchallObj(t, echoapi.SuccessResponse{Success: "Password has been reset with the new password."}),
			},
		}
		for _, tt := range confirmTests {
			tt.method = http.MethodPost
			tt.path = "/v1/auth/password-reset-confirm"

			t.Run(tt.name, func(t *testing.T) {
				checkCodeAndData(t, tt, serve(tt))

				if tt.wantCode == http.StatusOK {
					refreshed, err := env.TeacherRepo.GetTeacherByID(context.Background(), tch.ID)
					require.NoError(t, err)
					if bytes.Equal(refreshed.PasswordHash, tch.PasswordHash) {
						t.Fatal("failed to update new password")
					}
				}
			})
		}
	})
}
