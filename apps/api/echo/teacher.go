package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/recomendo/core/teacher"
)

func (s *Server) registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc) {
	ag := g.Group("/auth")

	// un-authed endpoints
	limited := ag.Group("", s.rateLimitMiddleware())
	limited.POST("/register", s.register)
	limited.POST("/login", s.login)
	limited.POST("/password-reset", s.resetPassword)
	limited.POST("/password-reset-confirm", s.confirmPasswordReset)

	// authed endpoints
	ag.GET("/me", s.me, jwt)
	ag.POST("/token-refresh", s.tokenRefresh, jwt)
}

// Handlers

func (s *Server) register(ctx echo.Context) error {
	var data teacher.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	reqCtx := ctx.Request().Context()
	if err := data.Validate(reqCtx, s.Validate, s.TeacherSvc); err != nil {
		return err
	}

	t, err := s.TeacherSvc.Register(reqCtx, data)
	if err != nil {
		return errors.Wrap(err, "registering teacher")
	}
	token, err := s.generateToken(t)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusCreated, RegisterResponse{
		Message: "Teacher registered successfully",
		Teacher: t,
		Token:   token,
	})
}

func (s *Server) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(s.Validate); err != nil {
		return err
	}

	t, err := s.TeacherSvc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := s.generateToken(t)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Teacher: t})
}

func (s *Server) me(ctx echo.Context) error {
	t, err := s.contextTeacher(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context teacher")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (s *Server) tokenRefresh(ctx echo.Context) error {
	token, err := s.refreshToken(ctx)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (s *Server) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(s.Validate); err != nil {
		return err
	}

	err := s.TeacherSvc.RequestPasswordReset(ctx.Request().Context(), data.Email)
	if !(err == nil || errors.Cause(err) == teacher.ErrNotFound) {
		// do not return errors to attackers
		s.Logger.Error("requesting password reset", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (s *Server) confirmPasswordReset(ctx echo.Context) error {
	var data teacher.ResetPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetPassword")
	}
	if err := data.Validate(s.Validate); err != nil {
		return err
	}

	if err := s.TeacherSvc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}
