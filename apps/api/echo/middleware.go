package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// rateLimitMiddleware throttles requests per client IP and route.
// A limiter failure rejects the request.
func (s *Server) rateLimitMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if s.Limiter == nil {
				return next(ctx)
			}
			key := ctx.Path() + ":" + ctx.RealIP()
			ok, err := s.Limiter.Allow(ctx.Request().Context(), key)
			if err != nil {
				s.Logger.Error("rate limiter unavailable", errors.Wrap(err, "echoapi.rateLimitMiddleware"))
				return errTooManyRequests
			}
			if !ok {
				return errTooManyRequests
			}
			return next(ctx)
		}
	}
}
