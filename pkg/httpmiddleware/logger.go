package httpmiddleware

import (
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestLogger returns echo middleware that injects lg into the request
// context and logs one line per completed request. Handlers retrieve the
// logger with zctx.From(ctx).
func RequestLogger(lg *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			requestID := c.Response().Header().Get(echo.HeaderXRequestID)

			reqLg := lg.With(zap.String("request_id", requestID))
			c.SetRequest(req.WithContext(zctx.Base(req.Context(), reqLg)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			reqLg.Info("Request",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote", c.RealIP()),
			)
			return err
		}
	}
}
