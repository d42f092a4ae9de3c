// Package middleware provides HTTP middleware components.
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"retailops/internal/core/apperror"
	appctx "retailops/internal/core/context"
	"retailops/pkg/logger"
)

// Recovery turns a handler panic into an INTERNAL_ERROR carrying the request ID.
// It must run inside ErrorHandler so the error gets rendered. The panic value and
// stack only go to the log.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			ctx := c.Request.Context()
			requestID := appctx.GetRequestID(ctx)
			logger.Error(ctx, "panic recovered",
				"request_id", requestID,
				"method", c.Request.Method,
				"route", c.FullPath(),
				"panic", rec,
				"stack", string(debug.Stack()),
			)

			if c.Writer.Written() {
				// headers are out; nothing left to render
				c.Abort()
				return
			}
			_ = c.Error(apperror.NewInternal(panicError(rec)).WithDetail("request_id", requestID))
			c.Abort()
		}()
		c.Next()
	}
}

func panicError(rec any) error {
	if err, ok := rec.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return errors.New(fmt.Sprint("panic: ", rec))
}
