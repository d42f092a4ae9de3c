package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	appctx "retailops/internal/core/context"
)

type staticValidator struct {
	user *appctx.UserContext
}

func (v staticValidator) ValidateToken(token string) (*appctx.UserContext, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return v.user, nil
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Trace(), ErrorHandler(), Recovery())
	r.GET("/", handlers...)
	return r
}

func serve(r *gin.Engine, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRecovery_RendersInternalError(t *testing.T) {
	r := newEngine(func(c *gin.Context) { panic("boom") })

	w := serve(r, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestRecovery_ReportsRequestID(t *testing.T) {
	r := newEngine(func(c *gin.Context) { panic(errors.New("nil map write")) })

	w := serve(r, http.Header{HeaderRequestID: {"req-7"}})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"request_id":"req-7"`)
	assert.NotContains(t, w.Body.String(), "nil map write")
}

func TestRecovery_AfterPartialWriteKeepsStatus(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		c.String(http.StatusAccepted, "partial")
		panic("late")
	})

	w := serve(r, nil)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "partial", w.Body.String())
}

func TestTrace_EchoesRequestID(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		c.String(http.StatusOK, appctx.GetRequestID(c.Request.Context()))
	})

	w := serve(r, http.Header{HeaderRequestID: {"req-42"}})

	assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))
	assert.Equal(t, "req-42", w.Body.String())
	assert.NotEmpty(t, w.Header().Get(HeaderTraceID))
}

func TestRequireRole(t *testing.T) {
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	tests := []struct {
		name  string
		roles []string
		want  int
	}{
		{"matching role", []string{appctx.RoleInventory}, http.StatusNoContent},
		{"admin bypass", []string{appctx.RoleAdmin}, http.StatusNoContent},
		{"other role", []string{appctx.RoleCashier}, http.StatusForbidden},
		{"no roles", nil, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := staticValidator{user: &appctx.UserContext{UserID: "u1", Roles: tt.roles}}
			r := newEngine(Auth(v), RequireRole(appctx.RoleInventory), ok)

			w := serve(r, http.Header{"Authorization": {"Bearer good"}})

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestAuth_RejectsMalformedHeader(t *testing.T) {
	r := newEngine(Auth(staticValidator{}), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, h := range []string{"", "good", "Basic good", "Bearer bad"} {
		w := serve(r, http.Header{"Authorization": {h}})
		assert.Equal(t, http.StatusUnauthorized, w.Code, h)
	}
}

func TestTimeout_SetsDeadline(t *testing.T) {
	var deadline time.Time
	var has bool
	r := newEngine(Timeout(time.Minute), func(c *gin.Context) {
		deadline, has = c.Request.Context().Deadline()
		c.Status(http.StatusNoContent)
	})

	serve(r, nil)

	assert.True(t, has)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

func TestTimeout_ZeroDisabled(t *testing.T) {
	var ctx context.Context
	r := newEngine(Timeout(0), func(c *gin.Context) {
		ctx = c.Request.Context()
		c.Status(http.StatusNoContent)
	})

	serve(r, nil)

	_, has := ctx.Deadline()
	assert.False(t, has)
}
