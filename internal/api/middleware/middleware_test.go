package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	echo := func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.String(http.StatusOK, string(body))
	}
	r.GET("/ping", echo)
	r.POST("/upload", echo)
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterPerIP(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "limits are tracked per client")
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.Allow("10.0.0.1")
	require.Len(t, rl.limiters, 1)

	now = now.Add(staleLimiterAge + time.Second)
	rl.cleanup()
	assert.Empty(t, rl.limiters)
	assert.True(t, rl.Allow("10.0.0.1"), "a fresh bucket is created after cleanup")
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, 30*time.Second)
	defer rl.Stop()
	r := newEngine(rl.Middleware())

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ping", "").Code)

	w := serve(r, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "TOO_MANY_REQUESTS")
}

func TestDeduplicatorWindow(t *testing.T) {
	d := NewDeduplicator(time.Second)
	now := time.Now()
	d.now = func() time.Time { return now }

	assert.False(t, d.seen("a"))
	assert.True(t, d.seen("a"))
	assert.False(t, d.seen("b"))

	now = now.Add(2 * time.Second)
	assert.False(t, d.seen("a"), "fingerprint expires after the window")

	now = now.Add(2 * time.Second)
	d.cleanup()
	assert.Empty(t, d.requests)
}

func TestDeduplicatorMiddleware(t *testing.T) {
	d := NewDeduplicator(time.Minute)
	defer d.Stop()
	r := newEngine(d.Middleware())

	w := serve(r, http.MethodPost, "/upload", `{"image":"abc"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"image":"abc"}`, w.Body.String(), "body is restored for the handler")

	w = serve(r, http.MethodPost, "/upload", `{"image":"abc"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "DUPLICATE_REQUEST")

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/upload", `{"image":"xyz"}`).Code)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ping", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ping", "").Code, "GET is never deduplicated")
}

func TestDeduplicatorOversizedBody(t *testing.T) {
	d := NewDeduplicator(time.Minute)
	r := gin.New()
	r.POST("/upload", func(c *gin.Context) {
		c.Request.ContentLength = -1
		c.Next()
	}, BodySizeLimit(8), d.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := serve(r, http.MethodPost, "/upload", strings.Repeat("x", 64))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "PAYLOAD_TOO_LARGE")
}

func TestBodySizeLimit(t *testing.T) {
	r := newEngine(BodySizeLimit(16))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/upload", "small").Code)

	w := serve(r, http.MethodPost, "/upload", strings.Repeat("x", 32))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	// 未帶 Content-Length 時讀取超限會失敗
	req := httptest.NewRequest(http.MethodPost, "/upload", io.NopCloser(bytes.NewReader(bytes.Repeat([]byte("x"), 32))))
	req.ContentLength = -1
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(20 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	r.GET("/fast", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := serve(r, http.MethodGet, "/slow", "")
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Contains(t, w.Body.String(), "GATEWAY_TIMEOUT")

	w = serve(r, http.MethodGet, "/fast", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestRecoveryReturnsInternalError(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := serve(r, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}
