package middleware_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapkiduki/shipping-go/internal/application/port"
	"github.com/hapkiduki/shipping-go/internal/interfaces/http/middleware"
)

type captureLogger struct {
	mu     sync.Mutex
	msgs   []string
	fields []map[string]any
	extra  []any
}

func (l *captureLogger) log(msg string, kv []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	f := map[string]any{}
	all := append(append([]any{}, l.extra...), kv...)
	for i := 0; i+1 < len(all); i += 2 {
		if k, ok := all[i].(string); ok {
			f[k] = all[i+1]
		}
	}
	l.msgs = append(l.msgs, msg)
	l.fields = append(l.fields, f)
}

func (l *captureLogger) Debug(msg string, kv ...any) { l.log(msg, kv) }
func (l *captureLogger) Info(msg string, kv ...any)  { l.log(msg, kv) }
func (l *captureLogger) Warn(msg string, kv ...any)  { l.log(msg, kv) }
func (l *captureLogger) Error(msg string, kv ...any) { l.log(msg, kv) }
func (l *captureLogger) With(kv ...any) port.Logger {
	l.extra = append(l.extra, kv...)
	return l
}
func (l *captureLogger) WithContext(ctx context.Context) port.Logger {
	if id := middleware.GetRequestID(ctx); id != "" {
		return l.With("request_id", id)
	}
	return l
}

type envelope struct {
	Success bool `json:"success"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		RequestID string `json:"request_id"`
		Timestamp string `json:"timestamp"`
		Version   string `json:"version"`
	} `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestRequestID(t *testing.T) {
	var seen string
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(middleware.RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "gateway-42")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "gateway-42", seen)
	assert.Equal(t, "gateway-42", rec.Header().Get(middleware.RequestIDHeader))
}

func TestLogger_RecordsStatusAndRequestID(t *testing.T) {
	log := &captureLogger{}
	h := middleware.RequestID(middleware.Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shipping/zones?x=1", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-7")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, log.fields, 1)
	assert.Equal(t, "HTTP Request", log.msgs[0])
	assert.Equal(t, http.StatusTeapot, log.fields[0]["status"])
	assert.Equal(t, "/api/v1/shipping/zones", log.fields[0]["path"])
	assert.Equal(t, "x=1", log.fields[0]["query"])
	assert.Equal(t, "req-7", log.fields[0]["request_id"])
}

func TestRecoverer(t *testing.T) {
	log := &captureLogger{}
	h := middleware.Recoverer(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
	assert.Equal(t, []string{"Panic recovered"}, log.msgs)

	abort := middleware.Recoverer(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		abort.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestRateLimiter(t *testing.T) {
	h := middleware.RateLimiter(middleware.RateLimiterConfig{RequestsPerSecond: 0.001, Burst: 1})(ok)

	send := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, send("10.0.0.1:1111").Code)

	rec := send("10.0.0.1:2222")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMITED", decodeEnvelope(t, rec).Error.Code)

	assert.Equal(t, http.StatusNoContent, send("10.0.0.2:1111").Code)
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	h := middleware.RateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: 0.001,
		Burst:             1,
		IdleTTL:           200 * time.Millisecond,
	})(ok)

	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.7:1111"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusNoContent, send())
	require.Equal(t, http.StatusTooManyRequests, send())

	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, http.StatusNoContent, send())
}

func TestDefaultRateLimiterConfig(t *testing.T) {
	cfg := middleware.DefaultRateLimiterConfig()

	assert.Equal(t, 10.0, cfg.RequestsPerSecond)
	assert.Equal(t, 20, cfg.Burst)
	assert.Equal(t, middleware.DefaultLimiterIdleTTL, cfg.IdleTTL)
	require.NotNil(t, cfg.KeyFunc)
}

func TestClientIPAndRealIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5000"
	assert.Equal(t, "192.0.2.1", middleware.ClientIP(req))

	req.RemoteAddr = "no-port"
	assert.Equal(t, "no-port", middleware.ClientIP(req))

	var remote string
	h := middleware.RealIP(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		remote = r.RemoteAddr
	}))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "203.0.113.9", remote)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", " 198.51.100.4 ")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "198.51.100.4", remote)
}

func TestContentTypeJSON(t *testing.T) {
	h := middleware.ContentTypeJSON(ok)

	tests := []struct {
		method      string
		contentType string
		want        int
	}{
		{method: http.MethodPost, contentType: "application/json", want: http.StatusNoContent},
		{method: http.MethodPost, contentType: "application/json; charset=utf-8", want: http.StatusNoContent},
		{method: http.MethodPost, contentType: "text/plain", want: http.StatusUnsupportedMediaType},
		{method: http.MethodPost, contentType: "", want: http.StatusUnsupportedMediaType},
		{method: http.MethodGet, contentType: "", want: http.StatusNoContent},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, "/", strings.NewReader("{}"))
		if tt.contentType != "" {
			req.Header.Set("Content-Type", tt.contentType)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tt.want, rec.Code, "%s %q", tt.method, tt.contentType)
	}
}

func TestMaxBodySize(t *testing.T) {
	var readErr error
	h := middleware.MaxBodySize(4)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("1234")))
	require.NoError(t, readErr)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("12345")))
	var tooLarge *http.MaxBytesError
	require.ErrorAs(t, readErr, &tooLarge)
}

func TestTimeout(t *testing.T) {
	slow := middleware.Timeout(10 * time.Millisecond)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	rec := httptest.NewRecorder()
	slow.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, "TIMEOUT", decodeEnvelope(t, rec).Error.Code)

	fast := middleware.Timeout(time.Second)(ok)
	rec = httptest.NewRecorder()
	fast.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSecureHeadersAndAPIVersion(t *testing.T) {
	h := middleware.SecureHeaders(middleware.APIVersion("1.2.3")(ok))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "1.2.3", rec.Header().Get("X-API-Version"))
}

func TestWriteError_IncludesRequestID(t *testing.T) {
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, http.StatusBadRequest, "INVALID_REQUEST", "nope")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)
	assert.Equal(t, "nope", env.Error.Message)
	require.NotNil(t, env.Meta)
	assert.Equal(t, "abc", env.Meta.RequestID)
	assert.Empty(t, env.Meta.Version)
	_, err := time.Parse(time.RFC3339, env.Meta.Timestamp)
	require.NoError(t, err)
}

func TestAPIVersion_StampsResponseMeta(t *testing.T) {
	var seen string
	h := middleware.APIVersion("1.4.0")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetAPIVersion(r.Context())
		middleware.WriteError(w, r, http.StatusConflict, "CONFLICT", "busy")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "1.4.0", seen)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Meta)
	assert.Equal(t, "1.4.0", env.Meta.Version)
	assert.Empty(t, env.Meta.RequestID)
}
