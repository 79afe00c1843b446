package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecovery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		method     string
		path       string
		handler    echo.HandlerFunc
		wantStatus int
		wantLog    []string
	}{
		{
			name:   "no panic passes through",
			method: http.MethodGet,
			path:   "/api/v1/quota",
			handler: func(c echo.Context) error {
				return c.String(http.StatusOK, "ok")
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "string panic",
			method: http.MethodGet,
			path:   "/panic",
			handler: func(echo.Context) error {
				panic("test panic")
			},
			wantStatus: http.StatusInternalServerError,
			wantLog:    []string{"panic recovered", "test panic", "path=/panic"},
		},
		{
			name:   "non-string panic",
			method: http.MethodPost,
			path:   "/api/v1/runs",
			handler: func(echo.Context) error {
				panic(42)
			},
			wantStatus: http.StatusInternalServerError,
			wantLog:    []string{"error=42", "method=POST"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			buf, logger := newLogBuffer()
			rec := serveOnce(t, Recovery(logger)(tt.handler), tt.method, tt.path)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if len(tt.wantLog) == 0 {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, rec.Body.String(), "internal server error")
			for _, want := range tt.wantLog {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestRecovery_IncludesRequestID(t *testing.T) {
	t.Parallel()

	buf, logger := newLogBuffer()
	h := RequestLog(logger)(Recovery(logger)(func(echo.Context) error {
		panic("boom")
	}))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/boom", http.NoBody)
	req.Header.Set(requestIDHeader, "req-7")
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "request_id=req-7")
}

func TestRecovery_AbortHandlerRepanics(t *testing.T) {
	t.Parallel()

	_, logger := newLogBuffer()
	h := Recovery(logger)(func(echo.Context) error {
		panic(http.ErrAbortHandler)
	})

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		serveOnce(t, h, http.MethodGet, "/abort")
	})
}
