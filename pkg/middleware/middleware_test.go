package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamverse-backend/pkg/config"
	"streamverse-backend/pkg/utils"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestIsOriginAllowed(t *testing.T) {
	allowed := []string{"https://streamverse.app", "https://streamverse-*.vercel.app"}

	assert.True(t, isOriginAllowed("https://streamverse.app", allowed))
	assert.True(t, isOriginAllowed("https://streamverse-git-main.vercel.app", allowed))
	assert.False(t, isOriginAllowed("https://evil.app", allowed))
	assert.False(t, isOriginAllowed("https://streamverse-x.vercel.app.evil.app", allowed))
	assert.False(t, isOriginAllowed("", allowed))
	assert.True(t, isOriginAllowed("https://any.app", []string{"*"}))
}

func TestCORS_Preflight(t *testing.T) {
	cfg := &config.Config{Environment: "production", AllowedOrigins: []string{"https://streamverse.app"}}
	h := CORS(cfg)(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/sites", nil)
	req.Header.Set("Origin", "https://streamverse.app")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://streamverse.app", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/sites", nil)
	req.Header.Set("Origin", "https://evil.app")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Wildcard(t *testing.T) {
	cfg := &config.Config{Environment: "development", AllowedOrigins: []string{"*"}}
	h := CORS(cfg)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/sites", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRecovery(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	for _, env := range []string{"development", "production"} {
		t.Run(env, func(t *testing.T) {
			h := Recovery(&config.Config{Environment: env})(panicking)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sites", nil))

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			var body utils.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "INTERNAL_SERVER_ERROR", body.Code)
			if env == "production" {
				assert.Equal(t, "Internal server error", body.Error)
				assert.Empty(t, body.Details)
			} else {
				assert.Contains(t, body.Error, "boom")
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	var gotPath, gotHost string
	h := Normalize()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotHost = r.URL.Path, r.Host
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/sites/", nil)
	req.Header.Set("X-Forwarded-Host", "streamverse.app")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "/api/sites", gotPath)
	assert.Equal(t, "streamverse.app", gotHost)

	req = httptest.NewRequest(http.MethodGet, "/api/sites%20", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "/api/sites", gotPath)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "/", gotPath)
}

func TestContentTypeJSON(t *testing.T) {
	h := ContentTypeJSON(okHandler())

	tests := []struct {
		name        string
		method      string
		contentType string
		want        int
	}{
		{"get skips check", http.MethodGet, "", http.StatusOK},
		{"missing", http.MethodPost, "", http.StatusBadRequest},
		{"wrong type", http.MethodPut, "text/plain", http.StatusBadRequest},
		{"json", http.MethodPost, "application/json", http.StatusOK},
		{"json with charset", http.MethodPut, "application/json; charset=utf-8", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/sites", strings.NewReader("{}"))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestMaxBodySize(t *testing.T) {
	var readErr error
	h := MaxBodySize(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	var maxErr *http.MaxBytesError
	assert.ErrorAs(t, readErr, &maxErr)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("short")))
	assert.NoError(t, readErr)
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	h := Logger(&config.Config{Environment: "production"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("{}"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sites", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "{}", rec.Body.String())
}
