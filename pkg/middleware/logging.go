package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"streamverse-backend/pkg/config"
)

// Logger 创建日志中间件（开发环境彩色日志，生产环境每个请求一行JSON）
func Logger(cfg *config.Config) func(http.Handler) http.Handler {
	if !cfg.IsProduction() {
		return middleware.Logger
	}
	return RequestLogger
}

// requestLog is one production access-log line.
type requestLog struct {
	Time      string `json:"time"`
	RequestID string `json:"request_id,omitempty"`
	Method    string `json:"method"`
	Path      string `json:"path"`
	Query     string `json:"query,omitempty"`
	Status    int    `json:"status"`
	Bytes     int    `json:"bytes"`
	Duration  string `json:"duration"`
	IP        string `json:"ip"`
	UserAgent string `json:"user_agent,omitempty"`
}

// RequestLogger 结构化请求日志
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		line, err := json.Marshal(requestLog{
			Time:      start.UTC().Format(time.RFC3339),
			RequestID: middleware.GetReqID(r.Context()),
			Method:    r.Method,
			Path:      r.URL.Path,
			Query:     r.URL.RawQuery,
			Status:    status,
			Bytes:     ww.BytesWritten(),
			Duration:  time.Since(start).String(),
			IP:        getClientIP(r),
			UserAgent: r.UserAgent(),
		})
		if err != nil {
			return
		}
		fmt.Println(string(line))
	})
}

// getClientIP 获取客户端IP地址
func getClientIP(r *http.Request) string {
	// RealIP 已经处理过 X-Forwarded-For / X-Real-IP
	return r.RemoteAddr
}
