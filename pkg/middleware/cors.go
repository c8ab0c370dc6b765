package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"

	"streamverse-backend/pkg/config"
)

// CORS 创建CORS中间件
func CORS(cfg *config.Config) func(http.Handler) http.Handler {
	corsOptions := cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Requested-With",
			"X-Request-Id",
			"Cache-Control",
		},
		ExposedHeaders: []string{
			"X-Request-Id",
		},
		MaxAge: 300, // 5分钟
	}

	// 通配符来源不能携带凭据
	if len(cfg.AllowedOrigins) == 0 || contains(cfg.AllowedOrigins, "*") {
		corsOptions.AllowedOrigins = []string{"*"}
		corsOptions.AllowCredentials = false
	} else {
		corsOptions.AllowOriginFunc = func(r *http.Request, origin string) bool {
			return isOriginAllowed(origin, cfg.AllowedOrigins)
		}
		corsOptions.AllowCredentials = true
	}

	return cors.Handler(corsOptions)
}

// isOriginAllowed 检查来源是否被允许
func isOriginAllowed(origin string, allowedOrigins []string) bool {
	if origin == "" || len(allowedOrigins) == 0 {
		return false
	}

	if contains(allowedOrigins, "*") || contains(allowedOrigins, origin) {
		return true
	}

	// 简单的前缀通配符，例如 https://streamverse-*.vercel.app
	for _, allowed := range allowedOrigins {
		if i := strings.Index(allowed, "*"); i >= 0 {
			prefix, suffix := allowed[:i], allowed[i+1:]
			if len(origin) >= len(prefix)+len(suffix) &&
				strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix) {
				return true
			}
		}
	}

	return false
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
