package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"streamverse-backend/pkg/config"
	"streamverse-backend/pkg/database"
	"streamverse-backend/pkg/handlers"
	customMiddleware "streamverse-backend/pkg/middleware"
	"streamverse-backend/pkg/utils"
)

// Handler 是Vercel函数的入口点
// 所有API端点集中在一个Chi路由器中管理
func Handler(w http.ResponseWriter, r *http.Request) {
	// 加载配置
	cfg := config.GetCached()

	// 验证配置
	if err := cfg.Validate(); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Configuration error: "+err.Error())
		return
	}

	// 存储实例由进程级缓存管理，热启动之间复用
	db, err := database.GetDatabase(r.Context(), cfg.DatabaseConfig())
	if err != nil {
		fmt.Printf("❌ Failed to open store: %v\n", err)
		utils.WriteServiceUnavailableResponse(w, "Storage is not available")
		return
	}

	NewRouter(cfg, db).ServeHTTP(w, r)
}

// NewRouter builds the full router over one store. cmd/server uses it directly.
func NewRouter(cfg *config.Config, db database.SiteStore) http.Handler {
	router := chi.NewRouter()

	// 设置全局中间件
	setupMiddleware(router, cfg)

	// 设置路由
	setupRoutes(router, cfg, db)

	return router
}

// setupMiddleware 设置全局中间件
func setupMiddleware(router *chi.Mux, cfg *config.Config) {
	// 基础中间件
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	// Normalize path and restore scheme/host before logging and routing
	router.Use(customMiddleware.Normalize())
	router.Use(customMiddleware.Logger(cfg))
	router.Use(customMiddleware.Recovery(cfg))

	// CORS中间件
	router.Use(customMiddleware.CORS(cfg))

	// 超时中间件（Vercel函数有时间限制）
	router.Use(middleware.Timeout(25 * time.Second)) // 留5秒缓冲

	// 压缩中间件
	router.Use(middleware.Compress(5))

	// 开发环境额外中间件
	if cfg.IsDevelopment() {
		router.Use(middleware.Heartbeat("/ping"))
	}
}

// setupRoutes 设置所有API路由
func setupRoutes(router *chi.Mux, cfg *config.Config, db database.SiteStore) {
	sitesHandler := handlers.NewSitesHandler(cfg, db)

	// 健康检查端点
	router.Get("/", sitesHandler.HealthCheck)

	// 存储缓存状态端点（调试用）
	if cfg.IsDevelopment() {
		router.Get("/debug/store-pool", func(w http.ResponseWriter, r *http.Request) {
			stats := database.GetConnectionStats()
			stats["serverless"] = database.IsVercelEnvironment()
			utils.WriteSuccessResponse(w, stats)
		})
	}

	router.Route("/api", func(r chi.Router) {
		r.Route("/sites", func(r chi.Router) {
			r.Use(customMiddleware.ContentTypeJSON)
			r.Use(customMiddleware.MaxBodySize(customMiddleware.DefaultMaxBodyBytes))

			r.Get("/", sitesHandler.ListSites)         // 列出站点
			r.Post("/", sitesHandler.CreateSite)       // 创建站点
			r.Get("/{id}", sitesHandler.GetSite)       // 获取站点
			r.Put("/{id}", sitesHandler.UpdateSite)    // 更新站点
			r.Delete("/{id}", sitesHandler.DeleteSite) // 删除站点
		})

		r.Get("/categories", sitesHandler.ListCategories)
	})

	// 404处理
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteNotFoundResponse(w, fmt.Sprintf("Route not found: %s %s", r.Method, r.URL.Path))
	})

	// 405处理
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorResponseWithCode(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			fmt.Sprintf("Method %s not allowed for %s", r.Method, r.URL.Path), "")
	})
}
