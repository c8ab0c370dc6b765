package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	handler "streamverse-backend/api"
	"streamverse-backend/pkg/config"
	"streamverse-backend/pkg/database"
)

// 本地开发服务器，与Vercel函数共用同一个路由
func main() {
	cfg := config.GetCached()
	if err := cfg.Validate(); err != nil {
		fmt.Printf("❌ Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.GetDatabase(ctx, cfg.DatabaseConfig())
	if err != nil {
		fmt.Printf("❌ Failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer database.ResetPool()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.NewRouter(cfg, db),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		fmt.Printf("🚀 StreamVerse API listening on http://localhost:%s (%s store, %s)\n", cfg.Port, db.Name(), cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Printf("❌ Server error: %v\n", err)
			stop()
		}
	}()

	<-ctx.Done()
	fmt.Println("🛑 Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("⚠️  Shutdown: %v\n", err)
	}
}
