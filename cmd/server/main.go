// YanLian 情景演练排班服务
// 主程序入口

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yanlian/yanlian/internal/config"
	"github.com/yanlian/yanlian/internal/database"
	"github.com/yanlian/yanlian/internal/handler"
	"github.com/yanlian/yanlian/internal/metrics"
	"github.com/yanlian/yanlian/internal/middleware"
	"github.com/yanlian/yanlian/internal/repository"
	"github.com/yanlian/yanlian/internal/security"
	"github.com/yanlian/yanlian/pkg/logger"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置加载失败: %v\n", err)
		os.Exit(1)
	}

	format := "json"
	if cfg.IsDevelopment() {
		format = "console"
	}
	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: format,
	})

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Str("env", cfg.App.Env).
		Msg("YanLian 情景演练排班服务启动中")

	// 数据库不可用时退化为纯求解服务，持久化端点不注册
	db := connectDatabase(cfg)
	if db != nil {
		defer db.Close()
	}

	mux := buildRoutes(cfg, db)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      buildMiddleware(cfg, mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("url", fmt.Sprintf("http://localhost:%d", cfg.App.Port)).
			Msg("服务器启动")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
		os.Exit(1)
	}

	logger.Info().Msg("服务器已关闭")
}

// connectDatabase 连接数据库并执行建表迁移，失败时返回 nil
func connectDatabase(cfg *config.Config) *database.DB {
	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Warn().Err(err).Msg("数据库连接失败，持久化功能已禁用")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Migrate(ctx); err != nil {
		logger.Error().Err(err).Msg("数据库迁移失败")
		db.Close()
		return nil
	}
	return db
}

// buildRoutes 注册全部API路由
func buildRoutes(cfg *config.Config, db *database.DB) *http.ServeMux {
	mux := http.NewServeMux()

	scheduleHandler := handler.NewScheduleHandler(&cfg.Solver)

	// 系统端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		dbStatus := "disabled"
		if db != nil {
			dbStatus = "ok"
			if err := db.Health(r.Context()); err != nil {
				status = "degraded"
				dbStatus = "error"
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"%s","service":"yanlian","database":"%s"}`, status, dbStatus)
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	// API 根路由
	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"message": "YanLian 情景演练排班 API v1",
			"endpoints": {
				"schedule": {
					"generate": "POST /api/v1/schedule/generate",
					"validate": "POST /api/v1/schedule/validate",
					"replacements": "POST /api/v1/schedule/replacements"
				},
				"constraints": {
					"library": "GET /api/v1/constraints/library"
				},
				"stats": {
					"fairness": "POST /api/v1/stats/fairness",
					"coverage": "POST /api/v1/stats/coverage",
					"compare": "POST /api/v1/stats/compare"
				},
				"export": {
					"text": "POST /api/v1/export/text",
					"ics": "POST /api/v1/export/ics"
				},
				"rosters": {
					"list": "GET /api/v1/rosters",
					"create": "POST /api/v1/rosters",
					"get": "GET /api/v1/rosters/get",
					"update": "POST /api/v1/rosters/update",
					"delete": "POST /api/v1/rosters/delete"
				},
				"schedules": {
					"list": "GET /api/v1/schedules",
					"get": "GET /api/v1/schedules/get",
					"latest": "GET /api/v1/schedules/latest"
				}
			}
		}`))
	})

	// 排班引擎 API
	mux.HandleFunc("/api/v1/schedule/generate", scheduleHandler.Generate)
	mux.HandleFunc("/api/v1/schedule/validate", scheduleHandler.Validate)
	mux.HandleFunc("/api/v1/schedule/replacements", handler.GetReplacementsHandler)

	// 约束库 API
	mux.HandleFunc("/api/v1/constraints/library", handler.GetConstraintLibraryHandler)

	// 统计分析 API
	mux.HandleFunc("/api/v1/stats/fairness", handler.GetFairnessHandler)
	mux.HandleFunc("/api/v1/stats/coverage", handler.GetCoverageHandler)
	mux.HandleFunc("/api/v1/stats/compare", handler.GetCompareHandler)

	// 导出 API
	mux.HandleFunc("/api/v1/export/text", handler.ExportTextHandler)
	mux.HandleFunc("/api/v1/export/ics", handler.ExportICSHandler)

	// 持久化 API（数据库可用时）
	if db != nil {
		rosterRepo := repository.NewRosterRepository(db)
		scheduleRepo := repository.NewScheduleRepository(db)
		scheduleHandler.WithRepository(scheduleRepo)

		rosterHandler := handler.NewRosterHandler(rosterRepo, scheduleRepo)
		mux.HandleFunc("/api/v1/rosters", rosterHandler.Rosters)
		mux.HandleFunc("/api/v1/rosters/get", rosterHandler.GetRoster)
		mux.HandleFunc("/api/v1/rosters/update", rosterHandler.UpdateRoster)
		mux.HandleFunc("/api/v1/rosters/delete", rosterHandler.DeleteRoster)
		mux.HandleFunc("/api/v1/schedules", rosterHandler.Schedules)
		mux.HandleFunc("/api/v1/schedules/get", rosterHandler.GetSchedule)
		mux.HandleFunc("/api/v1/schedules/latest", rosterHandler.GetLatestSchedule)
	}

	// Prometheus 指标端点
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	return mux
}

// buildMiddleware 组装中间件链
// 执行顺序：requestID → recovery → securityHeaders → cors → logging → auth → handler
func buildMiddleware(cfg *config.Config, mux http.Handler) http.Handler {
	h := mux

	if cfg.API.APIKey != "" {
		keyManager := security.NewAPIKeyManager()
		keyManager.Register(cfg.API.APIKey, "default", []string{security.ScopeAll})

		h = middleware.AuthMiddleware(&middleware.AuthConfig{
			APIKeyManager:   keyManager,
			RateLimiter:     security.NewRateLimiter(cfg.API.RateLimit, time.Minute),
			SkipPaths:       []string{"/health", "/version", cfg.Metrics.Path},
			EnableRateLimit: true,
		})(h)
		logger.Info().Msg("API密钥认证已启用")
	}

	h = middleware.LoggingMiddleware(h)
	if cfg.API.CORS.Enabled {
		h = middleware.CORSMiddleware(cfg.API.CORS.Origins)(h)
	}
	h = middleware.SecurityHeadersMiddleware(h)
	h = middleware.RecoveryMiddleware(h)
	h = middleware.RequestIDMiddleware(h)
	return h
}
