// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rotemsade/todo-api/internal/auth"
	"github.com/rotemsade/todo-api/internal/config"
	"github.com/rotemsade/todo-api/internal/todos"
	"github.com/rotemsade/todo-api/internal/users"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()
	router.Use(requestID())

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		auth.HeaderName,
	}
	// フロントエンドがレスポンスヘッダーからセッショントークンを読み取れるように公開
	corsConfig.ExposeHeaders = []string{auth.HeaderName, "X-Request-Id"}
	router.Use(cors.New(corsConfig))

	// ストアへの接続
	st, cleanup, err := setupStore(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to store: %v", err)
	}
	defer cleanup()

	// ルーティングの設定
	setupRoutes(router, cfg, st)

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// apiStore はルーティングが必要とするストア機能の集約です。
type apiStore interface {
	users.Store
	todos.Store
	auth.UserResolver
}

// setupRoutes は API のルートと認証周りの配線を行います。
func setupRoutes(router *gin.Engine, cfg *config.Config, st apiStore) {
	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", handleHealth)

	tokens := auth.NewManager(cfg.JWTSecret)
	authRequired := auth.RequireAuth(tokens, st)

	router.POST("/users", users.RegisterHandler(st, tokens))
	router.POST("/users/login", users.LoginHandler(st, tokens))
	router.GET("/users/me", authRequired, users.MeHandler())
	router.DELETE("/users/me/token", authRequired, users.LogoutHandler(st))

	owned := router.Group("/todos", authRequired)
	{
		owned.POST("", todos.CreateHandler(st))
		owned.GET("", todos.ListHandler(st))
		owned.GET("/:id", todos.GetHandler(st))
		owned.PATCH("/:id", todos.UpdateHandler(st))
		owned.DELETE("/:id", todos.DeleteHandler(st))
	}
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "todo-api",
		"version": "0.1.0",
	})
}

// requestID はリクエストごとの相関idを払い出すミドルウェアです。
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-Id", id)
		c.Next()
	}
}
