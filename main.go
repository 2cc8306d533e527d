package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "DIMS-backend/docs"
	"DIMS-backend/internal/catalogue/documents"
	"DIMS-backend/internal/catalogue/items"
	"DIMS-backend/internal/platform/auth"
	"DIMS-backend/internal/platform/db"
	"DIMS-backend/internal/platform/notify"
	"DIMS-backend/internal/requests"
)

// @title			DIMS backend
// @version		1.0
// @description	Department inventory and exclusive-document request workflow.
// @BasePath		/api/v1
func main() {
	// .env is optional; real deployments use the process environment.
	_ = godotenv.Load()

	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	log.Printf("[INFO] mode:%s\n", cfg.Mode)
	if cfg.Mode != "dev" && cfg.Mode != "release" {
		log.Fatal("config mode must be dev or release")
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("auth.jwt_secret (or DIMS_JWT_SECRET) is required")
	}

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)

	authSvc := auth.NewService(conn, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err := authSvc.SeedAdmin(context.Background()); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	notifier := notify.NewNotifier(cfg.Notify)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if cfg.Mode == "dev" {
		// CORS is only needed while the frontend runs on its own port.
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// /api/v1
	api := r.Group("/api/v1")
	auth.RegisterRoutes(api, authSvc)

	protected := api.Group("", auth.RequireAuth(authSvc.Secret()))
	auth.RegisterProtectedRoutes(protected, authSvc)
	items.RegisterRoutes(protected, items.NewService(conn))
	documents.RegisterRoutes(protected, documents.NewService(conn, cfg.UploadDir))
	requests.RegisterRoutes(protected, requests.NewService(conn, notifier))

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	go func() {
		log.Println("[INFO] listening on http://0.0.0.0:8080")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
