package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/config"
	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/session"
	"storefront/internal/tokenstore"
	"storefront/internal/util"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting storefront")

	tp, err := util.InitTracer("storefront", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	// The bearer token is the one artifact persisted between runs.
	// Without Redis the session simply lives and dies with the process.
	var tokens tokenstore.Store
	redisStore, err := tokenstore.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("Redis unavailable, keeping session token in memory: %v", err)
		tokens = tokenstore.NewMemoryStore()
	} else {
		defer redisStore.Close()
		tokens = redisStore
		log.Println("Redis connected")
	}

	catalogClient := catalog.NewClient(
		cfg.Catalog.BaseURL,
		time.Duration(cfg.Catalog.TimeoutSeconds)*time.Second,
	)
	log.Printf("Catalog client initialized: %s", cfg.Catalog.BaseURL)

	cartStore := cart.NewStore()

	sess := session.New(catalogClient, tokens, session.NavigatorFunc(func() {
		logger.Info("Navigating to login")
	}))

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(
		cartStore,
		catalogClient,
		sess,
		time.Duration(cfg.Search.DebounceMillis)*time.Millisecond,
	)
	handler.SetupRoutes(router)
	defer handler.Close()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
