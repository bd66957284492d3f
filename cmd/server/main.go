/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the APR engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Initialize SQLite store
  3. Connect the result cache (Redis, or in-process)
  4. Create API handler and start the recalculation scheduler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port             HTTP server port (default: 8080, env APR_PORT)
  -db               SQLite database path (default: apr.db, env APR_DB)
                    Use ":memory:" for in-memory database
  -redis            Redis address for the result cache (env APR_REDIS_ADDR)
  -cache-ttl        Redis entry TTL (default: 24h)
  -recalc-interval  Background recalculation interval (default: 1m)
  -no-recalc        Disable background recalculation

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close cache and database connections

EXAMPLES:
  ./server -db="./data/apr.db"
  ./server -db=":memory:" -redis=localhost:6379
  APR_PORT=3000 ./server

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
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

	"github.com/joho/godotenv"
	"github.com/warp/apr-engine/api"
	"github.com/warp/apr-engine/cache"
	"github.com/warp/apr-engine/store/sqlite"
)

func main() {
	// A missing .env is fine; flags and the real environment still apply.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Failed to load .env: %v", err)
	}

	cfg, err := loadConfig(os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize cache
	var resultCache cache.Cache = cache.NewMemory()
	if cfg.RedisAddr != "" {
		rc := cache.NewRedis(cfg.RedisAddr, cfg.CacheTTL)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rc.Ping(ctx)
		cancel()
		if err != nil {
			log.Printf("Warning: Redis at %s unavailable, using in-process cache: %v", cfg.RedisAddr, err)
			rc.Close()
		} else {
			log.Printf("Using Redis cache at %s", cfg.RedisAddr)
			resultCache = rc
			defer rc.Close()
		}
	}

	// Initialize handler
	handler := api.NewHandler(store, resultCache)

	scheduler := api.NewRecalcScheduler(store, handler)
	scheduler.CheckInterval = cfg.RecalcEvery
	scheduler.Enabled = !cfg.DisableRecalc
	scheduler.Start()

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", cfg.Port)
		log.Printf("API available at http://localhost:%d/api", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
