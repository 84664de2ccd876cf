package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geldimmi/geldimmi/internal/database"
	"github.com/geldimmi/geldimmi/internal/logging"
	"github.com/geldimmi/geldimmi/internal/server"
)

func main() {
	port := os.Getenv("GELDIMMI_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("GELDIMMI_DB_PATH")
	if dbPath == "" {
		dbPath = "geldimmi.db"
	}

	logger := logging.Setup(os.Getenv("GELDIMMI_LOG_LEVEL"))

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	srv := server.New(db, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Background cleanup of expired sessions and rate limiter windows.
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-cleanupCtx.Done():
				return
			case <-ticker.C:
				if _, err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Error("delete expired sessions", "error", err)
				}
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	go func() {
		fmt.Printf("Geldimmi running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	cancelCleanup()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
