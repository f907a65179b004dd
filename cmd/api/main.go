package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/recipelab/backend/config"
	"github.com/recipelab/backend/internal/server"
)

func main() {
	cfg := config.New()

	srv, err := server.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("[Main] Failed to initialize server: %v", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("[Main] Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("[Main] Received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("[Main] Shutdown error: %v", err)
		}
	}
}
