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

	"deckgen-backend/internal/config"
	"deckgen-backend/internal/handlers"
	"deckgen-backend/internal/router"
	"deckgen-backend/internal/services"
)

func main() {
	log.Println("🚀 Starting Deckgen Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize Services ────
	plannerService := services.NewPlannerService(cfg)
	fileExtractService := services.NewFileExtractService()
	log.Printf("✓ Outline planner ready (model %s, tokens supplied per request)", cfg.DefaultModel)

	// ──── Step 3: Initialize Handlers ────
	deckHandler := handlers.NewDeckHandler(cfg, plannerService, fileExtractService)

	// ──── Step 4: Start HTTP Server ────
	r := router.New(deckHandler, cfg)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Deckgen Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
