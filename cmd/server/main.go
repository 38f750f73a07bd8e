package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/ai"
	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/config"
	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/db"
	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/mail"
	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/server"
	"github.com/joho/godotenv"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB migrations plus demo seed and exit")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()

	if *migrateOnlyFlag || *seedOnlyFlag {
		conn, err := db.ConnectAndMigrate()
		if err != nil {
			log.Fatalf("migrate failed: %v", err)
		}
		if *seedOnlyFlag {
			if err := db.Seed(conn); err != nil {
				log.Fatalf("seed failed: %v", err)
			}
			log.Println("seed completed; exiting as requested")
			return
		}
		log.Println("migrations completed; exiting as requested")
		return
	}

	cfg := config.Load()
	conn, err := db.ConnectAndMigrate()
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	log.Printf("Starting server env=%s port=%s", cfg.Env, cfg.Port)

	aiClient := ai.NewClient(cfg.OpenAIKey)
	if cfg.OpenAIModel != "" {
		aiClient.Model = cfg.OpenAIModel
	}
	mailClient := mail.NewClient(cfg.MailjetPublicKey, cfg.MailjetPrivateKey, cfg.FromEmail)

	handler := NewApp(conn, server.Deps{Drafter: aiClient, Sender: mailClient})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
