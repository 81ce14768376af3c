package main

import (
	"crypto/rand"
	"log"
	"os"
	"path/filepath"

	"github.com/existflow/taskdeck/internal/logger"
	"github.com/existflow/taskdeck/server"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logCfg := logger.DefaultConfig()
	logCfg.Console = true
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	driver := "sqlite"
	dsn := os.Getenv("DATABASE_URL")
	if dsn != "" {
		driver = "postgres"
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}
		dir := filepath.Join(home, ".taskdeck")
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
		dsn = filepath.Join(dir, "server.db")
	}

	secret := []byte(os.Getenv("TASKDECK_JWT_SECRET"))
	if len(secret) == 0 {
		// Dev convenience: a random per-process secret. Tokens stop
		// verifying across restarts, which exercises the client's
		// refresh-or-logout path.
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			log.Fatalf("Failed to generate JWT secret: %v", err)
		}
		log.Println("TASKDECK_JWT_SECRET not set, using a random per-process secret")
	}

	srv, err := server.New(driver, dsn, secret)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			log.Printf("Error closing server: %v", err)
		}
	}()

	log.Printf("taskdeck dev server starting on :%s (%s)", port, driver)
	if err := srv.Start(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
