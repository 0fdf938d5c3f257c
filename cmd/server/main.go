package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"cadastral-export/internal/api"
	"cadastral-export/internal/config"
	"cadastral-export/internal/db"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 0, "Port to listen on (overrides PORT)")
	dbPath := flag.String("db", "", "Path to SQLite cache database (overrides DB_PATH)")
	flag.Parse()

	cfg := config.Load()
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	log.Printf("Database path: %s", cfg.DBPath)

	// Initialize cache database
	database, err := db.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	if purged, err := database.PurgeExpired(); err == nil && purged > 0 {
		log.Printf("Purged %d expired cache entries", purged)
	}

	// Create router
	router := api.NewRouter(cfg, database)

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Starting server on http://localhost%s", addr)

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
