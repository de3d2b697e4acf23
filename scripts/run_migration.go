package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/ridwanfathin/market-receipts-service/internal/database"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	dbURL := os.Getenv("POSTGRES_DB_URL")
	if dbURL == "" {
		log.Fatalf("POSTGRES_DB_URL environment variable not set")
	}

	ctx := context.Background()

	db, err := database.NewPostgresDB(ctx, dbURL, database.WithMaxConns(1))
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer db.Close()

	applied, err := db.Migrate(ctx)
	for _, version := range applied {
		fmt.Printf("Applied %s\n", version)
	}
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	if len(applied) == 0 {
		fmt.Println("Schema already up to date")
		return
	}
	fmt.Println("Migration successfully executed!")
}
