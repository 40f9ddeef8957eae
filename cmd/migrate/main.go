// Command migrate applies the embedded Postgres schema.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/trademax/academy-enrollment/internal/store"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}

	listOnly := len(os.Args) > 1 && os.Args[1] == "--list"

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := store.Open(ctx, dsn)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	if !listOnly {
		if err := store.New(db).Migrate(ctx); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		log.Println("Migrations complete")
	}

	rows, err := db.QueryContext(ctx, "SELECT tablename FROM pg_tables WHERE schemaname='public' AND tablename IN ('enrollments','reminder_runs') ORDER BY tablename")
	if err != nil {
		log.Fatal(err)
	}
	defer rows.Close()
	n := 0
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			log.Fatal(err)
		}
		fmt.Println(" ", t)
		n++
	}
	fmt.Printf("Total: %d tables\n", n)
}
