package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fishivo/geocore/internal/adapters/postgres"
	"github.com/fishivo/geocore/internal/pkg/config"
	"github.com/fishivo/geocore/migrations"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|status>")
	}

	cfg, err := config.Load("geocore-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		applied, err := db.Migrate(ctx, migrations.FS)
		if err != nil {
			log.Fatalf("migrate: %v", err)
		}
		for _, name := range applied {
			fmt.Printf("OK  %s\n", name)
		}
		log.Printf("%d migrations applied", len(applied))
	case "status":
		rows, err := db.Pool.Query(ctx, `SELECT name, applied_at FROM schema_migrations ORDER BY name`)
		if err != nil {
			log.Fatalf("status: %v", err)
		}
		defer rows.Close()
		for rows.Next() {
			var name string
			var at time.Time
			if err := rows.Scan(&name, &at); err != nil {
				log.Fatalf("status: %v", err)
			}
			fmt.Printf("%s  %s\n", at.Format(time.RFC3339), name)
		}
		if err := rows.Err(); err != nil {
			log.Fatalf("status: %v", err)
		}
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}
