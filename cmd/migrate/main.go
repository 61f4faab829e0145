package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/ndfdanim/internal/adapters/postgres"
	"github.com/samirrijal/ndfdanim/internal/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|list>")
	}

	cfg, err := config.Load("ndfdanim-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	switch os.Args[1] {
	case "list":
		ms, err := postgres.Migrations()
		if err != nil {
			log.Fatalf("migrations: %v", err)
		}
		for _, m := range ms {
			fmt.Println(m.Name)
		}
	case "up":
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer pool.Close()

		if err := postgres.Migrate(ctx, pool, func(name string) {
			fmt.Printf("OK  %s\n", name)
		}); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		log.Println("all migrations applied")
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}
