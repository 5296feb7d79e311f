package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"carbusiness-backend/internal/config"
	"carbusiness-backend/internal/domain"
	"carbusiness-backend/internal/domain/model"
	pg "carbusiness-backend/internal/infra/db/postgres"
)

// Applies the schema (tables, indexes, the activation function) and, in dev
// mode, seeds a profile to test the premium flow against.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "also seed a development profile")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if err := pg.ApplySchema(ctx, pool); err != nil {
		log.Fatalf("apply schema: %v", err)
	}
	fmt.Println("schema applied")

	if !cfg.Runtime.Dev {
		return
	}

	profiles := pg.NewProfileRepo(pool)
	const devEmail = "dev@example.com"

	if _, err := profiles.FindByEmail(ctx, nil, devEmail); err == nil {
		fmt.Printf("dev profile %s already present. No changes.\n", devEmail)
		return
	} else if !errors.Is(err, domain.ErrNotFound) {
		log.Fatalf("lookup dev profile: %v", err)
	}

	p := &model.Profile{
		ID:       uuid.NewString(),
		Email:    devEmail,
		FullName: "Dev User",
		Phone:    "+244900000000",
	}
	if err := profiles.Save(ctx, nil, p); err != nil {
		log.Fatalf("seed dev profile: %v", err)
	}
	fmt.Printf("seeded dev profile %s (id=%s)\n", p.Email, p.ID)
}
