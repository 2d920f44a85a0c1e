package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"classifieds/internal/config"
	"classifieds/internal/database/migration"
	dbpostgres "classifieds/internal/database/postgres"
	"classifieds/internal/database/seeder"
	"classifieds/internal/pkg/jwt"
)

// seed migrates a Postgres database, loads the development accounts and prints an
// access token for each of them.
func main() {
	skipTokens := flag.Bool("no-tokens", false, "do not print access tokens")
	statusOnly := flag.Bool("status", false, "print migration status and exit")
	flag.Parse()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.Store.Driver != config.StorePostgres {
		logger.Fatalf("seeding requires STORE_DRIVER=postgres, got %s", cfg.Store.Driver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Fatalf("failed to connect: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	r := migration.Runner{Dir: cfg.Database.MigrationsDir, Logger: logger}
	if *statusOnly {
		st, err := r.Status(ctx, db.SQLDB())
		if err != nil {
			logger.Fatalf("migration status failed: %v", err)
		}
		for _, s := range st {
			state := "pending"
			if !s.Pending() {
				state = "applied " + s.AppliedAt.Format(time.RFC3339)
			}
			logger.Printf("V%d %s: %s", s.Version, s.Name, state)
		}
		return
	}
	if err := r.Run(ctx, db.SQLDB()); err != nil {
		logger.Fatalf("migration failed: %v", err)
	}

	if err := (seeder.Runner{Seeders: seeder.Defaults(), Logger: logger}).Run(ctx, db); err != nil {
		logger.Fatalf("seed failed: %v", err)
	}
	if *skipTokens {
		return
	}

	tokens := jwt.NewHMACService(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiresIn)
	for _, u := range seeder.DevUsers() {
		tok, err := tokens.GenerateAccessToken(u.ID, u.Email, string(u.Role))
		if err != nil {
			logger.Fatalf("issue token for %s: %v", u.Email, err)
		}
		logger.Printf("user=%s role=%s id=%s token=%s", u.Email, u.Role, u.ID, tok)
	}
}
