//go:build ignore

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/hugh/go-portal/internal/auth"
	"github.com/hugh/go-portal/internal/store"
	"github.com/hugh/go-portal/pkg/config"
	"github.com/hugh/go-portal/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env, cfg.Log.Level)

	st, err := store.Open(&cfg.Storage, logger)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}

	hasher, err := auth.NewHasher(auth.Params{
		Memory:      uint32(cfg.Argon2.MemoryKB),
		Iterations:  uint32(cfg.Argon2.Iterations),
		Parallelism: uint8(cfg.Argon2.Parallelism),
	})
	if err != nil {
		log.Fatalf("failed to create hasher: %v", err)
	}

	authService := auth.NewService(st, hasher, logger)
	ctx := context.Background()

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "demo-password"
	}

	username := envOr("SEED_USERNAME", "demo")
	_, err = authService.RegisterUser(ctx, auth.RegisterUserInput{
		Name:     "Demo",
		Surname:  "User",
		Username: username,
		Email:    username + "@example.com",
		Password: password,
	})
	report("user", username, err)

	orgname := envOr("SEED_ORGNAME", "demo-org")
	_, err = authService.RegisterOrganization(ctx, auth.RegisterOrgInput{
		Name:     "Demo Organization",
		Address:  "1 Main Street",
		Phone:    "+1 555 0100",
		Email:    "contact@example.com",
		Orgname:  orgname,
		Password: password,
	})
	report("organization", orgname, err)

	fmt.Printf("Password: %s\n", password)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func report(kind, name string, err error) {
	switch {
	case err == nil:
		fmt.Printf("Created %s: %s\n", kind, name)
	case errors.Is(err, auth.ErrIdentityExists):
		fmt.Printf("%s already exists: %s\n", kind, name)
	default:
		log.Fatalf("failed to create %s: %v", kind, err)
	}
}
