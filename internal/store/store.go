// Package store keeps users and organizations as one JSON document per
// record on the local filesystem, each kind in its own directory.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/hugh/go-portal/internal/store/models"
	"github.com/hugh/go-portal/pkg/config"
)

type Store struct {
	root          string
	Users         *Collection[*models.User]
	Organizations *Collection[*models.Organization]
}

func Open(cfg *config.StorageConfig, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(cfg.Root, 0o750); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}

	users, err := NewCollection("users", cfg.UsersPath(), cfg.CacheSize,
		func() *models.User { return &models.User{} }, log)
	if err != nil {
		return nil, err
	}

	orgs, err := NewCollection("organizations", cfg.OrgsPath(), cfg.CacheSize,
		func() *models.Organization { return &models.Organization{} }, log)
	if err != nil {
		return nil, err
	}

	log.Info("opened entity store",
		"root", cfg.Root,
		"users", cfg.UsersPath(),
		"organizations", cfg.OrgsPath(),
		"cache_size", cfg.CacheSize,
	)

	return &Store{
		root:          cfg.Root,
		Users:         users,
		Organizations: orgs,
	}, nil
}

// Ping checks that the storage root is still a writable directory.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("stat storage root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage root %s is not a directory", s.root)
	}

	f, err := os.CreateTemp(s.root, ".ping-*")
	if err != nil {
		return fmt.Errorf("storage root not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
