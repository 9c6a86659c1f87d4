package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hugh/go-portal/internal/metrics"
)

var (
	ErrAlreadyExists = errors.New("record already exists")
	ErrCorrupt       = errors.New("stored record is corrupt")
	ErrInvalidKey    = errors.New("invalid identity key")
)

const (
	maxKeyLength = 64
	fileExt      = ".json"
)

// Entity is a record stored under a single identity field.
type Entity interface {
	Identity() string
}

type preparer interface {
	PrepareCreate(now time.Time)
}

// NormalizeKey lowercases and trims an identity so that "Alice" and
// "  alice " address the same record.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidateKey reports whether a normalized key can be used as a file name
// inside a collection directory.
func ValidateKey(key string) error {
	switch {
	case key == "":
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	case len(key) > maxKeyLength:
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidKey, maxKeyLength)
	case key == "." || key == "..":
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	case strings.ContainsAny(key, "/\\\x00"):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidKey, key)
	case strings.HasPrefix(key, "."):
		// temp files live next to records and start with a dot
		return fmt.Errorf("%w: %q starts with a dot", ErrInvalidKey, key)
	}
	return nil
}

// Collection persists one JSON document per record under dir/<key>.json.
// Records are immutable once written.
type Collection[T Entity] struct {
	name      string
	dir       string
	newRecord func() T
	cache     *lru.Cache[string, T]
	logger    *slog.Logger
	now       func() time.Time
}

func NewCollection[T Entity](name, dir string, cacheSize int, newRecord func() T, logger *slog.Logger) (*Collection[T], error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating %s directory: %w", name, err)
	}

	c := &Collection[T]{
		name:      name,
		dir:       dir,
		newRecord: newRecord,
		logger:    logger.With("collection", name),
		now:       time.Now,
	}

	if cacheSize > 0 {
		cache, err := lru.New[string, T](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating %s cache: %w", name, err)
		}
		c.cache = cache
	}

	return c, nil
}

func (c *Collection[T]) Name() string {
	return c.name
}

// Path returns the file a key is stored at, without checking it exists.
func (c *Collection[T]) Path(key string) string {
	return filepath.Join(c.dir, NormalizeKey(key)+fileExt)
}

// Put writes rec under its normalized identity. It fails with
// ErrAlreadyExists when a record with that key is already present, including
// when a concurrent Put for the same key wins the race.
func (c *Collection[T]) Put(ctx context.Context, rec T) (err error) {
	defer func() { c.observe("put", err) }()

	if err := ctx.Err(); err != nil {
		return err
	}

	key := NormalizeKey(rec.Identity())
	if err := ValidateKey(key); err != nil {
		return err
	}
	target := c.Path(key)

	if _, err := os.Stat(target); err == nil {
		return fmt.Errorf("%s %q: %w", c.name, key, ErrAlreadyExists)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking %s %q: %w", c.name, key, err)
	}

	if p, ok := any(rec).(preparer); ok {
		p.PrepareCreate(c.now())
	}

	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding %s %q: %w", c.name, key, err)
	}

	tmpName, err := c.writeTemp(key, data)
	if err != nil {
		return err
	}
	defer os.Remove(tmpName)

	// Link fails if target exists, which makes the existence check and the
	// write a single atomic step. The target only ever appears fully written.
	if err := os.Link(tmpName, target); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s %q: %w", c.name, key, ErrAlreadyExists)
		}
		return fmt.Errorf("publishing %s %q: %w", c.name, key, err)
	}

	if c.cache != nil {
		c.cache.Add(key, rec)
	}

	c.logger.Debug("record created", "key", key)
	return nil
}

func (c *Collection[T]) writeTemp(key string, data []byte) (string, error) {
	f, err := os.CreateTemp(c.dir, "."+key+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file for %s %q: %w", c.name, key, err)
	}
	name := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("writing %s %q: %w", c.name, key, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("syncing %s %q: %w", c.name, key, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("closing %s %q: %w", c.name, key, err)
	}

	return name, nil
}

// Get loads the record stored under key. A missing record is reported by
// found=false with a nil error.
func (c *Collection[T]) Get(ctx context.Context, key string) (rec T, found bool, err error) {
	defer func() {
		switch {
		case err != nil:
			c.observe("get", err)
		case !found:
			metrics.StoreOperations.WithLabelValues(c.name, "get", "not_found").Inc()
		default:
			c.observe("get", nil)
		}
	}()

	if err := ctx.Err(); err != nil {
		return rec, false, err
	}

	key = NormalizeKey(key)
	if err := ValidateKey(key); err != nil {
		// nothing can be stored under an invalid key
		return rec, false, nil
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(key); ok {
			metrics.StoreCacheHits.WithLabelValues(c.name).Inc()
			return cached, true, nil
		}
	}

	data, err := os.ReadFile(c.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return rec, false, nil
		}
		return rec, false, fmt.Errorf("reading %s %q: %w", c.name, key, err)
	}

	rec = c.newRecord()
	if err := json.Unmarshal(data, rec); err != nil {
		c.logger.Error("corrupt record", "key", key, "error", err)
		var zero T
		return zero, false, fmt.Errorf("%s %q: %w: %v", c.name, key, ErrCorrupt, err)
	}

	if c.cache != nil {
		c.cache.Add(key, rec)
	}

	return rec, true, nil
}

// Exists reports whether a record is stored under key without decoding it.
func (c *Collection[T]) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	key = NormalizeKey(key)
	if ValidateKey(key) != nil {
		return false, nil
	}
	if c.cache != nil && c.cache.Contains(key) {
		return true, nil
	}

	_, err := os.Stat(c.Path(key))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("checking %s %q: %w", c.name, key, err)
	}
}

func (c *Collection[T]) observe(op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrAlreadyExists):
		result = "exists"
	case errors.Is(err, ErrCorrupt):
		result = "corrupt"
	case errors.Is(err, ErrInvalidKey):
		result = "invalid_key"
	default:
		result = "error"
	}
	metrics.StoreOperations.WithLabelValues(c.name, op, result).Inc()
}
