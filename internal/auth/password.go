package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/hugh/go-portal/pkg/config"
	"golang.org/x/crypto/argon2"
)

var (
	ErrMalformedHash = errors.New("malformed password hash")
	ErrInvalidParams = errors.New("invalid argon2 parameters")
)

// Params are the argon2id cost settings. They are embedded in every digest,
// so changing them only affects newly hashed passwords.
type Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

var DefaultParams = Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// Upper bounds accepted when decoding a stored digest. NewHasher refuses
// params outside them, since it could never verify its own digests.
const (
	maxMemory     = config.Argon2MaxMemoryKB
	maxIterations = config.Argon2MaxIterations
	maxKeyLength  = 128
	maxSaltLength = 64
)

// Hasher produces and checks self-describing argon2id digests of the form
// $argon2id$v=19$m=65536,t=3,p=2$<salt>$<hash>.
type Hasher struct {
	params Params
	dummy  string
}

// NewHasher fills zero fields of p from DefaultParams and precomputes the
// digest used by VerifyDummy. Params the decoder would reject fail with
// ErrInvalidParams.
func NewHasher(p Params) (*Hasher, error) {
	if p.Memory == 0 {
		p.Memory = DefaultParams.Memory
	}
	if p.Iterations == 0 {
		p.Iterations = DefaultParams.Iterations
	}
	if p.Parallelism == 0 {
		p.Parallelism = DefaultParams.Parallelism
	}
	if p.SaltLength == 0 {
		p.SaltLength = DefaultParams.SaltLength
	}
	if p.KeyLength == 0 {
		p.KeyLength = DefaultParams.KeyLength
	}

	if err := checkParams(p); err != nil {
		return nil, err
	}

	h := &Hasher{params: p}

	const dummyPassword = "not-a-real-password"
	dummy, err := h.Hash(dummyPassword)
	if err != nil {
		return nil, err
	}
	if _, _, _, err := decodeHash(dummy); err != nil {
		return nil, fmt.Errorf("hasher self-check: %w", err)
	}
	if !checkPassword(dummyPassword, dummy) {
		return nil, fmt.Errorf("hasher self-check: %w", ErrMalformedHash)
	}
	h.dummy = dummy

	return h, nil
}

func checkParams(p Params) error {
	switch {
	case p.Memory > maxMemory:
		return fmt.Errorf("%w: memory %d KiB exceeds %d", ErrInvalidParams, p.Memory, maxMemory)
	case p.Iterations > maxIterations:
		return fmt.Errorf("%w: %d iterations exceeds %d", ErrInvalidParams, p.Iterations, maxIterations)
	case p.SaltLength > maxSaltLength:
		return fmt.Errorf("%w: salt length %d exceeds %d", ErrInvalidParams, p.SaltLength, maxSaltLength)
	case p.KeyLength > maxKeyLength:
		return fmt.Errorf("%w: key length %d exceeds %d", ErrInvalidParams, p.KeyLength, maxKeyLength)
	}
	return nil
}

func (h *Hasher) Params() Params {
	return h.params
}

func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory, h.params.Iterations, h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches digest, using the parameters and
// salt embedded in the digest.
func (h *Hasher) Verify(password, digest string) bool {
	return checkPassword(password, digest)
}

// VerifyDummy spends the same work as Verify against a throwaway digest. Call
// it when no record exists so that unknown identities take as long as wrong
// passwords.
func (h *Hasher) VerifyDummy(password string) {
	_ = checkPassword(password, h.dummy)
}

func checkPassword(password, digest string) bool {
	p, salt, want, err := decodeHash(digest)
	if err != nil {
		return false
	}

	got := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func decodeHash(digest string) (Params, []byte, []byte, error) {
	var p Params

	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, ErrMalformedHash
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return p, nil, nil, ErrMalformedHash
	}
	if p.Memory == 0 || p.Memory > maxMemory || p.Iterations == 0 || p.Iterations > maxIterations || p.Parallelism == 0 {
		return p, nil, nil, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 || len(salt) > maxSaltLength {
		return p, nil, nil, ErrMalformedHash
	}
	p.SaltLength = uint32(len(salt))

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 || len(key) > maxKeyLength {
		return p, nil, nil, ErrMalformedHash
	}
	p.KeyLength = uint32(len(key))

	return p, salt, key, nil
}
