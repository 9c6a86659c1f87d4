package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/hugh/go-portal/internal/metrics"
	"github.com/hugh/go-portal/internal/store"
	"github.com/hugh/go-portal/internal/store/models"
)

var (
	ErrNotFound           = errors.New("identity not found")
	ErrIdentityExists     = errors.New("identity already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidIdentity    = errors.New("invalid identity")
)

type Service struct {
	store  *store.Store
	hasher *Hasher
	logger *slog.Logger
}

func NewService(st *store.Store, hasher *Hasher, logger *slog.Logger) *Service {
	return &Service{store: st, hasher: hasher, logger: logger}
}

type RegisterUserInput struct {
	Name     string
	Surname  string
	Username string
	Email    string
	Password string
}

type RegisterOrgInput struct {
	Name     string
	Address  string
	Phone    string
	Email    string
	Orgname  string
	Password string
}

// RegisterUser creates a user. Known duplicates are refused before any
// hashing work; Put still decides races between concurrent registrations.
func (s *Service) RegisterUser(ctx context.Context, input RegisterUserInput) (*models.User, error) {
	if err := s.ensureFree(ctx, KindUser, s.store.Users.Exists, input.Username); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:           strings.TrimSpace(input.Name),
		Surname:        strings.TrimSpace(input.Surname),
		Username:       strings.TrimSpace(input.Username),
		Email:          strings.TrimSpace(input.Email),
		HashedPassword: hash,
	}

	err = s.store.Users.Put(ctx, user)
	recordRegistration(KindUser, err)
	if err != nil {
		return nil, mapPutError(err)
	}

	s.logger.Info("user registered", "username", store.NormalizeKey(user.Username))
	return user, nil
}

func (s *Service) RegisterOrganization(ctx context.Context, input RegisterOrgInput) (*models.Organization, error) {
	if err := s.ensureFree(ctx, KindOrganization, s.store.Organizations.Exists, input.Orgname); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	org := &models.Organization{
		Name:           strings.TrimSpace(input.Name),
		Address:        strings.TrimSpace(input.Address),
		Phone:          strings.TrimSpace(input.Phone),
		Email:          strings.TrimSpace(input.Email),
		Orgname:        strings.TrimSpace(input.Orgname),
		HashedPassword: hash,
	}

	err = s.store.Organizations.Put(ctx, org)
	recordRegistration(KindOrganization, err)
	if err != nil {
		return nil, mapPutError(err)
	}

	s.logger.Info("organization registered", "orgname", store.NormalizeKey(org.Orgname))
	return org, nil
}

func (s *Service) ensureFree(ctx context.Context, kind Kind, exists func(context.Context, string) (bool, error), identity string) error {
	taken, err := exists(ctx, identity)
	if err != nil {
		return err
	}
	if taken {
		recordRegistration(kind, store.ErrAlreadyExists)
		return ErrIdentityExists
	}
	return nil
}

// LoginUser checks a username/password pair. Unknown users and wrong
// passwords both yield ErrInvalidCredentials after the same hashing work.
func (s *Service) LoginUser(ctx context.Context, username, password string) (*models.User, error) {
	user, found, err := s.store.Users.Get(ctx, username)
	if err != nil {
		recordLogin(KindUser, err)
		return nil, err
	}

	var digest string
	if found {
		digest = user.HashedPassword
	}
	if err := s.checkPassword(found, password, digest); err != nil {
		recordLogin(KindUser, err)
		return nil, err
	}

	recordLogin(KindUser, nil)
	return user, nil
}

func (s *Service) LoginOrganization(ctx context.Context, orgname, password string) (*models.Organization, error) {
	org, found, err := s.store.Organizations.Get(ctx, orgname)
	if err != nil {
		recordLogin(KindOrganization, err)
		return nil, err
	}

	var digest string
	if found {
		digest = org.HashedPassword
	}
	if err := s.checkPassword(found, password, digest); err != nil {
		recordLogin(KindOrganization, err)
		return nil, err
	}

	recordLogin(KindOrganization, nil)
	return org, nil
}

func (s *Service) checkPassword(found bool, password, digest string) error {
	if !found {
		s.hasher.VerifyDummy(password)
		return ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, digest) {
		return ErrInvalidCredentials
	}
	return nil
}

func (s *Service) CurrentUser(ctx context.Context, key string) (*models.User, error) {
	user, found, err := s.store.Users.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *Service) CurrentOrganization(ctx context.Context, key string) (*models.Organization, error) {
	org, found, err := s.store.Organizations.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return org, nil
}

func mapPutError(err error) error {
	switch {
	case errors.Is(err, store.ErrAlreadyExists):
		return ErrIdentityExists
	case errors.Is(err, store.ErrInvalidKey):
		return ErrInvalidIdentity
	default:
		return err
	}
}

func recordRegistration(kind Kind, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, store.ErrAlreadyExists):
		result = "exists"
	case errors.Is(err, store.ErrInvalidKey):
		result = "invalid"
	default:
		result = "error"
	}
	metrics.Registrations.WithLabelValues(string(kind), result).Inc()
}

func recordLogin(kind Kind, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidCredentials):
		result = "invalid_credentials"
	default:
		result = "error"
	}
	metrics.LoginAttempts.WithLabelValues(string(kind), result).Inc()
}
