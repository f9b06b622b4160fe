package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/vovakirdan/wirefeed/internal/common"
	"github.com/vovakirdan/wirefeed/internal/store"
)

// dummyCredential is verified against when there is no usable stored credential,
// so every failed login pays for one key derivation.
var dummyCredential = sync.OnceValue(func() Credential {
	cred, err := HashPassword("wirefeed-dummy-password")
	if err != nil {
		return Credential{Salt: make([]byte, SaltLength), Key: make([]byte, KeyLength)}
	}
	return cred
})

// verifyPassword is swapped in tests to observe key derivations.
var verifyPassword = VerifyPassword

// Service provides registration and authentication.
type Service struct {
	store store.UserStore
	log   *zerolog.Logger
}

// NewService creates a new authentication service.
func NewService(userStore store.UserStore, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{
		store: userStore,
		log:   logger,
	}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register hashes the password and creates a new user.
// The returned error matches common.ErrInvalidInput, store.ErrDuplicateUser or store.ErrStorage.
func (s *Service) Register(ctx context.Context, email, password string) (*store.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, common.InvalidInput("email cannot be empty")
	}
	if strings.TrimSpace(password) == "" {
		return nil, common.InvalidInput("password cannot be empty")
	}

	cred, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.store.CreateUser(ctx, email, cred.String())
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", user.ID).Str("email", user.Email).Msg("user registered")
	return user, nil
}

// Authenticate returns the user matching the credentials.
// Every denial is reported as common.ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*store.User, error) {
	email = NormalizeEmail(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, common.ErrInvalidCredentials
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = verifyPassword(password, dummyCredential())
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	cred, err := ParseCredential(user.PasswordHash)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", user.ID).Msg("stored credential is corrupt")
		_ = verifyPassword(password, dummyCredential())
		return nil, common.ErrInvalidCredentials
	}

	if !verifyPassword(password, cred) {
		return nil, common.ErrInvalidCredentials
	}

	s.log.Debug().Int64("user_id", user.ID).Msg("user authenticated")
	return user, nil
}

// Exists reports whether a user with the email is registered.
// Storage failures are logged and reported as false.
func (s *Service) Exists(ctx context.Context, email string) bool {
	email = NormalizeEmail(email)
	if email == "" {
		return false
	}

	exists, err := s.store.UserExistsByEmail(ctx, email)
	if err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("failed to check user existence")
		return false
	}
	return exists
}

// FindByID retrieves a user by ID.
func (s *Service) FindByID(ctx context.Context, id int64) (*store.User, error) {
	return s.store.GetUserByID(ctx, id)
}
