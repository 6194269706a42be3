package service

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tejasgroup/expenseflow/internal/domain/entity"
	"github.com/tejasgroup/expenseflow/internal/repository"
)

// IdentityStore is the directory persistence surface the service needs
type IdentityStore interface {
	Create(identity *entity.Identity) error
	GetByUsername(username string) (*entity.Identity, error)
	ListByRole(role entity.Role) ([]*entity.Identity, error)
	CountByRole(role entity.Role) (int, error)
	SetActive(username string, active bool) error
	UpdateSecretHash(username, secretHash string) error
}

// CreateIdentityInput carries the fields of a new directory account
type CreateIdentityInput struct {
	Username    string
	Secret      string
	DisplayName string
	Role        entity.Role
	CreatedBy   string
}

// IdentityService resolves credentials and manages directory accounts.
// Secrets are stored as bcrypt hashes; plaintext is never persisted.
type IdentityService struct {
	identities IdentityStore
	logger     *zap.Logger
}

// NewIdentityService creates a new identity service
func NewIdentityService(identities IdentityStore, logger *zap.Logger) *IdentityService {
	return &IdentityService{
		identities: identities,
		logger:     logger,
	}
}

// Authenticate resolves a credential to an identity. Unknown username,
// wrong secret and inactive account all fail the same way so the response
// does not leak which field was wrong.
func (s *IdentityService) Authenticate(username, secret string) (*entity.Identity, error) {
	identity, err := s.identities.GetByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAuthFailed
		}
		return nil, err
	}
	if !identity.Active {
		return nil, ErrAuthFailed
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.SecretHash), []byte(secret)); err != nil {
		return nil, ErrAuthFailed
	}
	return identity, nil
}

// GetByUsername looks up one directory account
func (s *IdentityService) GetByUsername(username string) (*entity.Identity, error) {
	return s.identities.GetByUsername(username)
}

// Create adds a new directory account with a hashed secret
func (s *IdentityService) Create(input CreateIdentityInput) (*entity.Identity, error) {
	if strings.TrimSpace(input.Username) == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if strings.TrimSpace(input.DisplayName) == "" {
		return nil, fmt.Errorf("%w: display name is required", ErrValidation)
	}
	if len(input.Secret) < 8 {
		return nil, fmt.Errorf("%w: secret must be at least 8 characters", ErrValidation)
	}
	if !input.Role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, input.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash secret: %w", err)
	}

	identity := &entity.Identity{
		Username:    input.Username,
		DisplayName: input.DisplayName,
		Role:        input.Role,
		Active:      true,
		SecretHash:  string(hash),
		CreatedBy:   input.CreatedBy,
	}
	if err := s.identities.Create(identity); err != nil {
		return nil, err
	}

	s.logger.Info("Identity created",
		zap.String("username", identity.Username),
		zap.String("role", identity.Role.String()),
		zap.String("created_by", identity.CreatedBy))
	return identity, nil
}

// ListByRole enumerates active identities holding the role; it populates
// the stage 1 "assign to" choices among other things
func (s *IdentityService) ListByRole(role entity.Role) ([]*entity.Identity, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	return s.identities.ListByRole(role)
}

// SetActive activates or deactivates an account
func (s *IdentityService) SetActive(username string, active bool) error {
	if err := s.identities.SetActive(username, active); err != nil {
		return err
	}
	s.logger.Info("Identity active flag changed",
		zap.String("username", username),
		zap.Bool("active", active))
	return nil
}

// RotateSecret replaces an account's secret
func (s *IdentityService) RotateSecret(username, newSecret string) error {
	if len(newSecret) < 8 {
		return fmt.Errorf("%w: secret must be at least 8 characters", ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newSecret), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash secret: %w", err)
	}
	if err := s.identities.UpdateSecretHash(username, string(hash)); err != nil {
		return err
	}
	s.logger.Info("Identity secret rotated", zap.String("username", username))
	return nil
}

// EnsureDefaultAdmin seeds the bootstrap admin account when the directory
// has no admin yet, so a fresh deployment can be logged into
func (s *IdentityService) EnsureDefaultAdmin(username, secret string) error {
	count, err := s.identities.CountByRole(entity.RoleAdmin)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	_, err = s.Create(CreateIdentityInput{
		Username:    username,
		Secret:      secret,
		DisplayName: "System Administrator",
		Role:        entity.RoleAdmin,
		CreatedBy:   "system",
	})
	if err != nil {
		return fmt.Errorf("failed to seed default admin: %w", err)
	}
	s.logger.Warn("Default admin account seeded; rotate its secret",
		zap.String("username", username))
	return nil
}
