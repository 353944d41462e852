package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/cloo-solutions/docchat/internal/domain"
)

const (
	apiKeyPrefix = "dcc_"
	tokenHexLen  = 64
)

type APIKeyRepository interface {
	Create(ctx context.Context, key *domain.APIKey) error
	GetByID(ctx context.Context, id string) (*domain.APIKey, error)
	GetByHash(ctx context.Context, hash string) (*domain.APIKey, error)
	GetByUserID(ctx context.Context, userID string) ([]*domain.APIKey, error)
	Revoke(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// AuthService issues and validates API keys. Only the SHA-256 hash of a
// token is stored; the plaintext is shown once at creation.
type AuthService struct {
	keyRepo APIKeyRepository
	uuidGen UUIDGenerator
}

func NewAuthService(keyRepo APIKeyRepository, uuidGen UUIDGenerator) *AuthService {
	return &AuthService{keyRepo: keyRepo, uuidGen: uuidGen}
}

// newKeyRecord validates inputs and assembles the stored record for a token.
func (s *AuthService) newKeyRecord(userID, name, token string) (*domain.APIKey, error) {
	if userID == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "user ID is required")
	}
	if name == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "API key name is required")
	}

	key := &domain.APIKey{
		ID:        s.uuidGen.NewString(),
		UserID:    userID,
		Name:      name,
		KeyHash:   hashToken(token),
		CreatedAt: time.Now().UTC(),
	}
	if err := domain.ValidateAPIKey(key); err != nil {
		return nil, err
	}
	return key, nil
}

// CreateAPIKey mints a new token for the user and returns the plaintext.
func (s *AuthService) CreateAPIKey(ctx context.Context, userID, name string) (string, error) {
	token, err := generateAPIToken()
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to generate API key", err)
	}

	key, err := s.newKeyRecord(userID, name, token)
	if err != nil {
		return "", err
	}
	if err := s.keyRepo.Create(ctx, key); err != nil {
		return "", err
	}
	return token, nil
}

// CreateAPIKeyWithToken registers a caller-supplied token. Used to bootstrap
// a deployment with a known key from configuration.
func (s *AuthService) CreateAPIKeyWithToken(ctx context.Context, userID, name, token string) error {
	if !IsValidAPIToken(token) {
		return domain.NewDomainError(domain.ErrCodeValidation, "invalid API key format (expected dcc_<64 hex chars>)")
	}

	key, err := s.newKeyRecord(userID, name, token)
	if err != nil {
		return err
	}
	return s.keyRepo.Create(ctx, key)
}

// GetAPIKeyByHash looks up the stored record for a plaintext token. Used by
// bootstrap to skip re-creating a key that already exists.
func (s *AuthService) GetAPIKeyByHash(ctx context.Context, token string) (*domain.APIKey, error) {
	return s.keyRepo.GetByHash(ctx, hashToken(token))
}

// ValidateAPIKey resolves a presented token to its owning user ID. Malformed
// and unknown tokens are indistinguishable to the caller.
func (s *AuthService) ValidateAPIKey(ctx context.Context, token string) (string, error) {
	if !IsValidAPIToken(token) {
		return "", domain.ErrInvalidAPIKey
	}

	key, err := s.keyRepo.GetByHash(ctx, hashToken(token))
	if errors.Is(err, domain.ErrAPIKeyNotFound) {
		return "", domain.ErrInvalidAPIKey
	}
	if err != nil {
		return "", err
	}
	if key.IsRevoked() {
		return "", domain.ErrAPIKeyRevoked
	}
	return key.UserID, nil
}

func (s *AuthService) RevokeAPIKey(ctx context.Context, keyID string) error {
	if keyID == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "API key ID is required")
	}
	return s.keyRepo.Revoke(ctx, keyID)
}

func (s *AuthService) ListAPIKeys(ctx context.Context, userID string) ([]*domain.APIKey, error) {
	if userID == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "user ID is required")
	}
	return s.keyRepo.GetByUserID(ctx, userID)
}

func generateAPIToken() (string, error) {
	raw := make([]byte, tokenHexLen/2)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return apiKeyPrefix + hex.EncodeToString(raw), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// IsValidAPIToken reports whether token is dcc_ followed by 64 hex chars.
func IsValidAPIToken(token string) bool {
	rest, ok := strings.CutPrefix(token, apiKeyPrefix)
	if !ok || len(rest) != tokenHexLen {
		return false
	}
	_, err := hex.DecodeString(rest)
	return err == nil
}
