package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cloo-solutions/docchat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAPIKeyRepository mocks API key persistence
type MockAPIKeyRepository struct {
	mock.Mock
}

func (m *MockAPIKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockAPIKeyRepository) GetByID(ctx context.Context, id string) (*domain.APIKey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) GetByHash(ctx context.Context, hash string) (*domain.APIKey, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.APIKey, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) Revoke(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAPIKeyRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestAuthService_CreateAPIKey(t *testing.T) {
	repo := new(MockAPIKeyRepository)
	svc := NewAuthService(repo, &fixedUUIDGen{ids: []string{"key-1"}})

	var stored *domain.APIKey
	repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.APIKey)
	}).Return(nil)

	token, err := svc.CreateAPIKey(context.Background(), "user-1", "laptop")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "dcc_"))
	assert.True(t, IsValidAPIToken(token))
	require.NotNil(t, stored)
	assert.Equal(t, "user-1", stored.UserID)
	// Only the hash is persisted, never the token itself
	assert.NotContains(t, stored.KeyHash, token)
	assert.Equal(t, hashToken(token), stored.KeyHash)
}

func TestAuthService_CreateAPIKey_Validation(t *testing.T) {
	svc := NewAuthService(new(MockAPIKeyRepository), &fixedUUIDGen{ids: []string{"key-1"}})

	_, err := svc.CreateAPIKey(context.Background(), "", "laptop")
	assert.Error(t, err)

	_, err = svc.CreateAPIKey(context.Background(), "user-1", "")
	assert.Error(t, err)
}

func TestAuthService_ValidateAPIKey(t *testing.T) {
	repo := new(MockAPIKeyRepository)
	svc := NewAuthService(repo, &fixedUUIDGen{ids: []string{"key-1"}})

	token := "dcc_" + strings.Repeat("ab", 32)
	repo.On("GetByHash", mock.Anything, hashToken(token)).Return(&domain.APIKey{
		ID:     "key-1",
		UserID: "user-1",
	}, nil)

	userID, err := svc.ValidateAPIKey(context.Background(), token)

	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestAuthService_ValidateAPIKey_BadFormat(t *testing.T) {
	repo := new(MockAPIKeyRepository)
	svc := NewAuthService(repo, &fixedUUIDGen{ids: []string{"key-1"}})

	for _, token := range []string{"", "nope", "dcc_short", "key_" + strings.Repeat("ab", 32)} {
		_, err := svc.ValidateAPIKey(context.Background(), token)
		assert.ErrorIs(t, err, domain.ErrInvalidAPIKey, "token %q", token)
	}
	repo.AssertNotCalled(t, "GetByHash", mock.Anything, mock.Anything)
}

func TestAuthService_ValidateAPIKey_Unknown(t *testing.T) {
	repo := new(MockAPIKeyRepository)
	svc := NewAuthService(repo, &fixedUUIDGen{ids: []string{"key-1"}})

	token := "dcc_" + strings.Repeat("cd", 32)
	repo.On("GetByHash", mock.Anything, mock.Anything).Return(nil, domain.ErrAPIKeyNotFound)

	_, err := svc.ValidateAPIKey(context.Background(), token)

	assert.ErrorIs(t, err, domain.ErrInvalidAPIKey)
}

func TestAuthService_ValidateAPIKey_Revoked(t *testing.T) {
	repo := new(MockAPIKeyRepository)
	svc := NewAuthService(repo, &fixedUUIDGen{ids: []string{"key-1"}})

	token := "dcc_" + strings.Repeat("ef", 32)
	revokedAt := time.Now().UTC()
	repo.On("GetByHash", mock.Anything, mock.Anything).Return(&domain.APIKey{
		ID:        "key-1",
		UserID:    "user-1",
		RevokedAt: &revokedAt,
	}, nil)

	_, err := svc.ValidateAPIKey(context.Background(), token)

	assert.ErrorIs(t, err, domain.ErrAPIKeyRevoked)
}

func TestAuthService_CreateAPIKeyWithToken(t *testing.T) {
	repo := new(MockAPIKeyRepository)
	svc := NewAuthService(repo, &fixedUUIDGen{ids: []string{"key-1"}})
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := svc.CreateAPIKeyWithToken(context.Background(), "user-1", "bootstrap", "dcc_"+strings.Repeat("01", 32))
	assert.NoError(t, err)

	err = svc.CreateAPIKeyWithToken(context.Background(), "user-1", "bootstrap", "not-a-token")
	assert.Error(t, err)
}

func TestIsValidAPIToken(t *testing.T) {
	assert.True(t, IsValidAPIToken("dcc_"+strings.Repeat("0f", 32)))
	assert.True(t, IsValidAPIToken("dcc_"+strings.Repeat("AB", 32)))
	assert.False(t, IsValidAPIToken("dcc_"+strings.Repeat("zz", 32)))
	assert.False(t, IsValidAPIToken("dcc_"+strings.Repeat("0f", 31)))
	assert.False(t, IsValidAPIToken(strings.Repeat("0f", 34)))
}
