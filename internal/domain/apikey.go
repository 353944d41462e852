package domain

import (
	"errors"
	"time"
)

// APIKey represents a hashed API credential bound to one user identity.
type APIKey struct {
	ID        string
	UserID    string
	Name      string
	KeyHash   string
	CreatedAt time.Time
	RevokedAt *time.Time
}

// IsRevoked reports whether the key has been revoked.
func (k *APIKey) IsRevoked() bool {
	return k.RevokedAt != nil
}

// ValidateAPIKey checks that a key record is complete enough to persist.
func ValidateAPIKey(k *APIKey) error {
	switch {
	case k == nil:
		return errors.New("api key cannot be nil")
	case k.ID == "":
		return errors.New("api key ID is required")
	case k.UserID == "":
		return errors.New("api key user ID is required")
	case k.KeyHash == "":
		return errors.New("api key hash is required")
	}
	return nil
}
