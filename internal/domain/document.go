package domain

import (
	"fmt"
	"time"
)

// Document represents one ingested PDF. Its ID doubles as the vector index
// namespace, so chunks of different documents can never cross-match.
// Documents are immutable after ingestion; a failed ingestion deletes the
// record again.
type Document struct {
	ID        string
	UserID    string
	FileName  string
	FileURL   string
	CreatedAt time.Time
}

// ValidateDocument validates a Document instance
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}
	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}
	if d.UserID == "" {
		return ErrMissingUserID
	}
	if d.FileName == "" {
		return ErrMissingFileName
	}
	if d.FileURL == "" {
		return ErrMissingFileURL
	}
	return nil
}
