// Package pagination implements opaque keyset cursors for list endpoints.
package pagination

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"
)

// ErrInvalidCursor is returned for tokens that were not produced by
// EncodeCursor.
var ErrInvalidCursor = errors.New("invalid cursor format")

// Cursor is the decoded position of the last item of the previous page.
type Cursor struct {
	LastID    string
	Timestamp time.Time
}

// PageResult is one page of a keyset-paginated listing.
type PageResult[T any] struct {
	Items   []T    `json:"items"`
	Cursor  string `json:"cursor,omitempty"`
	HasMore bool   `json:"has_more"`
}

// EncodeCursor packs the last item's ID and timestamp into an opaque,
// URL-safe token. An empty ID yields an empty token.
func EncodeCursor(lastID string, ts time.Time) string {
	if lastID == "" {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(
		[]byte(lastID + "|" + ts.UTC().Format(time.RFC3339Nano)))
}

// DecodeCursor reverses EncodeCursor. An empty token decodes to a nil cursor,
// meaning "first page".
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	id, tsPart, found := strings.Cut(string(raw), "|")
	if !found || id == "" {
		return nil, ErrInvalidCursor
	}
	ts, err := time.Parse(time.RFC3339Nano, tsPart)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	return &Cursor{LastID: id, Timestamp: ts}, nil
}

// CreateNextCursor derives the cursor for the following page. A short page
// means the listing is exhausted and no cursor is produced.
func CreateNextCursor[T any](items []T, limit int, getID func(T) string, getTimestamp func(T) time.Time) string {
	if len(items) < limit || len(items) == 0 {
		return ""
	}
	last := items[len(items)-1]
	return EncodeCursor(getID(last), getTimestamp(last))
}
