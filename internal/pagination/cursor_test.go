package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeCursor_RoundTrip(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 30, 0, 123456789, time.UTC)

	token := EncodeCursor("doc-42", ts)
	require.NotEmpty(t, token)

	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "doc-42", cursor.LastID)
	assert.True(t, cursor.Timestamp.Equal(ts))
}

func TestEncodeCursor_EmptyID(t *testing.T) {
	assert.Empty(t, EncodeCursor("", time.Now()))
}

func TestDecodeCursor_EmptyMeansFirstPage(t *testing.T) {
	cursor, err := DecodeCursor("")
	assert.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	for _, token := range []string{"!!!not-base64!!!", "bm8tc2VwYXJhdG9y", "aWR8bm90LWEtdGltZQ"} {
		cursor, err := DecodeCursor(token)
		assert.Nil(t, cursor)
		assert.ErrorIs(t, err, ErrInvalidCursor)
	}
}

type item struct {
	id string
	ts time.Time
}

func TestCreateNextCursor(t *testing.T) {
	items := []item{
		{id: "a", ts: time.Now().Add(-2 * time.Hour)},
		{id: "b", ts: time.Now().Add(-1 * time.Hour)},
	}
	getID := func(i item) string { return i.id }
	getTS := func(i item) time.Time { return i.ts }

	// Full page: cursor points at the last item
	token := CreateNextCursor(items, 2, getID, getTS)
	require.NotEmpty(t, token)
	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "b", cursor.LastID)

	// Short page: no more results
	assert.Empty(t, CreateNextCursor(items, 5, getID, getTS))
	assert.Empty(t, CreateNextCursor([]item{}, 5, getID, getTS))
}
