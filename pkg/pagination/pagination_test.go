package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-5))
	assert.Equal(t, 40, NormalizeLimit(40))
	assert.Equal(t, MaxLimit, NormalizeLimit(5000))
	assert.Equal(t, 26, LimitWithBuffer(25))
}

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{
		Timestamp: time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC),
		ID:        uuid.New(),
	}

	out, err := ParseCursor(EncodeCursor(in))
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.True(t, in.Timestamp.Equal(out.Timestamp))
	assert.Equal(t, in.ID, out.ID)
}

func TestParseCursorEmpty(t *testing.T) {
	cursor, err := ParseCursor("  ")
	require.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	_, err := ParseCursor("not-base64!!")
	assert.Error(t, err)

	_, err = ParseCursor("bm8gcGlwZXM")
	assert.Error(t, err)
}
