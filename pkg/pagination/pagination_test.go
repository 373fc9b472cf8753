package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 1, 18, 10, 30, 0, 0, time.UTC)
	encoded := EncodeCursor(Cursor{CreatedAt: at, ID: 77})

	decoded, err := ParseCursor(encoded)
	require.NoError(t, err)
	require.Equal(t, uint(77), decoded.ID)
	require.True(t, decoded.CreatedAt.Equal(at))
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	got, err := ParseCursor("")
	require.NoError(t, err)
	require.Nil(t, got)

	_, err = ParseCursor("not-base64!!")
	require.Error(t, err)

	_, err = ParseCursor(EncodeCursor(Cursor{CreatedAt: time.Now()}))
	require.Error(t, err, "zero id is never a valid cursor")
}

func TestNormalizeLimit(t *testing.T) {
	require.Equal(t, DefaultLimit, NormalizeLimit(0))
	require.Equal(t, MaxLimit, NormalizeLimit(1000))
	require.Equal(t, 10, NormalizeLimit(10))
	require.Equal(t, 11, LimitWithBuffer(10))
}

func TestTrimProducesNextCursor(t *testing.T) {
	type row struct {
		id uint
		at time.Time
	}
	now := time.Now().UTC()
	rows := []row{{3, now}, {2, now.Add(-time.Minute)}, {1, now.Add(-2 * time.Minute)}}

	page := Trim(rows, 2, func(r row) Cursor { return Cursor{CreatedAt: r.at, ID: r.id} })
	require.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)

	next, err := ParseCursor(page.NextCursor)
	require.NoError(t, err)
	require.Equal(t, uint(2), next.ID)

	last := Trim(rows[:1], 2, func(r row) Cursor { return Cursor{CreatedAt: r.at, ID: r.id} })
	require.Empty(t, last.NextCursor)
	require.Len(t, last.Items, 1)
}
