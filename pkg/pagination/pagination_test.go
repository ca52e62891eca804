package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlice(t *testing.T) {
	all := []int{1, 2, 3, 4, 5}

	page := Slice(all, &PaginationParams{Page: 2, PerPage: 2})
	assert.Equal(t, []int{3, 4}, page.Items)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNext)
	assert.True(t, page.Pagination.HasPrev)

	last := Slice(all, &PaginationParams{Page: 3, PerPage: 2})
	assert.Equal(t, []int{5}, last.Items)
	assert.False(t, last.Pagination.HasNext)

	past := Slice(all, &PaginationParams{Page: 9, PerPage: 2})
	assert.Empty(t, past.Items)
	assert.Equal(t, int64(5), past.Pagination.Total)
}

func TestPaginationParams_Validate(t *testing.T) {
	p := &PaginationParams{Page: -1, PerPage: 500}
	p.Validate()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.PerPage)

	p = &PaginationParams{}
	p.Validate()
	assert.Equal(t, defaultPerPage, p.PerPage)
}

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	params := &CursorParams{Cursor: EncodeCursor("abc", at)}

	cursor, err := params.DecodeCursor()
	require.NoError(t, err)
	assert.Equal(t, "abc", cursor.ID)
	assert.True(t, cursor.CreatedAt.Equal(at))

	_, err = (&CursorParams{Cursor: "%%%"}).DecodeCursor()
	assert.Error(t, err)
}

func TestNewCursorPagination(t *testing.T) {
	type row struct {
		id string
		at time.Time
	}
	now := time.Now()
	rows := []row{{"a", now}, {"b", now}, {"c", now}}
	params := &CursorParams{Limit: 2}

	meta, kept := NewCursorPagination(rows, params,
		func(r row) string { return r.id },
		func(r row) time.Time { return r.at })

	assert.Len(t, kept, 2)
	assert.True(t, meta.HasNext)
	assert.False(t, meta.HasPrev)
	require.NotNil(t, meta.NextCursor)
}
