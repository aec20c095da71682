package shared

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
)

func TestParseUintID(t *testing.T) {
	id, err := ParseUintID("42")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	for _, raw := range []string{"", "abc", "-1", "0", "1.5"} {
		_, err := ParseUintID(raw)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidIdentifier), "raw=%q", raw)
	}
}

func TestParseUUID(t *testing.T) {
	id, err := ParseUUID("6F9619FF-8B86-D011-B42D-00C04FC964FF")
	require.NoError(t, err)
	assert.Equal(t, "6f9619ff-8b86-d011-b42d-00c04fc964ff", id)

	_, err = ParseUUID("not-a-uuid")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidIdentifier))
}

func TestPageQuery_Normalize(t *testing.T) {
	q := PageQuery{Page: 0, PageSize: 1000, Direction: "DESC"}.Normalize("id")
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, MaxPageSize, q.PageSize)
	assert.Equal(t, "id", q.SortBy)
	assert.Equal(t, "desc", q.Direction)
	assert.Equal(t, 0, q.Offset())

	q = PageQuery{Page: 3, PageSize: 20, SortBy: "name", Direction: "sideways"}.Normalize("id")
	assert.Equal(t, "asc", q.Direction)
	assert.Equal(t, 40, q.Offset())
}

func TestPageQuery_OrderClause(t *testing.T) {
	cols := map[string]string{"name": "name", "price": "price"}
	q := PageQuery{SortBy: "price", Direction: "desc"}.Normalize("id")
	assert.Equal(t, "price desc", q.OrderClause(cols, "id"))

	q = PageQuery{SortBy: "password; drop table"}.Normalize("id")
	assert.Equal(t, "id asc", q.OrderClause(cols, "id"))
}
