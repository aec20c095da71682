package order

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
)

func TestNormalizeLines(t *testing.T) {
	lines, err := NormalizeLines([]LineRequest{{BookID: 1, Quantity: 2}, {BookID: 2, Quantity: 1}, {BookID: 1, Quantity: 3}})
	require.NoError(t, err)
	assert.Equal(t, []LineRequest{{BookID: 1, Quantity: 5}, {BookID: 2, Quantity: 1}}, lines)

	_, err = NormalizeLines(nil)
	assert.ErrorIs(t, err, ErrEmptyLines)

	_, err = NormalizeLines([]LineRequest{{BookID: 1, Quantity: 0}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestNewOrder_Totals(t *testing.T) {
	o := NewOrder("ORD1", "u", "c", "s", []Line{
		{BookID: 1, Quantity: 2, Price: 1500},
		{BookID: 2, Quantity: 1, Price: 999},
	})
	assert.Equal(t, int64(3999), o.Total)
	assert.Equal(t, 3, o.TotalBooks)
	assert.Equal(t, int64(3000), o.Lines[0].Total)
}

func TestMarkDeleted_Idempotent(t *testing.T) {
	o := NewOrder("ORD1", "u", "c", "s", nil)
	assert.True(t, o.MarkDeleted())
	assert.False(t, o.MarkDeleted())
}

func TestStockDelta(t *testing.T) {
	before := []Line{{BookID: 1, Quantity: 2}, {BookID: 2, Quantity: 1}}
	after := []Line{{BookID: 1, Quantity: 5}, {BookID: 3, Quantity: 1}}

	assert.Equal(t, map[uint]int{1: -3, 2: 1, 3: -1}, StockDelta(before, after))
	assert.Empty(t, StockDelta(before, before))
}

func TestParseID(t *testing.T) {
	id, err := ParseID("65a1b2c3d4e5f60718293a4b")
	require.NoError(t, err)
	assert.Equal(t, "65a1b2c3d4e5f60718293a4b", id)

	_, err = ParseID("42")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidIdentifier))
}

func TestGenerateOrderNo(t *testing.T) {
	assert.Regexp(t, `^ORD\d{16}$`, GenerateOrderNo())
}
