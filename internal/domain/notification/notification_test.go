package notification

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookView struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func TestJSONEncoder_WireForm(t *testing.T) {
	n := New(Books, Create, bookView{ID: 7, Title: "Go"})

	b, err := JSONEncoder{}.Encode(n)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "BOOKS", got["entity"])
	assert.Equal(t, "CREATE", got["type"])
	assert.Equal(t, map[string]any{"id": float64(7), "title": "Go"}, got["data"])

	_, err = time.Parse(time.RFC3339Nano, got["createdAt"].(string))
	assert.NoError(t, err)
}

func TestJSONEncoder_EncodeError(t *testing.T) {
	n := New(Shops, Update, map[string]any{"bad": make(chan int)})

	_, err := JSONEncoder{}.Encode(n)
	require.Error(t, err)

	var encErr *EncodeError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, Shops, encErr.Entity)
	assert.Equal(t, Update, encErr.Type)
}

func TestParseEntity(t *testing.T) {
	e, ok := ParseEntity("books")
	assert.True(t, ok)
	assert.Equal(t, Books, e)

	_, ok = ParseEntity("authors")
	assert.False(t, ok)
}

func TestNotification_IsImmutableValue(t *testing.T) {
	n := New(Clients, Delete, bookView{ID: 1})
	copied := n
	copied.Data.Title = "changed"

	assert.Empty(t, n.Data.Title)
	assert.Equal(t, Clients, n.Topic())
	assert.Equal(t, Delete, n.Kind())
}
