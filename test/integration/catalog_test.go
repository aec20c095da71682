//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// catalog 一组出版社、分类、图书
type catalog struct {
	PublisherID string
	Category    string
	BookID      string
}

func createCatalog(t *testing.T, admin string, stock int) catalog {
	t.Helper()
	c := catalog{Category: Unique("category")}
	c.PublisherID = MustOK(t, Do(t, http.MethodPost, "/api/v1/publishers", map[string]any{"name": Unique("publisher")}, admin))
	MustOK(t, Do(t, http.MethodPost, "/api/v1/categories", map[string]any{"name": c.Category}, admin))
	c.BookID = MustOK(t, Do(t, http.MethodPost, "/api/v1/books", map[string]any{
		"name":         Unique("book"),
		"author":       "测试作者",
		"price":        5900,
		"stock":        stock,
		"publisher_id": json.Number(c.PublisherID),
		"category":     c.Category,
	}, admin))
	return c
}

func TestCatalog_PublicReads(t *testing.T) {
	for _, path := range []string{"/api/v1/books", "/api/v1/publishers", "/api/v1/categories"} {
		resp := Do(t, http.MethodGet, path+"?page=1&page_size=5", nil, "")
		assert.Equal(t, http.StatusOK, resp.Status, path)
		assert.Equal(t, 0, resp.Code, path)
	}
}

func TestCatalog_MutationsRequireAdmin(t *testing.T) {
	_, token := SignupAndSignin(t, "reader")

	resp := Do(t, http.MethodPost, "/api/v1/publishers", map[string]any{"name": Unique("p")}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Status)

	resp = Do(t, http.MethodPost, "/api/v1/publishers", map[string]any{"name": Unique("p")}, token)
	assert.Equal(t, http.StatusForbidden, resp.Status)
}

func TestCatalog_BookLifecycleIsPushed(t *testing.T) {
	admin := AdminToken(t)
	_, reader := SignupAndSignin(t, "watcher")
	conn := Subscribe(t, "books", reader)

	c := createCatalog(t, admin, 10)

	created := Expect(t, conn, "CREATE")
	assert.Equal(t, "BOOKS", created.Entity)
	assert.Contains(t, string(created.Data), `"id":`+c.BookID)

	t.Run("部分更新推送UPDATE", func(t *testing.T) {
		MustOK(t, Do(t, http.MethodPatch, "/api/v1/books/"+c.BookID, map[string]any{"price": 6900}, admin))
		msg := Expect(t, conn, "UPDATE")
		assert.Contains(t, string(msg.Data), `"price":6900`)
	})

	t.Run("不存在的出版社", func(t *testing.T) {
		resp := Do(t, http.MethodPatch, "/api/v1/books/"+c.BookID, map[string]any{"publisher_id": 999999999}, admin)
		assert.Equal(t, http.StatusNotFound, resp.Status)
	})

	t.Run("删除即下架", func(t *testing.T) {
		resp := Do(t, http.MethodDelete, "/api/v1/books/"+c.BookID, nil, admin)
		assert.Equal(t, http.StatusNoContent, resp.Status)
		Expect(t, conn, "DELETE")

		var book struct {
			Active bool `json:"active"`
		}
		got := Do(t, http.MethodGet, "/api/v1/books/"+c.BookID, nil, "")
		require.Equal(t, 0, got.Code)
		got.Decode(t, &book)
		assert.False(t, book.Active)
	})
}

func TestShop_Associations(t *testing.T) {
	admin := AdminToken(t)
	c := createCatalog(t, admin, 5)
	conn := Subscribe(t, "shops", admin)

	shopID := MustOK(t, Do(t, http.MethodPost, "/api/v1/shops", map[string]any{"name": Unique("shop")}, admin))
	Expect(t, conn, "CREATE")

	MustOK(t, Do(t, http.MethodPost, "/api/v1/shops/"+shopID+"/books/"+c.BookID, nil, admin))
	msg := Expect(t, conn, "UPDATE")
	assert.Contains(t, string(msg.Data), c.BookID)

	// 重复关联不报错
	MustOK(t, Do(t, http.MethodPost, "/api/v1/shops/"+shopID+"/books/"+c.BookID, nil, admin))

	resp := Do(t, http.MethodDelete, "/api/v1/shops/"+shopID+"/books/"+c.BookID, nil, admin)
	assert.Equal(t, 0, resp.Code)
	Expect(t, conn, "UPDATE")
}
