//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	catalog
	ShopID   string
	ClientID string
}

func createOrderFixture(t *testing.T, admin string, stock int) orderFixture {
	t.Helper()
	f := orderFixture{catalog: createCatalog(t, admin, stock)}
	f.ShopID = MustOK(t, Do(t, http.MethodPost, "/api/v1/shops", map[string]any{"name": Unique("shop")}, admin))
	name := Unique("client")
	f.ClientID = MustOK(t, Do(t, http.MethodPost, "/api/v1/clients", map[string]any{
		"name":    "张",
		"surname": "三",
		"email":   name + "@test.com",
	}, admin))
	return f
}

func (f orderFixture) request(quantity int) map[string]any {
	return map[string]any{
		"client_id": f.ClientID,
		"shop_id":   f.ShopID,
		"lines": []map[string]any{
			{"book_id": json.Number(f.BookID), "quantity": quantity},
		},
	}
}

func bookStock(t *testing.T, id string) int {
	t.Helper()
	var b struct {
		Stock int `json:"stock"`
	}
	resp := Do(t, http.MethodGet, "/api/v1/books/"+id, nil, "")
	require.Equal(t, 0, resp.Code)
	resp.Decode(t, &b)
	return b.Stock
}

func TestOrder_CreateReservesStock(t *testing.T) {
	admin := AdminToken(t)
	f := createOrderFixture(t, admin, 10)
	_, buyer := SignupAndSignin(t, "buyer")
	conn := Subscribe(t, "orders", admin)

	resp := Do(t, http.MethodPost, "/api/v1/orders", f.request(3), buyer)
	orderID := MustOK(t, resp)
	var o struct {
		Total      int64 `json:"total"`
		TotalBooks int   `json:"total_books"`
	}
	resp.Decode(t, &o)
	assert.Equal(t, int64(3*5900), o.Total)
	assert.Equal(t, 3, o.TotalBooks)
	assert.Equal(t, 7, bookStock(t, f.BookID))
	Expect(t, conn, "CREATE")

	t.Run("库存不足", func(t *testing.T) {
		resp := Do(t, http.MethodPost, "/api/v1/orders", f.request(100), buyer)
		assert.Equal(t, http.StatusBadRequest, resp.Status)
		assert.Equal(t, 7, bookStock(t, f.BookID))
	})

	t.Run("我的订单", func(t *testing.T) {
		var me struct {
			OrderIDs []string `json:"order_ids"`
		}
		resp := Do(t, http.MethodGet, "/api/v1/users/me", nil, buyer)
		require.Equal(t, 0, resp.Code)
		resp.Decode(t, &me)
		assert.Contains(t, me.OrderIDs, orderID)
	})

	t.Run("其他用户无权访问", func(t *testing.T) {
		_, other := SignupAndSignin(t, "other")
		resp := Do(t, http.MethodGet, "/api/v1/orders/"+orderID, nil, other)
		assert.Equal(t, http.StatusForbidden, resp.Status)
	})

	t.Run("删除订单归还库存", func(t *testing.T) {
		resp := Do(t, http.MethodDelete, "/api/v1/orders/"+orderID, nil, admin)
		assert.Equal(t, http.StatusNoContent, resp.Status)
		assert.Equal(t, 10, bookStock(t, f.BookID))
		Expect(t, conn, "DELETE")
	})
}

// TestOrder_ConcurrentNoOversell 10本库存、20个并发请求，恰好10个成功
func TestOrder_ConcurrentNoOversell(t *testing.T) {
	admin := AdminToken(t)
	f := createOrderFixture(t, admin, 10)
	_, buyer := SignupAndSignin(t, "rush")

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		failed  int
	)
	const concurrency = 20
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := Do(t, http.MethodPost, "/api/v1/orders", f.request(1), buyer)
			mu.Lock()
			defer mu.Unlock()
			if resp.Code == 0 {
				success++
			} else {
				failed++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, success)
	assert.Equal(t, 10, failed)
	assert.Equal(t, 0, bookStock(t, f.BookID))
}
