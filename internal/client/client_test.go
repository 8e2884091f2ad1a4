package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/microshop/order-service/internal/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHTTPClient() *http.Client {
	return &http.Client{Timeout: 2 * time.Second}
}

func TestCartClient_GetCart(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/cart/", r.URL.Path)
			assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"total_amount": 59.98,
				"items": [{"product_id": 7, "quantity": 2, "product_name": "Widget", "product_price": 29.99}]
			}`))
		}))
		defer srv.Close()

		c := client.NewCartClient(srv.URL, testHTTPClient())
		cart, err := c.GetCart(context.Background(), "token-123")

		require.NoError(t, err)
		require.NotNil(t, cart)
		assert.Equal(t, 59.98, cart.TotalAmount)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, client.CartItem{ProductID: 7, Quantity: 2, ProductName: "Widget", ProductPrice: 29.99}, cart.Items[0])
	})

	t.Run("non_200_is_absent", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		c := client.NewCartClient(srv.URL, testHTTPClient())
		cart, err := c.GetCart(context.Background(), "token-123")

		assert.NoError(t, err)
		assert.Nil(t, cart)
	})

	t.Run("unreachable_service", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		c := client.NewCartClient(srv.URL, testHTTPClient())
		cart, err := c.GetCart(context.Background(), "token-123")

		assert.Error(t, err)
		assert.Nil(t, cart)
	})
}

func TestAuthClient_GetUser(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/user/profile/", r.URL.Path)
			assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"email": "john@example.com", "first_name": "John", "last_name": "Watson"}`))
		}))
		defer srv.Close()

		c := client.NewAuthClient(srv.URL, testHTTPClient())
		profile, err := c.GetUser(context.Background(), "token-123")

		require.NoError(t, err)
		require.NotNil(t, profile)
		assert.Equal(t, "john@example.com", profile.Email)
		assert.Equal(t, "John", profile.FirstName)
		assert.Equal(t, "Watson", profile.LastName)
	})

	t.Run("unauthorized_is_absent", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		c := client.NewAuthClient(srv.URL, testHTTPClient())
		profile, err := c.GetUser(context.Background(), "bad-token")

		assert.NoError(t, err)
		assert.Nil(t, profile)
	})
}

func TestCatalogClient_GetProduct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/7/", r.URL.Path)
		_, _ = w.Write([]byte(`{"id": 7, "name": "Widget", "price": 29.99, "stock_quantity": 5, "is_active": true}`))
	}))
	defer srv.Close()

	c := client.NewCatalogClient(srv.URL, testHTTPClient())
	product, err := c.GetProduct(context.Background(), 7)

	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, "Widget", product.Name)
	assert.Equal(t, 5, product.StockQuantity)
}

func TestCatalogClient_ReserveStock(t *testing.T) {
	t.Run("reserves_every_item", func(t *testing.T) {
		var paths []string
		var quantities []int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			var payload struct {
				Quantity int `json:"quantity"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			quantities = append(quantities, payload.Quantity)
			_, _ = w.Write([]byte(`{"success": true}`))
		}))
		defer srv.Close()

		c := client.NewCatalogClient(srv.URL, testHTTPClient())
		err := c.ReserveStock(context.Background(), []client.Reservation{
			{ProductID: 7, Quantity: 2},
			{ProductID: 9, Quantity: 1},
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"/api/products/7/remove/", "/api/products/9/remove/"}, paths)
		assert.Equal(t, []int{2, 1}, quantities)
	})

	t.Run("stops_at_first_failure", func(t *testing.T) {
		var paths []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			if r.URL.Path == "/api/products/9/remove/" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"success": false, "message": "Insufficient stock"}`))
				return
			}
			_, _ = w.Write([]byte(`{"success": true}`))
		}))
		defer srv.Close()

		c := client.NewCatalogClient(srv.URL, testHTTPClient())
		err := c.ReserveStock(context.Background(), []client.Reservation{
			{ProductID: 7, Quantity: 2},
			{ProductID: 9, Quantity: 1},
			{ProductID: 11, Quantity: 3},
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "product 9")
		// product 7 is already decremented, product 11 is never attempted
		assert.Equal(t, []string{"/api/products/7/remove/", "/api/products/9/remove/"}, paths)
	})
}

func TestCatalogClient_ReleaseStock(t *testing.T) {
	t.Run("attempts_every_item_despite_failures", func(t *testing.T) {
		var paths []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			if r.URL.Path == "/api/products/7/release/" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte(`{"success": true}`))
		}))
		defer srv.Close()

		c := client.NewCatalogClient(srv.URL, testHTTPClient())
		err := c.ReleaseStock(context.Background(), []client.Reservation{
			{ProductID: 7, Quantity: 2},
			{ProductID: 9, Quantity: 1},
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "[7]")
		assert.Equal(t, []string{"/api/products/7/release/", "/api/products/9/release/"}, paths)
	})
}
