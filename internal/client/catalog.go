package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type Product struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
	IsActive      bool    `json:"is_active"`
}

// Reservation is a single stock decrement (or release) request line.
type Reservation struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type quantityPayload struct {
	Quantity int `json:"quantity"`
}

// CatalogClient calls the catalog service over HTTP.
type CatalogClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewCatalogClient(baseURL string, httpClient *http.Client) *CatalogClient {
	return &CatalogClient{baseURL: baseURL, httpClient: httpClient}
}

// GetProduct fetches a single product. A non-2xx response means the product
// is absent (nil, nil).
func (c *CatalogClient) GetProduct(ctx context.Context, productID int64) (*Product, error) {
	url := fmt.Sprintf("%s/api/products/%d/", c.baseURL, productID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("client: failed to create product request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: failed to call catalog service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var product Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, fmt.Errorf("client: failed to decode product response: %w", err)
	}

	return &product, nil
}

// ReserveStock decrements stock item by item and stops at the first failure.
// Items decremented before the failing one are not rolled back here; the
// caller owns compensation.
func (c *CatalogClient) ReserveStock(ctx context.Context, items []Reservation) error {
	for _, item := range items {
		url := fmt.Sprintf("%s/api/products/%d/remove/", c.baseURL, item.ProductID)
		if err := c.postQuantity(ctx, url, item.Quantity); err != nil {
			return fmt.Errorf("client: failed to reserve stock for product %d: %w", item.ProductID, err)
		}
	}
	return nil
}

// ReleaseStock returns reserved quantities to stock. Every item is attempted
// even when earlier ones fail.
func (c *CatalogClient) ReleaseStock(ctx context.Context, items []Reservation) error {
	var failed []int64
	for _, item := range items {
		url := fmt.Sprintf("%s/api/products/%d/release/", c.baseURL, item.ProductID)
		if err := c.postQuantity(ctx, url, item.Quantity); err != nil {
			failed = append(failed, item.ProductID)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("client: failed to release stock for products %v", failed)
	}
	return nil
}

func (c *CatalogClient) postQuantity(ctx context.Context, url string, quantity int) error {
	body, err := json.Marshal(quantityPayload{Quantity: quantity})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call catalog service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog service returned status %d", resp.StatusCode)
	}

	return nil
}
