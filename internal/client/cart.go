package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type CartItem struct {
	ProductID    int64   `json:"product_id"`
	Quantity     int     `json:"quantity"`
	ProductName  string  `json:"product_name"`
	ProductPrice float64 `json:"product_price"`
}

type Cart struct {
	TotalAmount float64    `json:"total_amount"`
	Items       []CartItem `json:"items"`
}

// CartClient calls the cart service over HTTP.
type CartClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewCartClient(baseURL string, httpClient *http.Client) *CartClient {
	return &CartClient{baseURL: baseURL, httpClient: httpClient}
}

// GetCart fetches the cart bound to the bearer token. A non-2xx response is
// treated as an absent cart (nil, nil); only transport-level failures return
// an error.
func (c *CartClient) GetCart(ctx context.Context, token string) (*Cart, error) {
	url := c.baseURL + "/api/cart/"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("client: failed to create cart request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: failed to call cart service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var cart Cart
	if err := json.NewDecoder(resp.Body).Decode(&cart); err != nil {
		return nil, fmt.Errorf("client: failed to decode cart response: %w", err)
	}

	return &cart, nil
}
