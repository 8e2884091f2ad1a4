package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type UserProfile struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AuthClient calls the auth/user service over HTTP.
type AuthClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAuthClient(baseURL string, httpClient *http.Client) *AuthClient {
	return &AuthClient{baseURL: baseURL, httpClient: httpClient}
}

// GetUser resolves the profile bound to the bearer token. A non-2xx response
// is treated as an unresolved user (nil, nil).
func (c *AuthClient) GetUser(ctx context.Context, token string) (*UserProfile, error) {
	url := c.baseURL + "/api/user/profile/"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("client: failed to create profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: failed to call auth service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var profile UserProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("client: failed to decode profile response: %w", err)
	}

	return &profile, nil
}
