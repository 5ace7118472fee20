package users

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// HTTPGateway resolves user display names from the accounts service.
// Used only to decorate tracking views, so callers treat failures as
// degradable.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

// NewHTTPGateway creates a users gateway.
func NewHTTPGateway(baseURL string, client *http.Client) *HTTPGateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPGateway{baseURL: baseURL, client: client}
}

type userDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DisplayName fetches the public display name for a user. Returns an
// empty string when the user does not exist.
func (g *HTTPGateway) DisplayName(ctx context.Context, id int64) (string, error) {
	url := fmt.Sprintf("%s/users/%d", g.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("users gateway: build request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("users gateway: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return "", nil
	default:
		return "", fmt.Errorf("users gateway: upstream status %d", resp.StatusCode)
	}

	var dto userDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return "", fmt.Errorf("users gateway: decode response: %w", err)
	}
	return dto.Name, nil
}
