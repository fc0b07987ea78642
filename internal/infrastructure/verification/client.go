package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPClient talks to the external user/verification service. It
// implements domain.VerificationProvider.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 3 * time.Second},
	}
}

type userStatusResponse struct {
	UserID   string `json:"user_id"`
	Verified bool   `json:"verified"`
	Role     string `json:"role"`
}

func (c *HTTPClient) IsVerifiedBuyer(ctx context.Context, userID string) (bool, error) {
	status, err := c.userStatus(ctx, userID)
	if err != nil {
		return false, err
	}
	return status.Verified, nil
}

func (c *HTTPClient) Role(ctx context.Context, userID string) (string, error) {
	status, err := c.userStatus(ctx, userID)
	if err != nil {
		return "", err
	}
	return status.Role, nil
}

func (c *HTTPClient) userStatus(ctx context.Context, userID string) (*userStatusResponse, error) {
	url := fmt.Sprintf("%s/users/%s/status", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("verification service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("verification service returned status %d", resp.StatusCode)
	}

	var status userStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode verification response: %w", err)
	}
	return &status, nil
}
