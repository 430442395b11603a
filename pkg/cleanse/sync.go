package cleanse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hyperengineering/regimen/internal/types"
)

// Syncer issues the fetch/save calls against the sync server.
type Syncer struct {
	serverURL string
	apiKey    string
	userID    string
	client    *http.Client
}

// NewSyncer creates a new Syncer.
func NewSyncer(serverURL, apiKey, userID string) *Syncer {
	return &Syncer{
		serverURL: serverURL,
		apiKey:    apiKey,
		userID:    userID,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Ping checks connectivity to the server.
func (s *Syncer) Ping(ctx context.Context) error {
	if s.serverURL == "" {
		return fmt.Errorf("server URL not configured")
	}

	resp, err := s.send(ctx, http.MethodGet, "/api/health", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: %d", resp.StatusCode)
	}
	return nil
}

// SetupUser registers or refreshes the user profile on the server.
func (s *Syncer) SetupUser(ctx context.Context, email, firstName, lastName string) error {
	req := types.SetupUserRequest{
		UserID:    s.userID,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
	}

	resp, err := s.send(ctx, http.MethodPost, "/api/setup-user", req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("setup user failed: %d", resp.StatusCode)
	}
	return nil
}

// Pull fetches the remote aggregate.
func (s *Syncer) Pull(ctx context.Context) (*types.UserProgress, error) {
	path := "/api/progress?userId=" + url.QueryEscape(s.userID)
	resp, err := s.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch progress failed: %d", resp.StatusCode)
	}

	var body types.ProgressResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	return &body.Progress, nil
}

// Push sends the whole aggregate upstream. The server decomposes and
// upserts every sub-entity or fails the request as a whole.
func (s *Syncer) Push(ctx context.Context, progress types.UserProgress) error {
	req := types.SaveProgressRequest{
		UserID:   s.userID,
		Progress: &progress,
	}

	resp, err := s.send(ctx, http.MethodPost, "/api/progress", req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("save progress failed: %d", resp.StatusCode)
	}
	return nil
}

// send issues an authenticated request to the server.
func (s *Syncer) send(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, s.serverURL+path, reqBody)
	if err != nil {
		return nil, err
	}

	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	return s.client.Do(req)
}
