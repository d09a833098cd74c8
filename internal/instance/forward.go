package instance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/starford/mudkip/internal/apperr"
)

const probeTimeout = 500 * time.Millisecond

// ForwardRequest is the wire shape of a forwarded invocation.
type ForwardRequest struct {
	Args []string `json:"args"`
}

// Probe reports whether a live owner instance answers at baseURL.
func Probe(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health/live", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Forward hands this invocation's argument vector to the owner instance.
// token, when non-empty, is sent as a bearer credential.
func Forward(ctx context.Context, baseURL, token string, args []string) error {
	body, err := json.Marshal(ForwardRequest{Args: args})
	if err != nil {
		return fmt.Errorf("instance: encode forward request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/instance/open", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("instance: build forward request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("instance: forward to owner: %w", apperr.ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("instance: owner rejected forward: status %d", resp.StatusCode)
	}
	return nil
}
