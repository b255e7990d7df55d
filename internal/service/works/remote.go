package works

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"portfolio/internal/model"
)

// maxRemoteBody bounds the size of a remote works document.
const maxRemoteBody = 4 << 20

// RemoteSource fetches a JSON array of work items over HTTP.
type RemoteSource struct {
	url    string
	client *http.Client
}

// NewRemoteSource creates a source for url. A nil client gets one with the
// given timeout.
func NewRemoteSource(url string, client *http.Client, timeout time.Duration) *RemoteSource {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &RemoteSource{url: url, client: client}
}

func (s *RemoteSource) Name() string { return "remote:" + s.url }

// Load performs one GET request. Non-2xx responses are errors.
func (s *RemoteSource) Load(ctx context.Context) ([]model.WorkItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch works: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("failed to fetch works: unexpected status %s", resp.Status)
	}

	var items []model.WorkItem
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxRemoteBody)).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode works: %w", err)
	}
	return clean(items), nil
}
