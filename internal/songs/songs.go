package songs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"sociogram/internal/config"
)

// Resolver looks up a playable external video id for a song hint. Lookups are
// strictly best-effort: callers swallow errors and create the story without a
// video id.
type Resolver interface {
	ResolveVideoID(ctx context.Context, name, artist string) (string, error)
}

type HTTPResolver struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewHTTPResolver(cfg *config.Config) *HTTPResolver {
	return &HTTPResolver{
		client:  &http.Client{Timeout: 5 * time.Second},
		baseURL: cfg.SongAPIURL,
		apiKey:  cfg.SongAPIKey,
	}
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

func (r *HTTPResolver) ResolveVideoID(ctx context.Context, name, artist string) (string, error) {
	query := url.Values{}
	query.Set("part", "snippet")
	query.Set("type", "video")
	query.Set("maxResults", "1")
	query.Set("q", fmt.Sprintf("%s %s", name, artist))
	if r.apiKey != "" {
		query.Set("key", r.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("song lookup returned status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	if len(result.Items) == 0 {
		return "", fmt.Errorf("no video found for %q by %q", name, artist)
	}

	return result.Items[0].ID.VideoID, nil
}

var _ Resolver = (*HTTPResolver)(nil)
