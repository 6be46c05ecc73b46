package store

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/jackzampolin/lectern/internal/resource"
)

// Origin proxies page resources from a remote lectern-compatible
// origin. Each Fetch is a single HTTP attempt: the resource cache's
// discard-on-failure policy already makes a later request retry.
type Origin struct {
	baseURL string
	docID   string
	client  *http.Client
}

// NewOrigin creates a fetcher against baseURL for one document.
func NewOrigin(baseURL, docID string, timeout time.Duration) *Origin {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Origin{
		baseURL: baseURL,
		docID:   docID,
		client:  &http.Client{Timeout: timeout},
	}
}

// Fetch implements resource.Fetcher.
func (o *Origin) Fetch(ctx context.Context, page int, kind resource.Kind) (resource.Value, error) {
	url := fmt.Sprintf("%s/documents/%s/pages/%d/%s", o.baseURL, o.docID, page, kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return resource.Value{}, fmt.Errorf("failed to build origin request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return resource.Value{}, fmt.Errorf("origin fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return resource.Value{}, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if resp.StatusCode != http.StatusOK {
		return resource.Value{}, fmt.Errorf("origin returned %s for %s", resp.Status, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resource.Value{}, fmt.Errorf("failed to read origin response: %w", err)
	}
	return resource.Value{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
		URL:         url,
	}, nil
}

// Probe waits for the origin to become reachable, retrying its health
// endpoint with a fixed delay. Used once at server startup so a
// misconfigured origin fails fast instead of surfacing as per-resource
// fetch errors.
func Probe(ctx context.Context, baseURL string, attempts int) error {
	if attempts <= 0 {
		attempts = 10
	}
	client := &http.Client{Timeout: 5 * time.Second}

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
			if err != nil {
				return err
			}
			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("origin health returned %s", resp.Status)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.Delay(1*time.Second),
	)
}
