package storage

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// ImageFetcher downloads raw image bytes from a URL
type ImageFetcher interface {
	FetchImage(ctx context.Context, imageURL string) ([]byte, error)
}

// HTTPOptions configures the HTTP fetcher
type HTTPOptions struct {
	Timeout     time.Duration
	MaxBytes    int64
	MaxAttempts int
	// BaseBackoff is multiplied by the attempt number between retries
	BaseBackoff time.Duration
}

// DefaultHTTPOptions returns the production retry policy: 3 attempts with 1s, 2s backoff
func DefaultHTTPOptions() HTTPOptions {
	return HTTPOptions{
		Timeout:     30 * time.Second,
		MaxBytes:    10 * 1024 * 1024,
		MaxAttempts: 3,
		BaseBackoff: time.Second,
	}
}

// HTTPImageFetcher implements ImageFetcher
type HTTPImageFetcher struct {
	client *http.Client
	opts   HTTPOptions
}

// NewHTTPImageFetcher creates an HTTP image fetcher
func NewHTTPImageFetcher(opts HTTPOptions) ImageFetcher {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}

	// Connection pooling tuned for single image downloads
	transport := &http.Transport{
		Proxy:                  http.ProxyFromEnvironment,
		MaxIdleConns:           10,
		MaxIdleConnsPerHost:    2,
		IdleConnTimeout:        30 * time.Second,
		TLSHandshakeTimeout:    10 * time.Second,
		ResponseHeaderTimeout:  10 * time.Second,
		ExpectContinueTimeout:  1 * time.Second,
		MaxResponseHeaderBytes: 4096,
	}

	return &HTTPImageFetcher{
		opts: opts,
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
	}
}

// FetchImage downloads the image, retrying network failures and 5xx
// responses. 4xx responses and oversized bodies are not retried.
func (h *HTTPImageFetcher) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	var lastErr error
	attempts := 0

	for attempt := 0; attempt < h.opts.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, time.Duration(attempt)*h.opts.BaseBackoff); err != nil {
				return nil, err
			}
		}

		attempts++
		data, retryable, err := h.fetchOnce(ctx, imageURL)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}

	return nil, fmt.Errorf("failed to fetch image after %d attempts: %w", attempts, lastErr)
}

func (h *HTTPImageFetcher) fetchOnce(ctx context.Context, imageURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, image/gif, */*")
	req.Header.Set("User-Agent", "Design-Inspector/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, false, fmt.Errorf("%w: client error: status code %d", ErrSourceNotFound, resp.StatusCode)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, false, fmt.Errorf("client error: status code %d", resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("server error: status code %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	if h.opts.MaxBytes > 0 && resp.ContentLength > h.opts.MaxBytes {
		return nil, false, fmt.Errorf("%w: content length %d", ErrBodyTooLarge, resp.ContentLength)
	}

	data, err := readLimited(resp.Body, h.opts.MaxBytes)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		return nil, !isTooLarge(err), err
	}
	return data, false, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
