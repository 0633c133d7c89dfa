package storage

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"go-plant-inspector/internal/logger"

	"github.com/sirupsen/logrus"
)

// HTTPFetcherConfig tunes the HTTP image fetcher
type HTTPFetcherConfig struct {
	// Timeout bounds a single request including the body
	Timeout time.Duration

	// MaxBytes limits the downloaded body; zero disables the limit
	MaxBytes int64

	// MaxAttempts is the number of tries for transient failures
	MaxAttempts int

	// Backoff is multiplied by the attempt number between retries
	Backoff time.Duration

	InsecureSkipVerify bool
	UserAgent          string
}

// DefaultHTTPFetcherConfig returns the default fetcher settings
func DefaultHTTPFetcherConfig() HTTPFetcherConfig {
	return HTTPFetcherConfig{
		Timeout:     30 * time.Second,
		MaxBytes:    20 << 20,
		MaxAttempts: 3,
		Backoff:     time.Second,
		UserAgent:   "Go-Plant-Inspector/1.0",
	}
}

// HTTPImageFetcher implements ImageFetcher for http and https references
type HTTPImageFetcher struct {
	client *http.Client
	config HTTPFetcherConfig
}

// NewHTTPImageFetcher creates an HTTP image fetcher
func NewHTTPImageFetcher(cfg HTTPFetcherConfig) ImageFetcher {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultHTTPFetcherConfig().Timeout
	}

	// Tuned for single photo downloads
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,

		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},
	}

	return &HTTPImageFetcher{
		config: cfg,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,

			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
	}
}

// FetchImage downloads and decodes the photo at ref. 5xx responses and
// transport errors are retried; 4xx responses are not.
func (h *HTTPImageFetcher) FetchImage(ctx context.Context, ref string) (*Photo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	req.Header.Set("Accept", "image/jpeg, image/png, image/gif, */*")
	req.Header.Set("User-Agent", h.config.UserAgent)

	var resp *http.Response
	var lastErr error

	for attempt := 1; attempt <= h.config.MaxAttempts; attempt++ {
		resp, lastErr = h.try(req)
		if lastErr == nil {
			break
		}

		if sErr, ok := lastErr.(*StatusError); ok && !sErr.Retryable() {
			break
		}

		if attempt < h.config.MaxAttempts {
			logger.WithFields(logrus.Fields{
				"url":     ref,
				"attempt": attempt,
				"error":   lastErr.Error(),
			}).Debug("Retrying image download")

			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("image download cancelled: %w", ctx.Err())
			case <-time.After(time.Duration(attempt) * h.config.Backoff):
			}
		}
	}

	if lastErr != nil {
		if sErr, ok := lastErr.(*StatusError); ok && sErr.Code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %v", ErrImageNotFound, lastErr)
		}
		return nil, fmt.Errorf("failed to fetch image after %d attempts: %w", h.config.MaxAttempts, lastErr)
	}
	defer resp.Body.Close()

	if h.config.MaxBytes > 0 && resp.ContentLength > h.config.MaxBytes {
		return nil, fmt.Errorf("%w: content length %d", ErrImageTooLarge, resp.ContentLength)
	}

	photo, err := DecodeImage(resp.Body, h.config.MaxBytes)
	if err != nil {
		return nil, err
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		photo.Metadata.ContentType = ct
	}
	return photo, nil
}

// try performs a single request. On success the caller owns resp.Body.
func (h *HTTPImageFetcher) try(req *http.Request) (*http.Response, error) {
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}
	resp.Body.Close()
	return nil, &StatusError{Code: resp.StatusCode}
}

// StatusError is a non-200 HTTP response
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	if e.Code >= 400 && e.Code < 500 {
		return fmt.Sprintf("client error: status code %d", e.Code)
	}
	if e.Code >= 500 {
		return fmt.Sprintf("server error: status code %d", e.Code)
	}
	return fmt.Sprintf("unexpected status code %d", e.Code)
}

// Retryable reports whether another attempt may succeed
func (e *StatusError) Retryable() bool {
	return e.Code >= 500
}
