package resolver

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
)

// errNotFound is returned by Cache.Get for 404 and 410 responses.
var errNotFound = errors.New("not found")

// Cache is a persistent HTTP cache with ETag/Last-Modified revalidation. An
// empty Dir disables persistence and every Get fetches.
type Cache struct {
	Dir     string
	Client  *http.Client
	Retries int
	Backoff time.Duration
	Logger  *slog.Logger
}

// NewCache returns a Cache with a reasonable default HTTP client.
func NewCache(dir string) *Cache {
	return &Cache{
		Dir:     dir,
		Client:  &http.Client{Timeout: 30 * time.Second},
		Retries: 3,
		Backoff: 500 * time.Millisecond,
		Logger:  slog.Default(),
	}
}

type meta struct {
	URL          string `json:"url"`
	ETag         string `json:"etag,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
	// DataFile is the basename of the cached payload file
	DataFile string `json:"data_file"`
}

// Get returns the body of url, revalidating a cached copy when there is one.
// Returns (body, fromCache, error).
func (c *Cache) Get(ctx context.Context, url string) ([]byte, bool, error) {
	key := hash(url)
	mpath := filepath.Join(c.Dir, key+".json")
	m, cached, haveMeta := c.load(mpath, url)

	// If we have metadata, try a conditional GET
	if haveMeta {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, false, err
		}
		if m.ETag != "" {
			req.Header.Set("If-None-Match", m.ETag)
		}
		if m.LastModified != "" {
			req.Header.Set("If-Modified-Since", m.LastModified)
		}
		resp, err := c.Client.Do(req)
		if err == nil {
			defer resp.Body.Close()
			switch {
			case resp.StatusCode == http.StatusNotModified:
				c.Logger.Debug("partial cache revalidated", "url", url)
				return cached, true, nil
			case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
				return nil, false, errNotFound
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				body, err := io.ReadAll(resp.Body)
				if err != nil {
					return nil, false, err
				}
				return body, false, c.store(mpath, key, url, resp, body)
			}
		}
		// Revalidation failed (network or server); reuse the cached copy.
		c.Logger.Warn("partial cache revalidation failed, serving cached copy", "url", url, "error", err)
		return cached, true, nil
	}

	// Full fetch with simple retry/backoff on network errors or 5xx
	var lastErr error
	for attempt := 0; attempt < max(c.Retries, 1); attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, false, ctx.Err()
			case <-time.After(time.Duration(1<<(attempt-1)) * c.Backoff):
			}
		}
		body, retry, err := c.fetch(ctx, mpath, key, url)
		if err == nil {
			return body, false, nil
		}
		if !retry {
			return nil, false, err
		}
		lastErr = err
	}
	return nil, false, lastErr
}

// fetch performs one unconditional GET. retry reports whether the failure
// is worth another attempt.
func (c *Cache) fetch(ctx context.Context, mpath, key, url string) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, false, errNotFound
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("HTTP %d", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, false, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}
	return body, false, c.store(mpath, key, url, resp, body)
}

func (c *Cache) load(mpath, url string) (meta, []byte, bool) {
	var m meta
	if c.Dir == "" {
		return m, nil, false
	}
	b, err := os.ReadFile(mpath)
	if err != nil {
		return m, nil, false
	}
	_ = json.Unmarshal(b, &m)
	// Validate basic consistency
	if m.URL != url || m.DataFile == "" {
		return m, nil, false
	}
	data, err := os.ReadFile(filepath.Join(c.Dir, m.DataFile))
	if err != nil {
		return m, nil, false
	}
	return m, data, true
}

func (c *Cache) store(mpath, key, url string, resp *http.Response, body []byte) error {
	if c.Dir == "" {
		return nil
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return err
	}
	dataFile := key + ".data"
	if err := atomic.WriteFile(filepath.Join(c.Dir, dataFile), bytes.NewReader(body)); err != nil {
		return err
	}
	b, err := json.MarshalIndent(meta{
		URL:          url,
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
		DataFile:     dataFile,
	}, "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(mpath, bytes.NewReader(b))
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
