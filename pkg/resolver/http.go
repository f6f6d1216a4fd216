package resolver

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/neurodesk/liquid/pkg/liquid"
)

// HTTP fetches partials from a theme server. With a cache directory,
// fetched partials are kept on disk and revalidated with ETag and
// Last-Modified.
type HTTP struct {
	BaseURL string
	Pattern string
	Timeout time.Duration
	Cache   *Cache
}

// NewHTTP returns an HTTP resolver for baseURL caching into cacheDir.
func NewHTTP(baseURL, cacheDir string) *HTTP {
	return &HTTP{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Pattern: DefaultPattern,
		Timeout: 10 * time.Second,
		Cache:   NewCache(cacheDir),
	}
}

// URL returns the address a partial name resolves to.
func (h *HTTP) URL(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	segments := strings.Split(fileName(h.Pattern, name), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(h.BaseURL, "/") + "/" + strings.Join(segments, "/"), nil
}

// ReadTemplate implements liquid.FileSystem.
func (h *HTTP) ReadTemplate(name string) (string, error) {
	ctx := context.Background()
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}
	return h.ReadTemplateContext(ctx, name)
}

// ReadTemplateContext is ReadTemplate bounded by ctx.
func (h *HTTP) ReadTemplateContext(ctx context.Context, name string) (string, error) {
	u, err := h.URL(name)
	if err != nil {
		return "", err
	}
	body, fromCache, err := h.Cache.Get(ctx, u)
	if errors.Is(err, errNotFound) {
		return "", liquid.ErrTemplateNotFound{Name: name}
	}
	if err != nil {
		return "", err
	}
	h.Cache.Logger.Debug("partial fetched", "name", name, "url", u, "cached", fromCache)
	return string(body), nil
}
