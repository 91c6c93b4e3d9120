// Package net loads pages and their scripts over HTTP the way a given
// device would, by sending its User-Agent.
package net

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultUserAgent identifies vhfix when the caller does not impersonate a
// device.
const DefaultUserAgent = "vhfix/1.0 (compatible; Go)"

// maxBody caps how much of a response is read.
const maxBody = 8 << 20

// Fetcher issues GET requests as one device.
type Fetcher struct {
	UserAgent string
	Client    *http.Client
}

// NewFetcher returns a Fetcher with a 30s timeout. An empty userAgent
// sends DefaultUserAgent.
func NewFetcher(userAgent string) *Fetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Fetcher{
		UserAgent: userAgent,
		Client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Get returns the body and content type of rawURL. Non-2xx responses are
// errors.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)

	log.Debug("fetching", "url", rawURL, "ua", f.UserAgent)
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, "", fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", rawURL, err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// Relative returns a function loading references relative to base, for
// <script src> attributes.
func (f *Fetcher) Relative(ctx context.Context, base string) func(ref string) (string, error) {
	return func(ref string) (string, error) {
		body, _, err := f.Get(ctx, ResolveURL(base, ref))
		return string(body), err
	}
}

// ResolveURL resolves ref against base. Unparsable input returns ref.
func ResolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

// IsNetworkURL reports whether s is an http or https URL.
func IsNetworkURL(s string) bool {
	scheme, _, ok := strings.Cut(s, "://")
	if !ok {
		return false
	}
	scheme = strings.ToLower(scheme)
	return scheme == "http" || scheme == "https"
}
