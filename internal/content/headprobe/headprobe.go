// Package headprobe provides a MediaClassifier that issues one HTTP HEAD
// request per link and maps the returned Content-Type to a media kind.
// It never retries; the caller treats any error as "unclassified".
package headprobe

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gonkalabs/notetoken/internal/content"
)

const userAgent = "notetoken-headprobe/1.0"

// Client probes links with HEAD requests.
type Client struct {
	http *http.Client
}

// New creates a Client whose requests give up after timeout.
func New(timeout time.Duration) *Client {
	return &Client{
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewWithHTTPClient wraps an existing http.Client.
func NewWithHTTPClient(hc *http.Client) *Client {
	return &Client{http: hc}
}

// ClassifyMedia issues a HEAD request for link. It is safe for concurrent use.
func (c *Client) ClassifyMedia(ctx context.Context, link string) (content.MediaKind, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, link, nil)
	if err != nil {
		return content.MediaNone, fmt.Errorf("headprobe: request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return content.MediaNone, fmt.Errorf("headprobe: head %s: %w", link, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return content.MediaNone, fmt.Errorf("headprobe: head %s: unexpected status %d", link, resp.StatusCode)
	}
	return MediaKindFromContentType(resp.Header.Get("Content-Type")), nil
}

// MediaKindFromContentType maps a Content-Type header value to a media kind.
func MediaKindFromContentType(ct string) content.MediaKind {
	ct = strings.ToLower(strings.TrimSpace(ct))
	switch {
	case strings.HasPrefix(ct, "video/"):
		return content.MediaVideo
	case strings.HasPrefix(ct, "audio/"):
		return content.MediaAudio
	case strings.HasPrefix(ct, "image/"):
		return content.MediaImage
	}
	return content.MediaNone
}
