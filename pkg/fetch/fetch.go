// Package fetch downloads remote install sources to local temp files
// so the rest of the pipeline only ever deals with paths on disk.
package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/arthur-debert/doapp/pkg/errors"
	"github.com/arthur-debert/doapp/pkg/logging"
)

// Fetcher resolves a remote URL to a local file path.
type Fetcher interface {
	// Fetch downloads rawURL and returns the local path plus the
	// name suggested by the URL. The caller owns the file.
	Fetch(ctx context.Context, rawURL string) (localPath, suggestedName string, err error)
}

// IsRemote reports whether source should go through a Fetcher rather
// than straight to the filesystem.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// HTTPFetcher downloads over HTTP(S) with retries and backoff.
type HTTPFetcher struct {
	client *retryablehttp.Client
}

// NewHTTP creates a fetcher with sensible retry defaults.
func NewHTTP() *HTTPFetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.Logger = nil
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, string, error) {
	logger := logging.GetLogger("fetch")

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "", "", errors.Newf(errors.ErrInvalidInput, "invalid URL %q", rawURL)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", "", errors.Wrapf(err, errors.ErrFetchFailed, "cannot build request for %s", rawURL)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", "", errors.Wrapf(err, errors.ErrFetchFailed, "cannot download %s", rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", errors.Newf(errors.ErrFetchFailed,
			"cannot download %s: HTTP %d", rawURL, resp.StatusCode).
			WithDetail("status", resp.StatusCode)
	}

	name := suggestedName(parsed)
	out, err := os.CreateTemp("", "doapp-fetch-*-"+name)
	if err != nil {
		return "", "", errors.Wrap(err, errors.ErrFileWrite, "cannot create temp file")
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", "", errors.Wrapf(err, errors.ErrFetchFailed, "cannot save %s", rawURL)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", "", errors.Wrapf(err, errors.ErrFileWrite, "cannot finish %s", out.Name())
	}

	logger.Debug().Str("url", rawURL).Str("path", out.Name()).Msg("downloaded")
	return out.Name(), name, nil
}

// suggestedName derives an install name from the URL path.
func suggestedName(u *url.URL) string {
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "download"
	}
	return name
}
