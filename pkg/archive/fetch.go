package archive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultFetchTimeout bounds a single download.
const DefaultFetchTimeout = 5 * time.Minute

// IsRemote reports whether source is an http(s) URL.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// RewriteURL turns share links into direct download links. Dropbox pages are
// served from dl.dropboxusercontent.com with dl=1; zenodo record links are
// sent through the /api/.../content endpoint. Other URLs are returned as is.
func RewriteURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}
	switch u.Hostname() {
	case "www.dropbox.com":
		q := u.Query()
		q.Set("dl", "1")
		u.RawQuery = q.Encode()
		u.Host = "dl.dropboxusercontent.com"
		u.Scheme = "https"
	case "zenodo.org":
		if !strings.HasPrefix(u.Path, "/api") {
			u.Path = "/api" + u.Path
		}
		if !strings.HasSuffix(u.Path, "/content") {
			u.Path = strings.TrimSuffix(u.Path, "/") + "/content"
		}
		u.RawPath = ""
	}
	return u.String(), nil
}

// FileName returns the last path segment of a URL, skipping the trailing
// "content" segment of zenodo API links.
func FileName(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	name := segments[len(segments)-1]
	if u.Hostname() == "zenodo.org" && name == "content" && len(segments) > 1 {
		name = segments[len(segments)-2]
	}
	if name == "" {
		return "", fmt.Errorf("could not get a file name from %s", raw)
	}
	return name, nil
}

// Fetch downloads raw into a temporary file and returns its path. The caller
// removes the file. A nil client uses one with DefaultFetchTimeout.
func Fetch(ctx context.Context, client *http.Client, raw string) (string, error) {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	target, err := RewriteURL(raw)
	if err != nil {
		return "", err
	}
	name, err := FileName(raw)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("network error, received %d from %s", resp.StatusCode, target)
	}

	f, err := os.CreateTemp("", "provview-*-"+filepath.Base(name))
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("download %s: %w", raw, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
