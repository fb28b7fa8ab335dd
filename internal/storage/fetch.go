package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// OpenSource opens an ingest source, which may be a local file path or an
// HTTP(S) URL. Remote sources are fetched whole before parsing; ingestion is
// all-or-nothing either way.
func OpenSource(source string, timeout time.Duration) (io.ReadCloser, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return fetchURL(source, timeout)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open source file: %w", err)
	}
	return f, nil
}

func fetchURL(url string, timeout time.Duration) (io.ReadCloser, error) {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(30 * time.Second) // default fallback
	}

	resp, err := r.R().Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode())
	}
	return io.NopCloser(bytes.NewReader(resp.Body())), nil
}
