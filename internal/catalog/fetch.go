package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// Fetcher opens catalog sources from disk or over HTTP.
type Fetcher struct {
	client  *fasthttp.Client
	timeout time.Duration
}

// NewFetcher creates a Fetcher whose downloads time out after timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Fetcher{
		client: &fasthttp.Client{
			Name:                "instock-catalog",
			MaxResponseBodySize: 64 << 20,
		},
		timeout: timeout,
	}
}

// Open returns a reader for ref, which is either a local path or an http(s) URL.
func (f *Fetcher) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		return os.Open(ref)
	}

	timeout := f.timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(ref)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := f.client.DoTimeout(req, resp, timeout); err != nil {
		return nil, fmt.Errorf("download %s: %w", ref, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode(), ref)
	}

	// The response is released on return; copy the body out.
	body := append([]byte(nil), resp.Body()...)
	return io.NopCloser(bytes.NewReader(body)), nil
}
