package mal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/brogergvhs/malview/internal/overview"
	"github.com/brogergvhs/malview/internal/ui"
)

const DefaultOrigin = "https://myanimelist.net"

// maxPageBytes bounds a single overview page; real pages are well below 1 MiB.
const maxPageBytes = 8 << 20

var errPageTooLarge = errors.New("page exceeds size limit")

// NetworkError reports a fetch that did not produce a page body. It is
// never retried.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

type Fetcher struct {
	client *http.Client
	origin string
	log    *ui.Logger
}

func NewFetcher(client *http.Client, origin string, log *ui.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if origin == "" {
		origin = DefaultOrigin
	}
	if log == nil {
		log = ui.Discard()
	}

	return &Fetcher{client: client, origin: origin, log: log}
}

// Fetch issues one GET for the overview page of ref and returns its body.
func (f *Fetcher) Fetch(ctx context.Context, ref overview.Ref) (string, error) {
	target := ref.URL(f.origin)
	f.log.Debugf("retrieve %s", target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", &NetworkError{URL: target, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &NetworkError{URL: target, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &NetworkError{URL: target, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes+1))
	if err != nil {
		return "", &NetworkError{URL: target, Err: err}
	}
	if len(body) > maxPageBytes {
		return "", &NetworkError{URL: target, Err: errPageTooLarge}
	}

	return string(body), nil
}
