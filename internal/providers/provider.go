package providers

import (
	"context"
	"fmt"

	"github.com/brogergvhs/malview/internal/overview"
)

// Provider turns a content reference into an overview record. Fetch is the
// only step that touches the network; Parse is pure and may be fed saved
// pages.
type Provider interface {
	Name() string
	Match(rawURL string) (overview.Ref, bool)
	Fetch(ctx context.Context, ref overview.Ref) (string, error)
	Parse(html string) *overview.Record
}

// FetchParse fetches the page once and extracts it. Fetch failures abort;
// extraction never does.
func FetchParse(ctx context.Context, p Provider, ref overview.Ref) (*overview.Record, int, error) {
	html, err := p.Fetch(ctx, ref)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", p.Name(), ref, err)
	}

	return p.Parse(html), len(html), nil
}
