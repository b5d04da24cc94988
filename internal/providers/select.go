package providers

import (
	"fmt"
	"sort"
	"sync"

	"github.com/brogergvhs/malview/internal/overview"
)

// Registry holds the known providers by name.
type Registry struct {
	mu sync.RWMutex
	m  map[string]Provider
}

func NewRegistry(ps ...Provider) *Registry {
	r := &Registry{m: map[string]Provider{}}
	for _, p := range ps {
		r.Register(p)
	}
	return r
}

func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[p.Name()] = p
}

func (r *Registry) ByName(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.m[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", name)
	}
	return p, nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.m))
	for n := range r.m {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ForURL returns the first provider (by name) that recognizes rawURL.
func (r *Registry) ForURL(rawURL string) (Provider, overview.Ref, error) {
	for _, name := range r.Names() {
		p, _ := r.ByName(name)
		if ref, ok := p.Match(rawURL); ok {
			return p, ref, nil
		}
	}

	return nil, overview.Ref{}, &overview.UnsupportedURLError{URL: rawURL}
}
