package mal

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/malview/internal/intl"
	"github.com/brogergvhs/malview/internal/overview"
	"github.com/brogergvhs/malview/internal/ui"
)

const Name = "mal"

type Options struct {
	// EnglishTitle prefers the English title over the canonical one.
	EnglishTitle bool
	// PreferEnglish is asked on every parse; true has the same effect as
	// EnglishTitle.
	PreferEnglish func() bool
	Locale       string
	Origin       string
	Logger       *ui.Logger
	// Now anchors broadcast slots; defaults to time.Now.
	Now func() time.Time
}

// ExtractionError is a field that could not be read from a page. It is
// logged by the assembler and never returned.
type ExtractionError struct {
	Field string
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Field, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

type Provider struct {
	fetcher *Fetcher
	opts    Options
	loc     *intl.Localizer
	log     *ui.Logger
}

func New(client *http.Client, opts Options) *Provider {
	if opts.Origin == "" {
		opts.Origin = DefaultOrigin
	}
	opts.Origin = strings.TrimRight(opts.Origin, "/")
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = ui.Discard()
	}

	log := opts.Logger.With("provider", Name)

	return &Provider{
		fetcher: NewFetcher(client, opts.Origin, log),
		opts:    opts,
		loc:     intl.New(opts.Locale),
		log:     log,
	}
}

func (p *Provider) Name() string { return Name }

func (p *Provider) Match(rawURL string) (overview.Ref, bool) {
	ref, err := overview.ParseURL(rawURL)
	return ref, err == nil
}

func (p *Provider) Fetch(ctx context.Context, ref overview.Ref) (string, error) {
	return p.fetcher.Fetch(ctx, ref)
}

// Parse extracts a record from a page. It never fails: fields that cannot
// be read keep their empty value. The input is not modified, so parsing the
// same page twice yields equal records.
func (p *Provider) Parse(html string) *overview.Record {
	rec := overview.NewRecord()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		p.logFailure(&ExtractionError{Field: "document", Err: err})
		return rec
	}

	rec.Title = run(p, "title", "", func() (string, error) { return p.title(doc) })
	rec.Description = run(p, "description", "", func() (string, error) { return description(doc) })

	img := run(p, "image", images{}, func() (images, error) { return image(doc) })
	rec.Image, rec.ImageLarge = img.small, img.large

	rec.AlternativeTitle = run(p, "alternativeTitle", []string{}, func() ([]string, error) { return alternativeTitles(doc) })
	rec.Characters = run(p, "characters", []overview.Character{}, func() ([]overview.Character, error) { return p.characters(doc) })
	rec.Statistics = run(p, "statistics", []overview.Statistic{}, func() ([]overview.Statistic, error) { return p.statistics(doc) })
	rec.Info = run(p, "info", []overview.InfoRow{}, func() ([]overview.InfoRow, error) { return p.info(doc) })
	rec.OpeningSongs = run(p, "openingSongs", []overview.Song{}, func() ([]overview.Song, error) { return songs(doc, openingSongsSelector) })
	rec.EndingSongs = run(p, "endingSongs", []overview.Song{}, func() ([]overview.Song, error) { return songs(doc, endingSongsSelector) })
	rec.Related = run(p, "related", []overview.Related{}, func() ([]overview.Related, error) { return p.related(doc) })

	return rec
}

// run isolates one extractor: errors and panics become a logged
// ExtractionError and the default value.
func run[T any](p *Provider, field string, def T, fn func() (T, error)) (out T) {
	defer func() {
		if r := recover(); r != nil {
			p.logFailure(&ExtractionError{Field: field, Err: fmt.Errorf("panic: %v", r)})
			out = def
		}
	}()

	v, err := fn()
	if err != nil {
		p.logFailure(&ExtractionError{Field: field, Err: err})
		return def
	}

	return v
}

func (p *Provider) logFailure(err *ExtractionError) {
	p.log.Warnf("%v", err)
}
