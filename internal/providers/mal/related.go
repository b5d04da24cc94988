package mal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/malview/internal/overview"
)

// related reads both layouts of the related entries block: cards
// (".entry .content") and the plain relation table. Either yields the same
// relation/links shape.
func (p *Provider) related(doc *goquery.Document) ([]overview.Related, error) {
	block := doc.Find(".related-entries")
	if block.Length() == 0 {
		return nil, fmt.Errorf("related entries: %w", errMissing)
	}

	out := []overview.Related{}

	block.Find(".entry .content").Each(func(_ int, c *goquery.Selection) {
		out = append(out, overview.Related{
			Type:  relationType(c.Find(".relation").First().Text()),
			Links: p.relatedLinks(c.Find("a")),
		})
	})

	block.Find("table tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find(".borderClass")
		if cells.Length() == 0 {
			return
		}
		out = append(out, overview.Related{
			Type:  relationType(cells.First().Text()),
			Links: p.relatedLinks(cells.Last().Find("a")),
		})
	})

	return out, nil
}

func (p *Provider) relatedLinks(as *goquery.Selection) []overview.RelatedLink {
	links := []overview.RelatedLink{}
	as.Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		u := absoluteLink(href, p.opts.Origin)
		if u == "" {
			return
		}

		id, _ := strconv.Atoi(overview.URLPart(u, 4))
		links = append(links, overview.RelatedLink{
			URL:   u,
			Title: normSpace(a.Text()),
			Type:  overview.URLPart(u, 3),
			ID:    id,
		})
	})

	return links
}

// relationType normalizes "Adaptation (Manga)" and "Adaptation:" to "Adaptation".
func relationType(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(reTailParens.ReplaceAllString(s, ""))
	return strings.TrimSpace(strings.TrimSuffix(s, ":"))
}
