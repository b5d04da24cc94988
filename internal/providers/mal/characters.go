package mal

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/malview/internal/overview"
)

// reThumbSize is the resize segment of thumbnail URLs ("/r/42x62").
var reThumbSize = regexp.MustCompile(`/r/\d*x\d*`)

func (p *Provider) characters(doc *goquery.Document) ([]overview.Character, error) {
	list := doc.Find(".detail-characters-list").First()
	if list.Length() == 0 {
		return nil, fmt.Errorf("characters: %w", errMissing)
	}

	out := []overview.Character{}
	list.Find(":not(td) > table").Each(func(_ int, t *goquery.Selection) {
		img, _ := t.Find("img").First().Attr("data-src")
		if reThumbSize.MatchString(img) {
			img = reThumbSize.ReplaceAllString(img, "")
		} else {
			img = ""
		}

		cell := t.Find(".borderClass .spaceit_pad").First().Parent()
		link := cell.Find("a").First()
		href, _ := link.Attr("href")

		out = append(out, overview.Character{
			Image:   img,
			Name:    strings.TrimSpace(link.Text()),
			URL:     absoluteLink(href, p.opts.Origin),
			Subtext: strings.TrimSpace(cell.Find(".spaceit_pad").First().Text()),
		})
	})

	return out, nil
}
