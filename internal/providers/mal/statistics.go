package mal

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/malview/internal/overview"
)

const maxStatistics = 5

func (p *Provider) statistics(doc *goquery.Document) ([]overview.Statistic, error) {
	sec, err := section(doc, "Statistics")
	if err != nil {
		return nil, err
	}

	out := []overview.Statistic{}
	divs := sec.Filter("div")
	divs.Slice(0, min(maxStatistics, divs.Length())).Each(func(_ int, s *goquery.Selection) {
		title := s.Find(".dark_text").Text()

		body := baseText(s)
		if rating := s.Find("span[itemprop=ratingValue]"); rating.Length() > 0 {
			body = rating.Text()
		}

		out = append(out, overview.Statistic{
			Title: p.loc.TranslateTitle(title),
			Body:  strings.TrimSpace(body),
		})
	})

	return out, nil
}
