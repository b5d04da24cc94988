package mal

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/malview/internal/intl"
	"github.com/brogergvhs/malview/internal/overview"
)

var (
	reWeektime = regexp.MustCompile(`(?i)(\w+)\s+at\s+(\d{2}:\d{2})\s+\(JST\)`)
	reDuration = regexp.MustCompile(`(?i)(\d+)\s*(hr|min|sec)`)
)

// info reads the "Information" sidebar. Each row is copied before its label
// and links are stripped, leaving the document untouched.
func (p *Provider) info(doc *goquery.Document) ([]overview.InfoRow, error) {
	sec, err := section(doc, "Information")
	if err != nil {
		return nil, err
	}

	now := p.opts.Now()
	out := []overview.InfoRow{}

	sec.Filter("div").Each(func(_ int, s *goquery.Selection) {
		row := s.Clone()

		label := strings.TrimSpace(row.Find(".dark_text").Text())
		row.Find(".dark_text").Remove()

		var links []overview.InfoBody
		row.Find("a").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			links = append(links, overview.LinkBody(strings.TrimSpace(a.Text()), absoluteLink(href, p.opts.Origin)))
		})

		row.Find("a, span").Remove()
		texts := strings.Split(row.Text(), ",")

		var body []overview.InfoBody
		switch {
		case len(links) == 0:
			body = make([]overview.InfoBody, 0, len(texts))
			for _, t := range texts {
				if m := reWeektime.FindStringSubmatch(t); m != nil {
					if at, ok := intl.NextWeektime(m[1], m[2], now); ok {
						body = append(body, overview.WeektimeBody(at))
						continue
					}
				}
				body = append(body, overview.TextBody(strings.TrimSpace(t)))
			}
		case len(links) == len(texts):
			for i := range links {
				links[i].Subtext = stripParens(texts[i])
			}
			body = links
		default:
			body = links
		}

		switch strings.TrimSuffix(label, ":") {
		case "Aired", "Published":
			body = []overview.InfoBody{overview.TextBody(p.dateText(body))}
		case "Duration":
			if text, ok := p.durationText(body); ok {
				body = []overview.InfoBody{overview.TextBody(text)}
			}
		}

		out = append(out, overview.InfoRow{
			Title: p.loc.TranslateTitle(label),
			Body:  body,
		})
	})

	if ext, ok := p.externalLinks(doc); ok {
		out = append(out, ext)
	}

	return out, nil
}

// dateText renders an air/publish date or, for " to " ranges, both ends.
func (p *Provider) dateText(body []overview.InfoBody) string {
	parts := make([]string, 0, len(body))
	for _, b := range body {
		parts = append(parts, strings.TrimSpace(b.Text))
	}
	raw := normSpace(strings.Join(parts, ", "))

	if start, end, ok := strings.Cut(raw, " to "); ok {
		return p.loc.RangeText(start, end)
	}

	return p.loc.DateText(raw)
}

// durationText handles "24 min. per ep." and "1 hr. 55 min."; text with no
// hour or minute amount is left alone.
func (p *Provider) durationText(body []overview.InfoBody) (string, bool) {
	if len(body) == 0 {
		return "", false
	}

	var hours, minutes int
	found := false
	for _, m := range reDuration.FindAllStringSubmatch(body[0].Text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		switch strings.ToLower(m[2]) {
		case "hr":
			hours, found = n, true
		case "min":
			minutes, found = n, true
		}
	}
	if !found {
		return "", false
	}

	return p.loc.Duration(hours, minutes), true
}

func (p *Provider) externalLinks(doc *goquery.Document) (overview.InfoRow, bool) {
	sec, err := section(doc, "External Links")
	if err != nil {
		return overview.InfoRow{}, false
	}

	body := []overview.InfoBody{}
	sec.Filter("div").First().Find("a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		body = append(body, overview.LinkBody(normSpace(a.Text()), absoluteLink(href, p.opts.Origin)))
	})
	if len(body) == 0 {
		return overview.InfoRow{}, false
	}

	title, _ := p.loc.Label("External Links")
	return overview.InfoRow{Title: title, Body: body}, true
}
