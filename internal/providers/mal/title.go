package mal

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func (p *Provider) title(doc *goquery.Document) (string, error) {
	canonical := canonicalTitle(doc)

	if p.englishTitle() {
		if en := strings.TrimSpace(doc.Find(".title-english").First().Text()); en != "" {
			return en, nil
		}
	}

	if canonical == "" {
		return "", fmt.Errorf("title: %w", errMissing)
	}
	return canonical, nil
}

func (p *Provider) englishTitle() bool {
	if p.opts.EnglishTitle {
		return true
	}
	return p.opts.PreferEnglish != nil && p.opts.PreferEnglish()
}

// canonicalTitle reads the main heading; manga pages put the English title
// after a <br> inside the same element, so only the leading text counts.
func canonicalTitle(doc *goquery.Document) string {
	if t := strings.TrimSpace(doc.Find("h1.title-name").First().Text()); t != "" {
		return t
	}

	var b strings.Builder
	doc.Find("[itemprop=name]").First().Contents().EachWithBreak(func(_ int, c *goquery.Selection) bool {
		if goquery.NodeName(c) == "br" {
			return false
		}
		b.WriteString(c.Text())
		return true
	})

	return strings.TrimSpace(b.String())
}

func description(doc *goquery.Document) (string, error) {
	sel := doc.Find("[itemprop=description]").First()
	if sel.Length() == 0 {
		return "", fmt.Errorf("description: %w", errMissing)
	}

	var b strings.Builder
	sel.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "br" {
			b.WriteString("\n")
			return
		}
		b.WriteString(c.Text())
	})

	lines := strings.Split(strings.ReplaceAll(b.String(), "\r", ""), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, l)
	}

	return strings.TrimSpace(strings.Join(out, "\n")), nil
}

type images struct {
	small string
	large string
}

// image reads og:image; the large variant inserts "l" before the extension.
func image(doc *goquery.Document) (images, error) {
	src, _ := doc.Find(`meta[property="og:image"]`).First().Attr("content")
	src = strings.TrimSpace(src)
	if src == "" {
		return images{}, fmt.Errorf("og:image: %w", errMissing)
	}

	u, err := url.Parse(src)
	if err != nil {
		return images{small: src, large: src}, nil
	}

	ext := path.Ext(u.Path)
	if ext == "" {
		return images{small: src, large: src}, nil
	}

	u.Path = strings.TrimSuffix(u.Path, ext) + "l" + ext
	return images{small: src, large: u.String()}, nil
}

func alternativeTitles(doc *goquery.Document) ([]string, error) {
	sec, err := section(doc, "Alternative Titles")
	if err != nil {
		return nil, err
	}

	out := []string{}
	eachMatch(sec, ".spaceit_pad", func(s *goquery.Selection) {
		if t := strings.TrimSpace(baseText(s)); t != "" {
			out = append(out, t)
		}
	})

	return out, nil
}
