package mal

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var errMissing = errors.New("not found on page")

// section returns the siblings following the <h2> titled name, up to the
// next <h2>.
func section(doc *goquery.Document, name string) (*goquery.Selection, error) {
	h := doc.Find("h2").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(baseText(s)) == name
	}).First()
	if h.Length() == 0 {
		return nil, fmt.Errorf("section %q: %w", name, errMissing)
	}

	return h.NextUntil("h2"), nil
}

// baseText is the text of s's own text nodes, without descendant elements.
func baseText(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if n := c.Get(0); n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
	})
	return b.String()
}

// eachMatch visits, in document order, every element of sel or below it
// that matches selector.
func eachMatch(sel *goquery.Selection, selector string, fn func(*goquery.Selection)) {
	sel.Each(func(_ int, s *goquery.Selection) {
		if s.Is(selector) {
			fn(s)
		}
		s.Find(selector).Each(func(_ int, c *goquery.Selection) { fn(c) })
	})
}

func absoluteLink(href, origin string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	base, err := url.Parse(origin + "/")
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}

	return base.ResolveReference(ref).String()
}

var (
	reWrapParens = regexp.MustCompile(`^\(|\)$`)
	reWrapQuotes = regexp.MustCompile(`^"|"$`)
	reTailParens = regexp.MustCompile(`\(.*\)$`)
)

func stripParens(s string) string {
	return strings.TrimSpace(reWrapParens.ReplaceAllString(strings.TrimSpace(s), ""))
}

func stripQuotes(s string) string {
	return reWrapQuotes.ReplaceAllString(strings.TrimSpace(s), "")
}

func normSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
