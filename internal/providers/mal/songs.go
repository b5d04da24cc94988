package mal

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/malview/internal/overview"
)

const (
	// the site's own spelling
	openingSongsSelector = ".theme-songs.opnening"
	endingSongsSelector  = ".theme-songs.ending"
)

func songs(doc *goquery.Document, selector string) ([]overview.Song, error) {
	table := doc.Find(selector).First().Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%s: %w", selector, errMissing)
	}

	out := []overview.Song{}
	if table.Find("td").Length() <= 1 {
		return out, nil
	}

	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		youtube := tr.Find(`[id^="youtube_url_"]`).First()

		title := strings.TrimSpace(tr.Find(".theme-song-title").Text())
		if title == "" {
			title = strings.TrimSpace(baseText(youtube.Parent()))
		}

		url, _ := youtube.Attr("value")
		url = strings.Replace(strings.TrimSpace(url), "music.", "", 1)
		if url == "" {
			url, _ = tr.Find(`[id^="spotify_url_"]`).First().Attr("value")
			url = strings.TrimSpace(url)
		}

		out = append(out, overview.Song{
			Title:   stripQuotes(title),
			Author:  strings.TrimSpace(tr.Find(".theme-song-artist").Text()),
			Episode: stripParens(tr.Find(".theme-song-episode").Text()),
			URL:     url,
		})
	})

	return out, nil
}
