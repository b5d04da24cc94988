package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/brogergvhs/malview/internal/overview"
)

type Markdown struct{}

func (Markdown) Ext() string { return "md" }

func (Markdown) Write(w io.Writer, ref overview.Ref, rec *overview.Record) error {
	md := markdown.NewMarkdown(w)

	title := rec.Title
	if title == "" {
		title = ref.String()
	}
	md.H1(title)
	md.PlainText("")

	if rec.Image != "" {
		md.PlainText(fmt.Sprintf("![%s](%s)", escape(title), rec.ImageLarge))
		md.PlainText("")
	}
	if rec.Description != "" {
		md.PlainText(rec.Description)
		md.PlainText("")
	}

	if len(rec.AlternativeTitle) > 0 {
		md.H2("Alternative Titles")
		md.PlainText("")
		md.BulletList(rec.AlternativeTitle...)
		md.PlainText("")
	}

	if len(rec.Statistics) > 0 {
		rows := make([][]string, 0, len(rec.Statistics))
		for _, s := range rec.Statistics {
			rows = append(rows, []string{escape(s.Title), escape(s.Body)})
		}
		md.H2("Statistics")
		md.PlainText("")
		md.Table(markdown.TableSet{Header: []string{"Statistic", "Value"}, Rows: rows})
		md.PlainText("")
	}

	if len(rec.Info) > 0 {
		rows := make([][]string, 0, len(rec.Info))
		for _, r := range rec.Info {
			rows = append(rows, []string{escape(r.Title), joinBodies(r.Body, mdBody)})
		}
		md.H2("Information")
		md.PlainText("")
		md.Table(markdown.TableSet{Header: []string{"Field", "Value"}, Rows: rows})
		md.PlainText("")
	}

	if len(rec.Characters) > 0 {
		items := make([]string, 0, len(rec.Characters))
		for _, c := range rec.Characters {
			item := link(c.Name, c.URL)
			if c.Subtext != "" {
				item += " (" + c.Subtext + ")"
			}
			items = append(items, item)
		}
		md.H2("Characters")
		md.PlainText("")
		md.BulletList(items...)
		md.PlainText("")
	}

	writeSongs(md, "Opening Songs", rec.OpeningSongs)
	writeSongs(md, "Ending Songs", rec.EndingSongs)

	if len(rec.Related) > 0 {
		items := make([]string, 0, len(rec.Related))
		for _, r := range rec.Related {
			links := make([]string, 0, len(r.Links))
			for _, l := range r.Links {
				links = append(links, link(l.Title, l.URL))
			}
			items = append(items, fmt.Sprintf("%s: %s", r.Type, strings.Join(links, ", ")))
		}
		md.H2("Related")
		md.PlainText("")
		md.BulletList(items...)
		md.PlainText("")
	}

	return md.Build()
}

func writeSongs(md *markdown.Markdown, heading string, songs []overview.Song) {
	if len(songs) == 0 {
		return
	}

	items := make([]string, 0, len(songs))
	for _, s := range songs {
		item := link(s.Title, s.URL)
		if s.Author != "" {
			item += " " + byline(s.Author)
		}
		if s.Episode != "" {
			item += " (" + s.Episode + ")"
		}
		items = append(items, item)
	}

	md.H2(heading)
	md.PlainText("")
	md.BulletList(items...)
	md.PlainText("")
}

func mdBody(b overview.InfoBody) string {
	if b.Kind == overview.BodyLink {
		s := link(b.Text, b.URL)
		if b.Subtext != "" {
			s += " (" + escape(b.Subtext) + ")"
		}
		return s
	}
	return escape(bodyText(b))
}

func link(text, url string) string {
	if url == "" {
		return escape(text)
	}
	return fmt.Sprintf("[%s](%s)", escape(text), url)
}

// escape keeps table cells intact.
func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
