package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/brogergvhs/malview/internal/overview"
)

type Text struct{}

func (Text) Ext() string { return "txt" }

func (Text) Write(w io.Writer, ref overview.Ref, rec *overview.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "%s\t%s\n", "Title", rec.Title)
	fmt.Fprintf(tw, "%s\t%s\n", "Ref", ref)
	if len(rec.AlternativeTitle) > 0 {
		fmt.Fprintf(tw, "%s\t%s\n", "Also known as", strings.Join(rec.AlternativeTitle, "; "))
	}
	for _, s := range rec.Statistics {
		fmt.Fprintf(tw, "%s\t%s\n", s.Title, s.Body)
	}
	for _, r := range rec.Info {
		fmt.Fprintf(tw, "%s\t%s\n", r.Title, joinBodies(r.Body, bodyText))
	}
	for _, s := range rec.OpeningSongs {
		fmt.Fprintf(tw, "%s\t%s\n", "Opening", songLine(s))
	}
	for _, s := range rec.EndingSongs {
		fmt.Fprintf(tw, "%s\t%s\n", "Ending", songLine(s))
	}
	for _, r := range rec.Related {
		titles := make([]string, 0, len(r.Links))
		for _, l := range r.Links {
			titles = append(titles, l.Title)
		}
		fmt.Fprintf(tw, "%s\t%s\n", r.Type, strings.Join(titles, ", "))
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	if rec.Description != "" {
		_, err := fmt.Fprintf(w, "\n%s\n", rec.Description)
		return err
	}
	return nil
}

func songLine(s overview.Song) string {
	line := s.Title
	if s.Author != "" {
		line += " " + byline(s.Author)
	}
	if s.Episode != "" {
		line += " (" + s.Episode + ")"
	}
	return line
}
