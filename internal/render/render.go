// Package render writes overview records as JSON, Markdown or plain text.
package render

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/brogergvhs/malview/internal/overview"
)

type Writer interface {
	Write(w io.Writer, ref overview.Ref, rec *overview.Record) error
	Ext() string
}

func For(format string) (Writer, error) {
	switch strings.ToLower(format) {
	case "json":
		return JSON{}, nil
	case "markdown", "md":
		return Markdown{}, nil
	case "text", "txt":
		return Text{}, nil
	}

	return nil, fmt.Errorf("unknown format %q", format)
}

var reUnderscore = regexp.MustCompile(`_+`)

func sanitize(s string) string {
	s = strings.ToLower(s)

	repl := strings.NewReplacer(
		"•", "_", "-", "_", "—", "_", "–", "_",
		"/", "_", "\\", "_", ".", "_", " ", "_", ":", "_",
		"(", "", ")", "",
	)
	s = repl.Replace(s)

	clean := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			clean = append(clean, r)
		}
	}

	return strings.Trim(reUnderscore.ReplaceAllString(string(clean), "_"), "_")
}

// FileName is "<type>_<id>[_<title>].<ext>".
func FileName(ref overview.Ref, rec *overview.Record, w Writer) string {
	base := fmt.Sprintf("%s_%d", ref.Type, ref.ID)
	if rec != nil {
		if t := sanitize(rec.Title); t != "" {
			base += "_" + t
		}
	}
	return base + "." + w.Ext()
}

// bodyText flattens an info body for text output.
func bodyText(b overview.InfoBody) string {
	switch b.Kind {
	case overview.BodyDate:
		if b.Date == nil {
			return ""
		}
		return b.Date.Format("Mon Jan 2 15:04 MST")
	}

	s := b.Text
	if b.Subtext != "" {
		s += " (" + b.Subtext + ")"
	}
	return s
}

func joinBodies(bs []overview.InfoBody, format func(overview.InfoBody) string) string {
	parts := make([]string, 0, len(bs))
	for _, b := range bs {
		if s := format(b); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}


// byline prefixes an artist credit with "by" unless the site already did.
func byline(author string) string {
	if strings.HasPrefix(strings.ToLower(author), "by ") {
		return author
	}
	return "by " + author
}
