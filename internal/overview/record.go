package overview

import "time"

// Record is the structured summary of one title's overview page. Every
// field is always present; extraction failures leave the empty value.
type Record struct {
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Image            string      `json:"image"`
	ImageLarge       string      `json:"imageLarge"`
	AlternativeTitle []string    `json:"alternativeTitle"`
	Characters       []Character `json:"characters"`
	Statistics       []Statistic `json:"statistics"`
	Info             []InfoRow   `json:"info"`
	OpeningSongs     []Song      `json:"openingSongs"`
	EndingSongs      []Song      `json:"endingSongs"`
	Related          []Related   `json:"related"`
}

// NewRecord returns a record with every sequence initialized to empty.
func NewRecord() *Record {
	return &Record{
		AlternativeTitle: []string{},
		Characters:       []Character{},
		Statistics:       []Statistic{},
		Info:             []InfoRow{},
		OpeningSongs:     []Song{},
		EndingSongs:      []Song{},
		Related:          []Related{},
	}
}

type Character struct {
	Image   string `json:"img"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	Subtext string `json:"subtext"`
}

type Statistic struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type InfoRow struct {
	Title string     `json:"title"`
	Body  []InfoBody `json:"body"`
}

type BodyKind string

const (
	BodyText BodyKind = "text"
	BodyLink BodyKind = "link"
	BodyDate BodyKind = "date"
)

// InfoBody is one value of an info row. Kind selects which fields are set:
// text only, text with a link (and optional subtext), or a resolved date.
type InfoBody struct {
	Kind    BodyKind   `json:"kind"`
	Text    string     `json:"text,omitempty"`
	URL     string     `json:"url,omitempty"`
	Subtext string     `json:"subtext,omitempty"`
	Date    *time.Time `json:"date,omitempty"`
	Type    string     `json:"type,omitempty"`
}

func TextBody(text string) InfoBody {
	return InfoBody{Kind: BodyText, Text: text}
}

func LinkBody(text, url string) InfoBody {
	return InfoBody{Kind: BodyLink, Text: text, URL: url}
}

// WeektimeBody is a broadcast slot resolved to its next occurrence.
func WeektimeBody(t time.Time) InfoBody {
	return InfoBody{Kind: BodyDate, Date: &t, Type: "weektime"}
}

type Song struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	Episode string `json:"episode"`
	URL     string `json:"url,omitempty"`
}

type Related struct {
	Type  string        `json:"type"`
	Links []RelatedLink `json:"links"`
}

type RelatedLink struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Type  string `json:"type"`
	ID    int    `json:"id"`
}
