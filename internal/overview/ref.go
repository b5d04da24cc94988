package overview

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type ContentType string

const (
	Anime ContentType = "anime"
	Manga ContentType = "manga"
)

func ParseContentType(s string) (ContentType, error) {
	switch ContentType(strings.ToLower(strings.TrimSpace(s))) {
	case Anime:
		return Anime, nil
	case Manga:
		return Manga, nil
	}

	return "", fmt.Errorf("unknown content type %q (want anime or manga)", s)
}

// Ref identifies one title on the site.
type Ref struct {
	Type ContentType
	ID   int
}

func (r Ref) String() string {
	return fmt.Sprintf("%s/%d", r.Type, r.ID)
}

// URL builds the overview page address below origin.
func (r Ref) URL(origin string) string {
	return fmt.Sprintf("%s/%s/%d", strings.TrimRight(origin, "/"), r.Type, r.ID)
}

func NewRef(contentType string, id int) (Ref, error) {
	t, err := ParseContentType(contentType)
	if err != nil {
		return Ref{}, err
	}
	if id <= 0 {
		return Ref{}, fmt.Errorf("invalid id %d", id)
	}

	return Ref{Type: t, ID: id}, nil
}

type UnsupportedURLError struct {
	URL string
}

func (e *UnsupportedURLError) Error() string {
	return "url not supported: " + e.URL
}

var reOverviewURL = regexp.MustCompile(`(?i)myanimelist\.net/(anime|manga)/\d*`)

// ParseURL extracts type and id from an overview page URL. Type and id are
// the third and fourth slash-separated segments.
func ParseURL(raw string) (Ref, error) {
	if !reOverviewURL.MatchString(raw) {
		return Ref{}, &UnsupportedURLError{URL: raw}
	}

	t, err := ParseContentType(URLPart(raw, 3))
	if err != nil {
		return Ref{}, &UnsupportedURLError{URL: raw}
	}
	id, err := strconv.Atoi(URLPart(raw, 4))
	if err != nil || id <= 0 {
		return Ref{}, &UnsupportedURLError{URL: raw}
	}

	return Ref{Type: t, ID: id}, nil
}

// URLPart returns the n-th "/"-separated segment of u, or "" when absent.
// For "https://host/anime/1/x", 3 is "anime" and 4 is "1".
func URLPart(u string, n int) string {
	parts := strings.Split(u, "/")
	if n < 0 || n >= len(parts) {
		return ""
	}

	return parts[n]
}
