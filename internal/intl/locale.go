// Package intl turns the raw strings found on overview pages into
// localized, human readable text: sidebar labels, air dates and ranges,
// durations and broadcast slots.
package intl

import (
	"strings"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var supported = []language.Tag{
	language.English,
	language.German,
	language.French,
}

var matcher = language.NewMatcher(supported)

// Localizer formats text for one matched language. It is immutable and
// safe for concurrent use.
type Localizer struct {
	tag     language.Tag
	base    string
	printer *message.Printer
}

// New matches locale (a BCP 47 tag such as "de-AT") against the supported
// languages, falling back to English.
func New(locale string) *Localizer {
	tag := language.English
	if strings.TrimSpace(locale) != "" {
		if parsed, err := language.Parse(locale); err == nil {
			_, idx, _ := matcher.Match(parsed)
			tag = supported[idx]
		}
	}

	base, _ := tag.Base()

	return &Localizer{
		tag:     tag,
		base:    base.String(),
		printer: message.NewPrinter(tag, message.Catalog(durationCatalog)),
	}
}

// Label returns the translation of a sidebar label such as "Aired".
func (l *Localizer) Label(key string) (string, bool) {
	t, ok := labels[l.base][key]
	if !ok {
		t, ok = labels["en"][key]
	}

	return t, ok
}

// TranslateTitle translates a raw label like "Score:"; labels without a
// translation are returned unchanged.
func (l *Localizer) TranslateTitle(raw string) string {
	clear := strings.TrimSpace(strings.Replace(raw, ":", "", 1))
	if t, ok := l.Label(clear); ok {
		return t
	}

	return raw
}

const (
	keyHours   = "%d hours"
	keyMinutes = "%d minutes"
)

var durationCatalog = buildDurationCatalog()

func buildDurationCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))

	set := func(tag language.Tag, key, one, other string) {
		_ = b.Set(tag, key, plural.Selectf(1, "%d", "=1", one, "other", other))
	}

	set(language.English, keyHours, "%d hour", "%d hours")
	set(language.English, keyMinutes, "%d minute", "%d minutes")
	set(language.German, keyHours, "%d Stunde", "%d Stunden")
	set(language.German, keyMinutes, "%d Minute", "%d Minuten")
	set(language.French, keyHours, "%d heure", "%d heures")
	set(language.French, keyMinutes, "%d minute", "%d minutes")

	return b
}

var labels = map[string]map[string]string{
	"en": {
		"Score":          "Score",
		"Ranked":         "Ranked",
		"Popularity":     "Popularity",
		"Members":        "Members",
		"Favorites":      "Favorites",
		"Type":           "Type",
		"Episodes":       "Episodes",
		"Volumes":        "Volumes",
		"Chapters":       "Chapters",
		"Status":         "Status",
		"Aired":          "Aired",
		"Published":      "Published",
		"Premiered":      "Premiered",
		"Broadcast":      "Broadcast",
		"Producers":      "Producers",
		"Licensors":      "Licensors",
		"Studios":        "Studios",
		"Source":         "Source",
		"Genres":         "Genres",
		"Genre":          "Genre",
		"Themes":         "Themes",
		"Theme":          "Theme",
		"Demographic":    "Demographic",
		"Duration":       "Duration",
		"Rating":         "Rating",
		"Serialization":  "Serialization",
		"Authors":        "Authors",
		"External Links": "External Links",
	},
	"de": {
		"Score":          "Bewertung",
		"Ranked":         "Rang",
		"Popularity":     "Beliebtheit",
		"Members":        "Mitglieder",
		"Favorites":      "Favoriten",
		"Type":           "Typ",
		"Episodes":       "Episoden",
		"Volumes":        "Bände",
		"Chapters":       "Kapitel",
		"Aired":          "Ausgestrahlt",
		"Published":      "Veröffentlicht",
		"Broadcast":      "Sendezeit",
		"Studios":        "Studios",
		"Source":         "Quelle",
		"Genres":         "Genres",
		"Duration":       "Dauer",
		"Rating":         "Altersfreigabe",
		"Authors":        "Autoren",
		"External Links": "Externe Links",
	},
	"fr": {
		"Score":          "Note",
		"Ranked":         "Classement",
		"Popularity":     "Popularité",
		"Members":        "Membres",
		"Favorites":      "Favoris",
		"Episodes":       "Épisodes",
		"Aired":          "Diffusé",
		"Published":      "Publié",
		"Duration":       "Durée",
		"External Links": "Liens externes",
	},
}
