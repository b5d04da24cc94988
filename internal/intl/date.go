package intl

import (
	"strings"
	"time"
)

type precision int

const (
	precisionYear precision = iota
	precisionMonth
	precisionDay
)

var parseLayouts = []struct {
	layout string
	prec   precision
}{
	{"Jan 2, 2006", precisionDay},
	{"Jan 2006", precisionMonth},
	{"2006", precisionYear},
}

var formatLayouts = map[string]map[precision]string{
	"en": {precisionDay: "Jan 2, 2006", precisionMonth: "Jan 2006", precisionYear: "2006"},
	"de": {precisionDay: "2.1.2006", precisionMonth: "1.2006", precisionYear: "2006"},
	"fr": {precisionDay: "02/01/2006", precisionMonth: "01/2006", precisionYear: "2006"},
}

func parseDate(s string) (time.Time, precision, bool) {
	s = strings.Join(strings.Fields(s), " ")
	for _, p := range parseLayouts {
		if t, err := time.Parse(p.layout, s); err == nil {
			return t, p.prec, true
		}
	}

	return time.Time{}, 0, false
}

// DateText reformats a page date ("Apr 3, 2020", "Apr 2020", "2020") for the
// locale. Anything unparseable ("?", "Not available") is returned trimmed.
func (l *Localizer) DateText(raw string) string {
	t, prec, ok := parseDate(raw)
	if !ok {
		return strings.TrimSpace(raw)
	}

	layouts, ok := formatLayouts[l.base]
	if !ok {
		layouts = formatLayouts["en"]
	}

	return t.Format(layouts[prec])
}

// RangeText renders "start – end" with both ends localized.
func (l *Localizer) RangeText(start, end string) string {
	return l.DateText(start) + " – " + l.DateText(end)
}
