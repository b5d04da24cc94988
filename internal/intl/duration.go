package intl

import "strings"

// Duration renders hours and minutes, e.g. "1 hour 55 minutes". Zero parts
// are left out; an all-zero duration renders as minutes.
func (l *Localizer) Duration(hours, minutes int) string {
	var parts []string
	if hours > 0 {
		parts = append(parts, l.printer.Sprintf(keyHours, hours))
	}
	if minutes > 0 || hours == 0 {
		parts = append(parts, l.printer.Sprintf(keyMinutes, minutes))
	}

	return strings.Join(parts, " ")
}
