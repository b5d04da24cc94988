package intl

import (
	"strconv"
	"strings"
	"time"
)

// JST has no daylight saving time, so a fixed zone avoids depending on tzdata.
var JST = time.FixedZone("JST", 9*60*60)

// NextWeektime resolves a broadcast slot such as ("Saturdays", "01:30") in
// JST to its next occurrence at or after now.
func NextWeektime(day, clock string, now time.Time) (time.Time, bool) {
	wd, ok := parseWeekday(day)
	if !ok {
		return time.Time{}, false
	}

	hh, mm, ok := strings.Cut(clock, ":")
	if !ok {
		return time.Time{}, false
	}
	hour, err1 := strconv.Atoi(hh)
	minute, err2 := strconv.Atoi(mm)
	if err1 != nil || err2 != nil || hour > 23 || minute > 59 {
		return time.Time{}, false
	}

	local := now.In(JST)
	delta := (int(wd) - int(local.Weekday()) + 7) % 7
	next := time.Date(local.Year(), local.Month(), local.Day()+delta, hour, minute, 0, 0, JST)
	if next.Before(local) {
		next = next.AddDate(0, 0, 7)
	}

	return next, true
}

func parseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, "s")
	if len(s) < 3 {
		return 0, false
	}

	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.HasPrefix(strings.ToLower(d.String()), s) {
			return d, true
		}
	}

	return 0, false
}
