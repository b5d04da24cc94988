// Package selection expands the --range and --ids flags into title ids.
package selection

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// MaxRange bounds a single range so a typo does not queue millions of fetches.
const MaxRange = 1000

// IDs returns the ids named by rng ("1-20") followed by list ("1,5,9"),
// deduplicated in first-seen order.
func IDs(rng, list string) ([]int, error) {
	var out []int

	if strings.TrimSpace(rng) != "" {
		ids, err := Range(rng)
		if err != nil {
			return nil, err
		}
		out = append(out, ids...)
	}

	if strings.TrimSpace(list) != "" {
		ids, err := List(list)
		if err != nil {
			return nil, err
		}
		out = append(out, ids...)
	}

	return dedupe(out), nil
}

func Range(rng string) ([]int, error) {
	parts := strings.Split(rng, "-")
	if len(parts) != 2 {
		return nil, fmt.Errorf("range %q: want start-end", rng)
	}

	start, err1 := atoi(parts[0])
	end, err2 := atoi(parts[1])
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("range %q: not a number", rng)
	}
	if start <= 0 || start > end {
		return nil, fmt.Errorf("range %q: want 0 < start <= end", rng)
	}
	if end-start+1 > MaxRange {
		return nil, fmt.Errorf("range %q: more than %d ids", rng, MaxRange)
	}

	out := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		out = append(out, i)
	}
	return out, nil
}

func List(list string) ([]int, error) {
	var out []int
	for p := range strings.SplitSeq(list, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.Atoi(p)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("id %q: want a positive number", p)
		}
		out = append(out, id)
	}
	return out, nil
}

// Exclude drops every id named by rng or list from ids.
func Exclude(ids []int, rng, list string) ([]int, error) {
	drop, err := IDs(rng, list)
	if err != nil {
		return nil, err
	}

	return slices.DeleteFunc(slices.Clone(ids), func(id int) bool {
		return slices.Contains(drop, id)
	}), nil
}

func dedupe(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
