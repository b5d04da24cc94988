package settings

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
)

//go:embed defaults.json
var defaultsJSON []byte

// KeyPrefix namespaces option keys in the backend.
const KeyPrefix = "settings/"

const masked = "********"

// ForceEnglishTitles makes the title extractor prefer the English title.
const ForceEnglishTitles = "forceEnglishTitles"

var reSecretKey = regexp.MustCompile(`(?i)(token|refresh)`)

// Defaults returns a fresh copy of every defined option and its default.
func Defaults() map[string]any {
	var m map[string]any
	if err := json.Unmarshal(defaultsJSON, &m); err != nil {
		panic(fmt.Sprintf("settings: bad defaults: %v", err))
	}
	return m
}

// Names lists the defined options, sorted.
func Names() []string {
	d := Defaults()
	out := make([]string, 0, len(d))
	for k := range d {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Mask hides set values of credential options. Unset values (nil, "",
// false, 0) are shown as they are.
func Mask(name string, v any) any {
	if !reSecretKey.MatchString(name) || unset(v) {
		return v
	}
	return masked
}

func unset(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case float64:
		return x == 0
	case int:
		return x == 0
	}
	return false
}

// normalize maps any JSON-encodable value onto the types produced by
// decoding JSON into any, so cached and reloaded values compare equal.
func normalize(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return decode(b)
}

func decode(raw []byte) (any, error) {
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
