package domain

import (
	"sort"
	"strings"
)

// RegisterTags merges tags into the sorted registry and reports whether it changed.
func RegisterTags(registry []string, tags ...string) ([]string, bool) {
	out := append([]string(nil), registry...)
	changed := false
	for _, tag := range NormalizeTags(tags) {
		if HasTag(out, tag) {
			continue
		}
		out = append(out, tag)
		changed = true
	}
	if changed {
		sort.Strings(out)
	}
	return out, changed
}

// SuggestTags returns registry entries starting with prefix, case-insensitively.
func SuggestTags(registry []string, prefix string) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	out := []string{}
	for _, tag := range registry {
		if strings.HasPrefix(strings.ToLower(tag), prefix) {
			out = append(out, tag)
		}
	}
	return out
}
