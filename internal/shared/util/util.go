package util

import (
	"path"
	"sort"
	"strings"
)

// NormalizePath cleans a repository-relative path to forward-slash form.
func NormalizePath(s string) string {
	trimmed := strings.TrimSpace(strings.ReplaceAll(s, "\\", "/"))
	clean := path.Clean(trimmed)
	if clean == "." {
		return ""
	}
	return strings.TrimPrefix(clean, "./")
}

// SortedStringKeys returns the map's keys in sorted order.
func SortedStringKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// SortedStringSet deduplicates and sorts the given values.
func SortedStringSet(values []string) []string {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		set[v] = true
	}
	return SortedStringKeys(set)
}
