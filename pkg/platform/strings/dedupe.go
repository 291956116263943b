// Package strings provides string and name helpers shared by the
// duplicate detector and the HTTP layer.
package strings

import (
	"strings"
)

// Dedupe removes repeated values from a slice. Order of first
// occurrence is preserved.
func Dedupe[T comparable](values []T) []T {
	if len(values) == 0 {
		return values
	}
	seen := make(map[T]struct{}, len(values))
	result := make([]T, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

// SplitList splits raw on sep, trims every item and drops blank and
// repeated ones. An empty raw yields nil.
//
//	SplitList(" kafka-1:9092,, kafka-2:9092, kafka-1:9092", ",")
//	// []string{"kafka-1:9092", "kafka-2:9092"}
func SplitList(raw, sep string) []string {
	var items []string
	for _, part := range strings.Split(raw, sep) {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return Dedupe(items)
}
