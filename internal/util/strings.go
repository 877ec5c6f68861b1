// Package util holds small helpers shared by cranewatch packages.
package util

import "strings"

// CleanList trims every entry, drops empty ones and removes duplicates while
// preserving first-seen order. Returns nil when nothing is left.
func CleanList(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(s))
	result := make([]string, 0, len(s))
	for _, v := range s {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, exists := seen[v]; !exists {
			seen[v] = struct{}{}
			result = append(result, v)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
