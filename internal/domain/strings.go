package domain

import "strings"

// containsFold — регистронезависимый поиск подстроки.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
