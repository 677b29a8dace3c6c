package util

import (
	"strconv"
)

// ParseIndex parses a non-negative path index such as a module or lesson position.
func ParseIndex(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ParsePositiveInt returns def when s is empty or not a positive integer.
func ParsePositiveInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
