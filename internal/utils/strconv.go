package utils

import "strconv"

// ParseUint parses a path or query parameter ID; zero means missing or malformed.
func ParseUint(s string) uint {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}

// ParseInt parses an integer query parameter, falling back to def.
func ParseInt(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
