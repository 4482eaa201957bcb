// Package util provides small string helpers shared by the command and
// display layers.
package util

import "strconv"

// Pluralize returns singular if count is 1, otherwise plural.
func Pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

// CountOf renders "1 endpoint" or "3 endpoints".
func CountOf(count int, singular, plural string) string {
	return strconv.Itoa(count) + " " + Pluralize(count, singular, plural)
}
