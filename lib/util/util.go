// Package util contains helper functions used around the code.
package util

// In returns true if s is found in ss, false otherwise
func In(ss []string, s string) bool {
	for _, v := range ss {
		if s == v {
			return true
		}
	}
	return false
}

// Blank returns true if any of the given strings is empty. Only presence is checked, no trimming or format
// validation is applied.
func Blank(ss ...string) bool {
	return In(ss, "")
}

// Plural returns "s" when n is not 1.
func Plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
