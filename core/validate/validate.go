// Package validate holds the pure format checks used by command handlers.
// Every function is total: it never fails, it only reports a boolean.
package validate

import "regexp"

var (
	commandRe = regexp.MustCompile(`^/[a-zA-Z][a-zA-Z0-9]*$`)
	emailRe   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	integerRe = regexp.MustCompile(`^\d+$`)
	decimalRe = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
	monthRe   = regexp.MustCompile(`^(0[1-9]|1[0-2])$`)
)

// IsCommandToken reports whether text is a slash command token: "/" followed
// by a letter and any run of letters or digits.
func IsCommandToken(text string) bool {
	return commandRe.MatchString(text)
}

// IsEmail reports whether text has the local@domain.tld shape. The domain
// requires a dot and the TLD at least two letters.
func IsEmail(text string) bool {
	return emailRe.MatchString(text)
}

// IsInteger reports whether text is a non-negative integer.
func IsInteger(text string) bool {
	return integerRe.MatchString(text)
}

// IsDecimal reports whether text is a non-negative number with up to two
// fractional digits.
func IsDecimal(text string) bool {
	return decimalRe.MatchString(text)
}

// IsMonth reports whether text is a zero-padded calendar month, 01 to 12.
func IsMonth(text string) bool {
	return monthRe.MatchString(text)
}
