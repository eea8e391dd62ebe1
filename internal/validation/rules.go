// Package validation holds the syntactic checks used by the lead form.
package validation

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	emailPattern = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$")
	namePattern  = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)
	zipPattern   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	priceStrip   = strings.NewReplacer("$", "", ",", "", " ", "", "\t", "")
	unsafeStrip  = strings.NewReplacer("<", "", ">", "")
)

const (
	minPhoneDigits = 10
	maxPhoneDigits = 15
)

// Phone accepts US (10 digit) and international (up to 15 digit) numbers in any punctuation.
func Phone(phone string) bool {
	n := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n >= minPhoneDigits && n <= maxPhoneDigits
}

// Email checks structure only; the domain needs at least one dot.
func Email(email string) bool {
	return emailPattern.MatchString(email)
}

// Name allows letters, spaces, hyphens, and apostrophes, at least two characters.
func Name(name string) bool {
	return len(name) >= 2 && namePattern.MatchString(name)
}

// ZipCode accepts 12345 and 12345-6789.
func ZipCode(zip string) bool {
	return zipPattern.MatchString(zip)
}

// Address is a loose sanity check: long enough, with a number and a letter.
func Address(address string) bool {
	trimmed := strings.TrimSpace(address)
	if len(trimmed) < 10 {
		return false
	}
	return strings.IndexFunc(trimmed, unicode.IsDigit) >= 0 && strings.IndexFunc(trimmed, unicode.IsLetter) >= 0
}

// Price accepts positive amounts written with optional $, commas and spaces.
func Price(price string) bool {
	cleaned := priceStrip.Replace(price)
	if cleaned == "" {
		return false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	return err == nil && v > 0 && !math.IsInf(v, 0)
}

// Sanitize trims and drops angle brackets.
func Sanitize(input string) string {
	return unsafeStrip.Replace(strings.TrimSpace(input))
}

// IsEmpty reports whether value is blank after trimming.
func IsEmpty(value string) bool {
	return strings.TrimSpace(value) == ""
}

// Length checks the trimmed length (in characters) against an inclusive range.
func Length(value string, min, max int) bool {
	n := len([]rune(strings.TrimSpace(value)))
	return n >= min && n <= max
}
