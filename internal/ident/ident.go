// Package ident turns sheet names, column headers, and file names into SQL
// identifiers.
package ident

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrEmptyIdentifier is returned when sanitizing leaves nothing usable.
var ErrEmptyIdentifier = errors.New("identifier is empty after sanitizing")

var (
	nonWord    = regexp.MustCompile(`[^A-Za-z0-9_]+`)
	whitespace = regexp.MustCompile(`\s+`)
)

// ToIdentifier rewrites input so it matches [A-Za-z0-9_]*.
//
// Every '#' becomes "id", each run of other characters becomes one space,
// the result is trimmed, and remaining space runs become '_'. Case is kept.
// ToIdentifier(ToIdentifier(s)) == ToIdentifier(s) for any s. The result may
// be empty; see SQLName.
func ToIdentifier(input string) string {
	s := strings.ReplaceAll(input, "#", "id")
	s = nonWord.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return whitespace.ReplaceAllString(s, "_")
}

// PathToIdentifier sanitizes the base name of path without its extension.
func PathToIdentifier(path string) string {
	base := filepath.Base(path)
	return ToIdentifier(strings.TrimSuffix(base, filepath.Ext(base)))
}

// SQLName is the lower-cased identifier used in DDL and DML. It fails with
// ErrEmptyIdentifier when nothing survives sanitizing.
func SQLName(input string) (string, error) {
	s := strings.ToLower(ToIdentifier(input))
	if s == "" {
		return "", ErrEmptyIdentifier
	}
	return s, nil
}

// FoldAccents strips combining marks so "Příjmení" sanitizes to "Prijmeni"
// instead of losing the accented letters.
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
