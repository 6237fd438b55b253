package csv

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// encodings maps accepted source encoding names to decoders. UTF-8 has no
// entry: bytes pass through untouched.
var encodings = map[string]encoding.Encoding{
	"utf-16":       unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	"utf-16le":     unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf-16be":     unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	"windows-1250": charmap.Windows1250,
	"windows-1252": charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso-8859-2":   charmap.ISO8859_2,
}

// Encodings lists every accepted encoding name, sorted.
func Encodings() []string {
	out := []string{"utf-8"}
	for name := range encodings {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// normalizeEncoding lower-cases name and folds common aliases.
func normalizeEncoding(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "", "utf8":
		return "utf-8"
	case "latin1", "latin-1":
		return "iso-8859-1"
	case "latin2", "latin-2":
		return "iso-8859-2"
	case "cp1250":
		return "windows-1250"
	case "cp1252":
		return "windows-1252"
	}
	return n
}

// CheckEncoding reports whether name is an accepted source encoding.
func CheckEncoding(name string) error {
	_, err := decoder(name)
	return err
}

// decoder returns the decoding for name; nil means UTF-8 passthrough.
func decoder(name string) (encoding.Encoding, error) {
	n := normalizeEncoding(name)
	if n == "utf-8" {
		return nil, nil
	}
	enc, ok := encodings[n]
	if !ok {
		return nil, fmt.Errorf("unknown encoding %q (want one of %s)", name, strings.Join(Encodings(), ", "))
	}
	return enc, nil
}

// decode wraps r so it yields UTF-8.
func decode(r io.Reader, name string) (io.Reader, error) {
	enc, err := decoder(name)
	if err != nil || enc == nil {
		return r, err
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}
