package fetch

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const (
	CharsetUTF8        = "utf-8"
	CharsetWindows1250 = "windows-1250"
)

// Decode returns body as text. Valid UTF-8 is used as is; anything else is
// read as Windows-1250, which is what pages from before the UTF-8 switch use.
// Bytes with no mapping become U+FFFD.
func Decode(body []byte) (string, string) {
	if utf8.Valid(body) {
		return string(body), CharsetUTF8
	}
	out, err := charmap.Windows1250.NewDecoder().Bytes(body)
	if err != nil {
		return strings.ToValidUTF8(string(body), "\uFFFD"), CharsetUTF8
	}
	return string(out), CharsetWindows1250
}
