// Package charset decodes saved HTML pages to UTF-8.
//
// Pages saved from qun.qq.com are served as UTF-8 or GBK depending on
// the browser and era of the snapshot, and some tools re-save them as
// UTF-16 with a BOM. Detection checks, in order: a byte-order mark, a
// <meta charset> declaration in the head, and UTF-8 validity of the
// raw bytes. Undeclared non-UTF-8 input is assumed to be GBK.
package charset

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	metaContentType = regexp.MustCompile(`(?i)<meta\s+[^>]*http-equiv=["']?content-type["']?[^>]*content=["']?[^;]*;\s*charset=([^"'\s>]+)`)
	metaCharset     = regexp.MustCompile(`(?i)<meta\s+charset=["']?([^"'\s>]+)`)
)

// metaScanLimit bounds the head scan; charset declarations are required
// to appear within the first 1024 bytes of a document.
const metaScanLimit = 1024

// Detect returns the normalized charset name of data.
func Detect(data []byte) string {
	switch {
	case len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF:
		return "utf-8"
	case len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF:
		return "utf-16be"
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE:
		return "utf-16le"
	}

	head := data
	if len(head) > metaScanLimit {
		head = head[:metaScanLimit]
	}
	if name, ok := declaredCharset(string(head)); ok {
		// Files re-saved as UTF-8 often keep a stale meta declaration;
		// multi-byte UTF-8 content overrules it.
		if name != "utf-8" && utf8.Valid(data) && hasMultibyte(data) {
			return "utf-8"
		}
		return name
	}

	if utf8.Valid(data) {
		return "utf-8"
	}
	return "gbk"
}

// Decode converts data to a UTF-8 string, returning the charset name
// that was used. A declared charset with no decoder falls back to the
// raw bytes when they are valid UTF-8.
func Decode(data []byte) (string, string, error) {
	name := Detect(data)
	if name == "utf-8" {
		return string(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})), name, nil
	}

	enc := lookup(name)
	if enc == nil {
		if utf8.Valid(data) {
			return string(data), "utf-8", nil
		}
		return "", name, fmt.Errorf("charset: unsupported encoding %q", name)
	}

	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), enc.NewDecoder()))
	if err != nil {
		return "", name, fmt.Errorf("charset: decoding %s: %w", name, err)
	}
	return string(decoded), name, nil
}

func declaredCharset(head string) (string, bool) {
	if m := metaContentType.FindStringSubmatch(head); len(m) > 1 {
		return normalize(m[1]), true
	}
	if m := metaCharset.FindStringSubmatch(head); len(m) > 1 {
		return normalize(m[1]), true
	}
	return "", false
}

// hasMultibyte reports whether data contains bytes outside ASCII.
func hasMultibyte(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return true
		}
	}
	return false
}

func normalize(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf8", "utf-8", "utf_8":
		return "utf-8"
	case "utf16", "utf-16", "utf16le", "utf-16le":
		return "utf-16le"
	case "utf16be", "utf-16be":
		return "utf-16be"
	case "gb2312", "gb-2312", "gbk":
		return "gbk"
	case "gb18030":
		return "gb18030"
	case "big5", "big-5":
		return "big5"
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return "iso-8859-1"
	case "windows-1252", "cp1252":
		return "windows-1252"
	default:
		return strings.ToLower(strings.TrimSpace(name))
	}
}

func lookup(name string) encoding.Encoding {
	switch name {
	case "gbk":
		return simplifiedchinese.GBK
	case "gb18030":
		return simplifiedchinese.GB18030
	case "big5":
		return traditionalchinese.Big5
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case "iso-8859-1":
		return charmap.ISO8859_1
	case "windows-1252":
		return charmap.Windows1252
	default:
		return nil
	}
}
