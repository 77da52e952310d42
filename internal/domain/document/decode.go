package document

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// UndecodablePlaceholder replaces content that is binary or that no known
// encoding can read.
const UndecodablePlaceholder = "[binary or undecodable content]"

// EncodingBinary is reported by Decode when it returns the placeholder.
const EncodingBinary = "binary"

// windows-1251 leaves 0x98 unmapped, koi8-r maps every byte.
var legacyEncodings = []struct {
	name string
	enc  encoding.Encoding
}{
	{"windows-1251", charmap.Windows1251},
	{"koi8-r", charmap.KOI8R},
}

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
)

// binarySample bounds how much of a file looksBinary inspects.
const binarySample = 8 << 10

// Decode returns data as text together with the encoding that read it.
// UTF-16 is recognised by its byte order mark. Everything else is checked
// for binary content, then read as UTF-8 and finally through the legacy
// code pages in order.
func Decode(data []byte) (string, string) {
	switch {
	case bytes.HasPrefix(data, utf16LEBOM):
		return decodeUTF16(data, unicode.LittleEndian, "utf-16le")
	case bytes.HasPrefix(data, utf16BEBOM):
		return decodeUTF16(data, unicode.BigEndian, "utf-16be")
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if looksBinary(data) {
		return UndecodablePlaceholder, EncodingBinary
	}
	if utf8.Valid(data) {
		return string(data), "utf-8"
	}
	for _, candidate := range legacyEncodings {
		decoded, err := candidate.enc.NewDecoder().Bytes(data)
		if err != nil || bytes.ContainsRune(decoded, utf8.RuneError) {
			continue
		}
		return string(decoded), candidate.name
	}
	return UndecodablePlaceholder, EncodingBinary
}

func decodeUTF16(data []byte, order unicode.Endianness, name string) (string, string) {
	decoded, err := unicode.UTF16(order, unicode.ExpectBOM).NewDecoder().Bytes(data)
	if err != nil || bytes.ContainsRune(decoded, utf8.RuneError) || bytes.IndexByte(decoded, 0) >= 0 {
		return UndecodablePlaceholder, EncodingBinary
	}
	return string(decoded), name
}

// looksBinary reports NUL bytes or a control character share above 10% in
// the leading sample. Office containers and images fail this immediately.
func looksBinary(data []byte) bool {
	sample := data
	if len(sample) > binarySample {
		sample = sample[:binarySample]
	}
	if len(sample) == 0 {
		return false
	}

	control := 0
	for _, b := range sample {
		switch {
		case b == 0:
			return true
		case b == '\t', b == '\n', b == '\r', b == '\f', b == '\v', b == 0x1b:
		case b < 0x20, b == 0x7f:
			control++
		}
	}
	return control*10 > len(sample)
}

// Comparable reports whether decoded content is real text that the
// similarity check should consider.
func Comparable(content string) bool {
	return content != UndecodablePlaceholder
}
