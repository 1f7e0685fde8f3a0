package lexer

import (
	"bytes"

	"golang.org/x/text/unicode/norm"
)

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// Normalize performs input normalization at the lexer boundary: strips a
// leading UTF-8 BOM if present, then applies Unicode NFC normalization so
// that lexically equivalent source produces identical token streams
// regardless of encoding variation. This matters here specifically because
// the keyword set includes the non-ASCII '∈' token, which has no meaningful
// decomposed form but should still compare equal across any copy-paste
// origin.
func Normalize(src []byte) []byte {
	src = bytes.TrimPrefix(src, bomUTF8)
	if !norm.NFC.IsNormal(src) {
		src = norm.NFC.Bytes(src)
	}
	return src
}
