// Copyright 2020 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package xml

// textType selects the termination and validation rules decodeText uses.
// textOutcome and textType are declared in token.go alongside TokenKind,
// since they are part of the same small enum family.

// decodeText decodes characters starting at buf[pos] according to tt,
// writing entity-expanded, XML-Char-validated UTF-8 into dst (dst is reset
// before use; callers that want to reuse a buffer's capacity should pass it
// back in on every call).
//
// It returns the buffer position just past the terminator (for
// textAttrValueQuote/Apos, past the consumed closing quote; for
// textCharData, at the unconsumed '<'), the decoded bytes, and the terminal
// outcome. On textIncomplete, newPos is always the original pos: the caller
// has made no progress and must retry from scratch once more data arrives,
// recovering via a savepoint if the prefix has since been compacted away.
func decodeText(dst []byte, buf []byte, pos int, tt textType, c codec) (newPos int, out []byte, outcome textOutcome, err error) {
	start := pos
	out = dst[:0]
	for {
		if pos >= len(buf) {
			if tt == textPlain {
				return pos, out, textAtEnd, nil
			}
			return start, out, textIncomplete, nil
		}
		r, n, derr := c.decodeNext(buf[pos:])
		if derr == ErrIncompleteCharacter {
			return start, out, textIncomplete, nil
		}
		if derr == ErrInvalidCharacter {
			return pos, out, textError, ErrMalformedEncoding
		}

		switch {
		case tt == textCharData && r == '<':
			return pos, out, textAtEnd, nil
		case tt == textAttrValueQuote && r == '"':
			return pos + n, out, textAtEnd, nil
		case tt == textAttrValueApos && r == '\'':
			return pos + n, out, textAtEnd, nil
		case (tt == textAttrValueQuote || tt == textAttrValueApos) && r == '<':
			return pos, out, textError, ErrUnexpectedByte
		case r == '&':
			afterAmp := pos + n
			nextPos, entRune, entOutcome, entErr := decodeEntity(buf, afterAmp, c)
			switch entOutcome {
			case textIncomplete:
				return start, out, textIncomplete, nil
			case textError:
				return pos, out, textError, entErr
			}
			if !isValidXMLChar(entRune) {
				return pos, out, textError, ErrOutOfRangeChar
			}
			out = utf8Codec{}.appendTo(out, entRune)
			pos = nextPos
			continue
		}

		if !isValidXMLChar(r) {
			return pos, out, textError, ErrOutOfRangeChar
		}
		out = utf8Codec{}.appendTo(out, r)
		pos += n
	}
}

// decodeEntity decodes one entity or character reference starting right
// after the '&' (pos points at '#' or the first letter of a named entity).
// It returns the position just past the terminating ';'.
func decodeEntity(buf []byte, pos int, c codec) (newPos int, r rune, outcome textOutcome, err error) {
	if pos >= len(buf) {
		return pos, 0, textIncomplete, nil
	}
	r0, n0, derr := c.decodeNext(buf[pos:])
	if derr == ErrIncompleteCharacter {
		return pos, 0, textIncomplete, nil
	}
	if derr == ErrInvalidCharacter {
		return pos, 0, textError, ErrMalformedEncoding
	}

	if r0 == '#' {
		return decodeCharRef(buf, pos+n0, c)
	}
	return decodeNamedEntity(buf, pos, r0, n0, c)
}

func decodeCharRef(buf []byte, pos int, c codec) (newPos int, r rune, outcome textOutcome, err error) {
	if pos >= len(buf) {
		return pos, 0, textIncomplete, nil
	}
	r1, n1, derr := c.decodeNext(buf[pos:])
	if derr == ErrIncompleteCharacter {
		return pos, 0, textIncomplete, nil
	}
	if derr == ErrInvalidCharacter {
		return pos, 0, textError, ErrMalformedEncoding
	}

	hex := r1 == 'x' || r1 == 'X'
	if hex {
		pos += n1
	}
	maxDigits := 7
	if hex {
		maxDigits = 6
	}

	var value int64
	digits := 0
	for {
		if pos >= len(buf) {
			return pos, 0, textIncomplete, nil
		}
		rd, nd, derr := c.decodeNext(buf[pos:])
		if derr == ErrIncompleteCharacter {
			return pos, 0, textIncomplete, nil
		}
		if derr == ErrInvalidCharacter {
			return pos, 0, textError, ErrMalformedEncoding
		}
		if rd == ';' {
			if digits == 0 {
				return pos, 0, textError, ErrBadEntity
			}
			return pos + nd, rune(value), textAtEnd, nil
		}
		dv, ok := hexDigitValue(rd, hex)
		if !ok || digits >= maxDigits {
			return pos, 0, textError, ErrBadEntity
		}
		base := int64(10)
		if hex {
			base = 16
		}
		value = value*base + dv
		digits++
		pos += nd
	}
}

func hexDigitValue(r rune, hex bool) (int64, bool) {
	switch {
	case r >= '0' && r <= '9':
		return int64(r - '0'), true
	case hex && r >= 'a' && r <= 'f':
		return int64(r-'a') + 10, true
	case hex && r >= 'A' && r <= 'F':
		return int64(r-'A') + 10, true
	}
	return 0, false
}

// predefinedEntities are the only named references XML 1.0 allows without a
// DTD.
var predefinedEntities = map[string]rune{
	"amp":  '&',
	"apos": '\'',
	"gt":   '>',
	"lt":   '<',
	"quot": '"',
}

const maxEntityNameLen = 4 // len("apos") == len("quot") == 4, the longest

func decodeNamedEntity(buf []byte, pos int, first rune, firstLen int, c codec) (newPos int, r rune, outcome textOutcome, err error) {
	name := make([]rune, 0, maxEntityNameLen)
	cur := pos
	r, n := first, firstLen
	for {
		if r == ';' {
			if rr, ok := predefinedEntities[string(name)]; ok {
				return cur + n, rr, textAtEnd, nil
			}
			return pos, 0, textError, ErrBadEntity
		}
		if len(name) >= maxEntityNameLen || !isASCIILetter(r) {
			return pos, 0, textError, ErrBadEntity
		}
		name = append(name, r)
		cur += n
		if cur >= len(buf) {
			return pos, 0, textIncomplete, nil
		}
		var derr error
		r, n, derr = c.decodeNext(buf[cur:])
		if derr == ErrIncompleteCharacter {
			return pos, 0, textIncomplete, nil
		}
		if derr == ErrInvalidCharacter {
			return pos, 0, textError, ErrMalformedEncoding
		}
	}
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// isValidXMLChar implements the XML 1.0 Char production:
// #x9 | #xA | #xD | [#x20-#xD7FF] | [#xE000-#xFFFD] | [#x10000-#x10FFFF]
func isValidXMLChar(r rune) bool {
	switch {
	case r == 0x9 || r == 0xA || r == 0xD:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}
