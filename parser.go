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

import "bytes"

// Parser is an incremental, resumable, in-place XML 1.0 pull parser. It owns
// a single growable input buffer and never blocks on I/O: ParseNext reports
// IncompleteDocument instead of waiting for more bytes.
//
// A Parser is not safe for concurrent use.
type Parser struct {
	buf    []byte
	codec  codec
	isUTF8 bool
	stack  parseStack

	readCursor   int
	lastTagStart int

	state       TokenKind
	resumePoint TokenKind
	err         error
	extracted   bool

	decodedValue    []byte
	attrNameStart   int
	attrNameEnd     int
	decodedAttrName []byte
	nameScratch     []byte

	sp *savepoint
}

// savepoint records a byte anchor and parse-stack depth to rewind to. The
// stack snapshot is copied lazily: while the live stack never pops below
// depth, frames stays nil and the live stack is used directly.
type savepoint struct {
	anchor int
	depth  int
	frames parseStack
}

// NewParser builds a Parser over a copy of data.
func NewParser(data []byte) *Parser {
	buf := make([]byte, len(data))
	copy(buf, data)
	return newParserFromBuf(buf)
}

// NewParserFromOwnedBytes builds a Parser that takes ownership of data
// without copying it.
func NewParserFromOwnedBytes(data []byte) *Parser {
	return newParserFromBuf(data)
}

func newParserFromBuf(buf []byte) *Parser {
	var c codec
	isUTF8 := false
	skip := 0
	switch {
	case (utf16Codec{BigEndian}).bomLen(buf) > 0:
		c = utf16Codec{BigEndian}
		skip = c.bomLen(buf)
	case (utf16Codec{LittleEndian}).bomLen(buf) > 0:
		c = utf16Codec{LittleEndian}
		skip = c.bomLen(buf)
	default:
		u8 := utf8Codec{}
		c = u8
		isUTF8 = true
		skip = u8.bomLen(buf)
	}
	p := &Parser{
		buf:          buf,
		codec:        c,
		isUTF8:       isUTF8,
		readCursor:   skip,
		lastTagStart: skip,
		state:        InitialState,
		resumePoint:  InitialState,
	}
	if isUTF8 {
		p.stack = newBorrowedStack(&p.buf)
	} else {
		p.stack = newOwnedStack()
	}
	return p
}

// CurrentTokenKind returns the TokenKind most recently produced by
// ParseNext, without advancing the parser.
func (p *Parser) CurrentTokenKind() TokenKind { return p.state }

// CurrentTagName returns the name of the tag associated with the current
// token: meaningful for OpenTag, CloseTag, and Attribute. It is always the
// top of the parse stack. The returned slice is invalidated by the next
// mutating call.
func (p *Parser) CurrentTagName() []byte { return p.stack.top() }

// CurrentAttrName returns the name of the current Attribute token. The
// returned slice is invalidated by the next mutating call.
func (p *Parser) CurrentAttrName() []byte {
	if p.isUTF8 {
		return p.buf[p.attrNameStart:p.attrNameEnd]
	}
	return p.decodedAttrName
}

// CurrentValue returns the entity-decoded UTF-8 value of the current
// Attribute or Text token. The returned slice is invalidated by the next
// mutating call.
func (p *Parser) CurrentValue() []byte { return p.decodedValue }

// Err returns the error that put the parser into the Error state, or nil.
func (p *Parser) Err() error { return p.err }

// ParseNext advances the parser by exactly one token event and returns the
// new TokenKind. Once Error or CloseDocument is reached, ParseNext keeps
// returning it without further work.
func (p *Parser) ParseNext() TokenKind {
	if p.extracted {
		return Error
	}
	if p.state == Error || p.state == CloseDocument {
		return p.state
	}
	switch p.resumePoint {
	case InitialState:
		p.stepProlog()
	case OpenDocument:
		p.dispatchSibling()
	case OpenTag, Attribute:
		p.stepInTag()
	case Text:
		p.dispatchSibling()
	case CloseTag:
		p.stepAfterCloseTag()
	default:
		p.fail(ErrUnexpectedByte)
	}
	return p.state
}

func (p *Parser) commit(kind TokenKind) {
	p.state = kind
	p.resumePoint = kind
}

func (p *Parser) setIncomplete() {
	p.state = IncompleteDocument
}

func (p *Parser) fail(err error) {
	p.err = err
	p.state = Error
}

// --- rune-level scanning helpers, encoding-agnostic --------------------

type runeStatus int

const (
	runeOK runeStatus = iota
	runeIncomplete
	runeInvalid
)

func (p *Parser) readRune(pos int) (r rune, next int, status runeStatus) {
	if pos >= len(p.buf) {
		return 0, pos, runeIncomplete
	}
	r, n, err := p.codec.decodeNext(p.buf[pos:])
	switch err {
	case nil:
		return r, pos + n, runeOK
	case ErrIncompleteCharacter:
		return 0, pos, runeIncomplete
	default:
		return 0, pos, runeInvalid
	}
}

func (p *Parser) skipWhitespace(pos int) int {
	for {
		r, next, status := p.readRune(pos)
		if status != runeOK || !isXMLSpace(r) {
			return pos
		}
		pos = next
	}
}

// scanName decodes a Name starting at pos, which must hold a NameStartChar.
// It returns the offset just past the last NameChar (runeOK), or
// runeIncomplete/runeInvalid.
func (p *Parser) scanName(pos int) (end int, status runeStatus) {
	first := true
	for {
		r, next, st := p.readRune(pos)
		if st != runeOK {
			if first {
				return pos, st
			}
			if st == runeIncomplete {
				return pos, runeIncomplete
			}
			// An invalid byte sequence after at least one NameChar simply
			// ends the name; let the caller validate the terminator.
			return pos, runeOK
		}
		ok := isNameStartChar(r)
		if !first {
			ok = ok || isNameChar(r)
		}
		if !ok {
			if first {
				return pos, runeInvalid
			}
			return pos, runeOK
		}
		pos = next
		first = false
	}
}

func (p *Parser) scanUntilQuote(pos int, quote rune) (end int, status runeStatus) {
	for {
		r, next, st := p.readRune(pos)
		if st != runeOK {
			return pos, st
		}
		if r == quote {
			return pos, runeOK
		}
		pos = next
	}
}

// transcodeInto transcodes buf[start:end] (in the parser's active encoding)
// to UTF-8, reusing dst's backing array.
func (p *Parser) transcodeInto(dst []byte, start, end int) []byte {
	dst = dst[:0]
	cur := start
	for cur < end {
		r, n, _ := p.codec.decodeNext(p.buf[cur:end])
		dst = utf8Codec{}.appendTo(dst, r)
		cur += n
	}
	return dst
}

// transcodeSpan returns buf[start:end] as UTF-8: zero-copy for UTF-8 input,
// freshly allocated for UTF-16.
func (p *Parser) transcodeSpan(start, end int) []byte {
	if p.isUTF8 {
		return p.buf[start:end]
	}
	return p.transcodeInto(nil, start, end)
}

// --- the state machine proper -------------------------------------------

func (p *Parser) stepProlog() {
	cursor := p.skipWhitespace(p.readCursor)
	save := cursor

	lt, next, st := p.readRune(cursor)
	if st == runeIncomplete {
		p.setIncomplete()
		return
	}
	if st == runeInvalid {
		p.fail(ErrMalformedEncoding)
		return
	}
	if lt != '<' {
		p.readCursor = save
		p.commit(OpenDocument)
		return
	}

	q, next2, st2 := p.readRune(next)
	if st2 == runeIncomplete {
		p.setIncomplete()
		return
	}
	if st2 == runeInvalid {
		p.fail(ErrMalformedEncoding)
		return
	}
	if q != '?' {
		p.readCursor = save
		p.commit(OpenDocument)
		return
	}

	cur := next2
	for _, want := range "xml" {
		r, n, st3 := p.readRune(cur)
		if st3 == runeIncomplete {
			p.setIncomplete()
			return
		}
		if st3 == runeInvalid || r != want {
			p.fail(ErrUnexpectedByte)
			return
		}
		cur = n
	}

	newCursor, ok := p.parseXMLDecl(cur)
	if !ok {
		return
	}
	newCursor = p.skipWhitespace(newCursor)
	p.readCursor = newCursor
	p.commit(OpenDocument)
}

func (p *Parser) parseXMLDecl(cursor int) (int, bool) {
	var version, encoding []byte
	for {
		cursor = p.skipWhitespace(cursor)
		r, next, st := p.readRune(cursor)
		if st == runeIncomplete {
			p.setIncomplete()
			return 0, false
		}
		if st == runeInvalid {
			p.fail(ErrMalformedEncoding)
			return 0, false
		}
		if r == '?' {
			r2, next2, st2 := p.readRune(next)
			if st2 == runeIncomplete {
				p.setIncomplete()
				return 0, false
			}
			if st2 == runeInvalid || r2 != '>' {
				p.fail(ErrUnexpectedByte)
				return 0, false
			}
			cursor = next2
			break
		}

		nameEnd, nst := p.scanName(cursor)
		if nst == runeIncomplete {
			p.setIncomplete()
			return 0, false
		}
		if nst == runeInvalid {
			p.fail(ErrUnexpectedByte)
			return 0, false
		}
		name := p.transcodeSpan(cursor, nameEnd)

		c2 := p.skipWhitespace(nameEnd)
		eq, next2, st2 := p.readRune(c2)
		if st2 == runeIncomplete {
			p.setIncomplete()
			return 0, false
		}
		if st2 == runeInvalid || eq != '=' {
			p.fail(ErrUnexpectedByte)
			return 0, false
		}

		c3 := p.skipWhitespace(next2)
		quote, next3, st3 := p.readRune(c3)
		if st3 == runeIncomplete {
			p.setIncomplete()
			return 0, false
		}
		if st3 == runeInvalid || (quote != '"' && quote != '\'') {
			p.fail(ErrUnexpectedByte)
			return 0, false
		}

		valEnd, vst := p.scanUntilQuote(next3, quote)
		if vst == runeIncomplete {
			p.setIncomplete()
			return 0, false
		}
		if vst == runeInvalid {
			p.fail(ErrMalformedEncoding)
			return 0, false
		}
		value := p.transcodeSpan(next3, valEnd)

		_, next4, st4 := p.readRune(valEnd) // consume the closing quote
		if st4 == runeIncomplete {
			p.setIncomplete()
			return 0, false
		}

		switch string(name) {
		case "version":
			version = value
		case "encoding":
			encoding = value
		}
		cursor = next4
	}

	if len(version) < 2 || version[0] != '1' || version[1] != '.' {
		p.fail(ErrBadVersion)
		return 0, false
	}
	if encoding != nil && !p.codec.isSupportedEncodingName(encoding) {
		p.fail(ErrUnsupportedEncoding)
		return 0, false
	}
	return cursor, true
}

// dispatchSibling decides, at a position expected to hold either the start
// of a sibling construct or character data, whether to produce OpenTag,
// CloseTag, or Text. It is used for the root element, for the continuation
// after a Text token, and for the continuation after a tag is fully closed.
func (p *Parser) dispatchSibling() {
	cursor := p.readCursor
	r, next, st := p.readRune(cursor)
	if st == runeIncomplete {
		p.setIncomplete()
		return
	}
	if st == runeInvalid {
		p.fail(ErrMalformedEncoding)
		return
	}
	if r != '<' {
		if p.stack.depth() == 0 {
			p.fail(ErrUnexpectedByte)
			return
		}
		p.parseText(cursor)
		return
	}

	r2, next2, st2 := p.readRune(next)
	if st2 == runeIncomplete {
		p.setIncomplete()
		return
	}
	if st2 == runeInvalid {
		p.fail(ErrMalformedEncoding)
		return
	}
	if r2 == '/' {
		if p.stack.depth() == 0 {
			p.fail(ErrUnexpectedByte)
			return
		}
		p.parseCloseTag(cursor, next2)
		return
	}
	p.parseOpenTag(cursor, next)
}

func (p *Parser) parseOpenTag(tagStart, nameStart int) {
	nameEnd, nst := p.scanName(nameStart)
	if nst == runeIncomplete {
		p.setIncomplete()
		return
	}
	if nst == runeInvalid {
		p.fail(ErrUnexpectedByte)
		return
	}

	r, _, st := p.readRune(nameEnd)
	if st == runeIncomplete {
		p.setIncomplete()
		return
	}
	if st == runeInvalid {
		p.fail(ErrMalformedEncoding)
		return
	}
	if !(isXMLSpace(r) || r == '>' || r == '/') {
		p.fail(ErrUnexpectedByte)
		return
	}

	if p.isUTF8 {
		p.stack.(*borrowedStack).pushAt(nameStart, nameEnd)
	} else {
		p.nameScratch = p.transcodeInto(p.nameScratch, nameStart, nameEnd)
		p.stack.(*ownedStack).push(p.nameScratch)
	}
	p.lastTagStart = tagStart
	p.readCursor = nameEnd
	p.commit(OpenTag)
}

func (p *Parser) parseCloseTag(tagStart, nameStart int) {
	nameEnd, nst := p.scanName(nameStart)
	if nst == runeIncomplete {
		p.setIncomplete()
		return
	}
	if nst == runeInvalid {
		p.fail(ErrUnexpectedByte)
		return
	}
	name := p.transcodeSpan(nameStart, nameEnd)
	if !bytes.Equal(name, p.stack.top()) {
		p.fail(ErrTagMismatch)
		return
	}

	c2 := p.skipWhitespace(nameEnd)
	r, next, st := p.readRune(c2)
	if st == runeIncomplete {
		p.setIncomplete()
		return
	}
	if st == runeInvalid {
		p.fail(ErrMalformedEncoding)
		return
	}
	if r != '>' {
		p.fail(ErrUnexpectedByte)
		return
	}

	p.lastTagStart = tagStart
	p.readCursor = next
	p.commit(CloseTag)
}

func (p *Parser) parseText(cursor int) {
	newCursor, value, outcome, derr := decodeText(p.decodedValue, p.buf, cursor, textCharData, p.codec)
	switch outcome {
	case textIncomplete:
		p.setIncomplete()
		return
	case textError:
		p.fail(derr)
		return
	}
	p.decodedValue = value
	p.readCursor = newCursor
	p.commit(Text)
}

func (p *Parser) stepInTag() {
	cursor := p.skipWhitespace(p.readCursor)
	r, next, st := p.readRune(cursor)
	if st == runeIncomplete {
		p.setIncomplete()
		return
	}
	if st == runeInvalid {
		p.fail(ErrMalformedEncoding)
		return
	}

	switch r {
	case '>':
		p.readCursor = next
		// The '>' is consumed; a retry after IncompleteDocument resumes at
		// the sibling dispatch rather than inside the tag.
		p.resumePoint = Text
		p.dispatchSibling()
	case '/':
		r2, next2, st2 := p.readRune(next)
		if st2 == runeIncomplete {
			p.setIncomplete()
			return
		}
		if st2 == runeInvalid || r2 != '>' {
			p.fail(ErrUnexpectedByte)
			return
		}
		p.readCursor = next2
		p.commit(CloseTag)
	default:
		p.parseAttribute(cursor)
	}
}

func (p *Parser) parseAttribute(cursor int) {
	nameEnd, nst := p.scanName(cursor)
	if nst == runeIncomplete {
		p.setIncomplete()
		return
	}
	if nst == runeInvalid {
		p.fail(ErrUnexpectedByte)
		return
	}

	c2 := p.skipWhitespace(nameEnd)
	eq, next, st := p.readRune(c2)
	if st == runeIncomplete {
		p.setIncomplete()
		return
	}
	if st == runeInvalid || eq != '=' {
		p.fail(ErrUnexpectedByte)
		return
	}

	c3 := p.skipWhitespace(next)
	quote, next2, st2 := p.readRune(c3)
	if st2 == runeIncomplete {
		p.setIncomplete()
		return
	}
	if st2 == runeInvalid || (quote != '"' && quote != '\'') {
		p.fail(ErrUnexpectedByte)
		return
	}

	tt := textAttrValueQuote
	if quote == '\'' {
		tt = textAttrValueApos
	}
	newCursor, value, outcome, derr := decodeText(p.decodedValue, p.buf, next2, tt, p.codec)
	switch outcome {
	case textIncomplete:
		p.setIncomplete()
		return
	case textError:
		p.fail(derr)
		return
	}

	if p.isUTF8 {
		p.attrNameStart, p.attrNameEnd = cursor, nameEnd
	} else {
		p.decodedAttrName = p.transcodeInto(p.decodedAttrName, cursor, nameEnd)
	}
	p.decodedValue = value
	p.readCursor = newCursor
	p.commit(Attribute)
}

func (p *Parser) stepAfterCloseTag() {
	p.popStack()
	if p.stack.depth() == 0 {
		p.commit(CloseDocument)
		return
	}
	// The pop is done; a retry after IncompleteDocument must not pop again.
	p.resumePoint = Text
	p.dispatchSibling()
}

func (p *Parser) popStack() {
	if p.sp != nil && p.sp.frames == nil && p.stack.depth() == p.sp.depth {
		p.sp.frames = p.stack.clone()
	}
	p.stack.pop()
}

// --- incremental / resume layer ------------------------------------------

// AppendData appends more input bytes, compacting the buffer first. It is
// an error to call this while the parser is in the Error state.
func (p *Parser) AppendData(data []byte) error {
	if p.extracted {
		return ErrParserExtracted
	}
	if p.state == Error {
		return p.err
	}
	p.compact()
	p.buf = append(p.buf, data...)
	return nil
}

// compact discards input bytes before the earliest still-needed anchor and
// shifts every remaining anchor to account for the new base. The earliest
// needed anchor is the smallest of: the read cursor, the savepoint's anchor
// (if any), and the start of the oldest still-open element's name, on both
// the live stack and the savepoint's cloned snapshot, since CurrentTagName
// and close-tag matching must keep working for elements opened long before
// the current position.
func (p *Parser) compact() {
	if p.sp == nil && p.state == IncompleteDocument {
		return
	}
	anchor := p.readCursor
	if p.sp != nil && p.sp.anchor < anchor {
		anchor = p.sp.anchor
	}
	if off, ok := p.stack.minBorrowedOffset(); ok && off < anchor {
		anchor = off
	}
	if p.sp != nil && p.sp.frames != nil {
		if off, ok := p.sp.frames.minBorrowedOffset(); ok && off < anchor {
			anchor = off
		}
	}
	if anchor <= 0 {
		return
	}

	n := copy(p.buf, p.buf[anchor:])
	p.buf = p.buf[:n]
	delta := -anchor

	p.readCursor += delta
	p.lastTagStart += delta
	if p.isUTF8 {
		p.stack.addOffset(delta)
		if p.attrNameEnd > 0 || p.attrNameStart > 0 {
			p.attrNameStart += delta
			p.attrNameEnd += delta
		}
		if p.sp != nil && p.sp.frames != nil {
			p.sp.frames.addOffset(delta)
		}
	}
	if p.sp != nil {
		p.sp.anchor += delta
	}
}

// SetSavepointAtCurrentTag records the tag currently open, being closed, or
// just finished, so a later RestoreToSavepoint can rewind to it. Valid only
// right after an OpenTag, Attribute, Text, or CloseTag token.
func (p *Parser) SetSavepointAtCurrentTag() bool {
	switch p.state {
	case OpenTag, Attribute, Text, CloseTag:
	default:
		return false
	}
	p.sp = &savepoint{anchor: p.lastTagStart, depth: p.stack.depth()}
	return true
}

// RestoreToSavepoint rewinds the parser to the last savepoint set by
// SetSavepointAtCurrentTag, re-deriving whatever tag-open or tag-close state
// is needed to resume parsing from there. Returns false if no savepoint
// exists.
func (p *Parser) RestoreToSavepoint() bool {
	if p.sp == nil || p.state == Error || p.extracted {
		return false
	}
	sp := p.sp

	if sp.frames != nil {
		p.stack = sp.frames
	} else {
		p.stack.truncate(sp.depth)
	}
	p.readCursor = sp.anchor

	openingRedo := true
	r, next, st := p.readRune(p.readCursor)
	if st == runeOK && r == '<' {
		r2, _, st2 := p.readRune(next)
		if st2 == runeOK && r2 == '/' {
			openingRedo = false
		}
	}
	if openingRedo && sp.depth > 0 {
		p.stack.truncate(sp.depth - 1)
	}

	p.sp = nil
	p.commit(Text)
	return true
}

// ExtractXMLData reclaims the unparsed tail of the input buffer and
// invalidates the parser; it must not be used again afterwards.
func (p *Parser) ExtractXMLData() []byte {
	remaining := p.buf[p.readCursor:]
	out := make([]byte, len(remaining))
	copy(out, remaining)
	p.buf = nil
	p.extracted = true
	p.fail(ErrParserExtracted)
	return out
}
