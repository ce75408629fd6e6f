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

import "errors"

// sentinelError is a plain string error that can be declared const and
// compared with errors.Is.
type sentinelError string

func (e sentinelError) Error() string { return string(e) }

// Sentinel errors returned by codec decode/encode operations. A codec
// reports ErrIncompleteCharacter for a truncated sequence that might become
// valid once more bytes arrive, and ErrInvalidCharacter for a sequence that
// can never be valid regardless of what follows. The distinction is what
// lets the Parser tell "need more bytes" apart from "malformed input".
const (
	ErrIncompleteCharacter = sentinelError("incomplete character")
	ErrInvalidCharacter    = sentinelError("invalid character")
)

// Sentinel errors recorded on a Parser when it transitions to the Error
// token kind. Retrieve the specific one that applies with Parser.Err, and
// compare it with errors.Is.
var (
	// ErrUnexpectedByte covers a '<' inside an attribute value, a missing
	// '=' or quote, or an illegal character inside a Name.
	ErrUnexpectedByte = errors.New("xml: unexpected byte")
	// ErrTagMismatch is reported when a close tag's name does not match
	// the top of the parse stack.
	ErrTagMismatch = errors.New("xml: close tag does not match open tag")
	// ErrUnsupportedEncoding is reported when the <?xml ... encoding="..."?>
	// declaration names an encoding the active codec does not recognize.
	ErrUnsupportedEncoding = errors.New("xml: unsupported encoding")
	// ErrBadVersion is reported when the <?xml version="..."?> declaration
	// does not start with "1.".
	ErrBadVersion = errors.New("xml: unsupported version")
	// ErrBadEntity covers an unrecognized named entity, or an empty,
	// over-long, or non-digit numeric character reference. A reference that
	// decodes to a disallowed code point is reported as ErrOutOfRangeChar.
	ErrBadEntity = errors.New("xml: malformed entity reference")
	// ErrOutOfRangeChar is reported when a decoded character (literal or
	// from an entity/character reference) violates the XML 1.0 Char
	// production.
	ErrOutOfRangeChar = errors.New("xml: character outside the XML 1.0 Char range")
	// ErrMalformedEncoding is reported when the codec rejects a byte
	// sequence outright (as opposed to running out of bytes).
	ErrMalformedEncoding = errors.New("xml: malformed byte sequence for the active encoding")
	// ErrParserExtracted is reported by any call made on a Parser after
	// ExtractXMLData has handed off its buffer. The Parser is permanently
	// unusable past that point.
	ErrParserExtracted = errors.New("xml: parser already extracted its buffer")
)
