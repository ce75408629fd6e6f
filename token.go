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

// TokenKind identifies the kind of token a Parser last produced, or the
// transition it is about to make.
type TokenKind uint8

const (
	// InitialState is the Parser's state before the first call to ParseNext.
	InitialState TokenKind = iota
	// OpenDocument is reached after the optional <?xml ...?> prolog has been
	// consumed and any leading whitespace has been skipped.
	OpenDocument
	// OpenTag is produced when a start tag (possibly self-closing) has just
	// been read. CurrentTagName is valid.
	OpenTag
	// Attribute is produced for each name="value" pair inside a start tag.
	// CurrentTagName, CurrentAttrName, and CurrentValue are valid.
	Attribute
	// Text is produced for a run of character data between tags.
	// CurrentValue holds the entity-decoded text.
	Text
	// CloseTag is produced when an end tag (explicit or implied by "/>")
	// has been read. CurrentTagName still refers to the tag being closed.
	CloseTag
	// CloseDocument is produced once the outermost element has been closed.
	CloseDocument
	// IncompleteDocument means the Parser ran out of buffered input
	// mid-construct. Feed more bytes with AppendData and either retry
	// ParseNext directly or, if a savepoint was set, call
	// RestoreToSavepoint first.
	IncompleteDocument
	// Error is a sticky, terminal state: once reached, ParseNext keeps
	// returning Error forever. See Parser.Err for the underlying cause.
	Error
)

func (k TokenKind) String() string {
	switch k {
	case InitialState:
		return "InitialState"
	case OpenDocument:
		return "OpenDocument"
	case OpenTag:
		return "OpenTag"
	case Attribute:
		return "Attribute"
	case Text:
		return "Text"
	case CloseTag:
		return "CloseTag"
	case CloseDocument:
		return "CloseDocument"
	case IncompleteDocument:
		return "IncompleteDocument"
	case Error:
		return "Error"
	default:
		return "TokenKind(?)"
	}
}

// IsOK reports whether k represents a token the caller can act on, as
// opposed to a request for more input (IncompleteDocument) or a terminal
// failure (Error).
func (k TokenKind) IsOK() bool {
	return k != IncompleteDocument && k != Error
}

// ByteOrder selects the byte order of a UTF-16 codec.
type ByteOrder int

const (
	// LittleEndian selects the UTF-16LE codec.
	LittleEndian ByteOrder = iota
	// BigEndian selects the UTF-16BE codec.
	BigEndian
)

func (o ByteOrder) String() string {
	if o == BigEndian {
		return "BigEndian"
	}
	return "LittleEndian"
}

// textType selects the termination and validation rules used by decodeText.
type textType uint8

const (
	// textPlain decodes until the input is exhausted. Used only by tests.
	textPlain textType = iota
	// textCharData decodes until (but not consuming) a '<'.
	textCharData
	// textAttrValueQuote decodes an attribute value delimited by '"'.
	textAttrValueQuote
	// textAttrValueApos decodes an attribute value delimited by '\''.
	textAttrValueApos
)

// textOutcome is the terminal result of a decodeText call.
type textOutcome uint8

const (
	textAtEnd textOutcome = iota
	textIncomplete
	textError
)
