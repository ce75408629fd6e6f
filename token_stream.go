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

import "io"

// Token represents an XML Token:
//
//    StartTag:  <foo> or <foo />
//    CloseTag:  </foo>, implicit for <foo /> too
//    CharData:  any text outside of angle brackets <>
type Token interface {
	token()

	// Copy the token into a new instance.
	//
	// A StartTag's Attr slice is overwritten by the next start tag that
	// NextToken returns; this makes an independent copy for the case where
	// a token must outlive that, and for testing.
	Copy() Token
}

// StartTag is an opening XML tag <tag>.
type StartTag struct {
	Name *Name
	Attr []*Attr
}

func (*StartTag) token() {}

func (s *StartTag) Copy() Token {
	c := StartTag{Name: s.Name.Copy()}
	if s.Attr != nil {
		c.Attr = make([]*Attr, len(s.Attr))
		copy(c.Attr, s.Attr)
	}
	return &c
}

// CloseTag is a closing XML tag </tag>.
type CloseTag struct {
	Name *Name
}

func (*CloseTag) token() {}

func (t *CloseTag) Copy() Token {
	return &CloseTag{t.Name.Copy()}
}

// CharData contains a text node.
type CharData struct {
	Data []byte
}

func (*CharData) token() {}

func (t *CharData) Copy() Token {
	data := make([]byte, len(t.Data))
	copy(data, t.Data)
	return &CharData{data}
}

// Attr is a tag attribute like <foo bar="baz">. This produces an Attr with
// name "bar" and value "baz".
type Attr struct {
	Name  *Name
	Value string
}

// Name stores an identifier name from either a tag or an attribute, e.g. for
// <foo bar="baz"> this is "foo" for the tag and "bar" for the attribute.
//
// Unlike the wider XML namespace model, a colon inside a Name is treated as
// an ordinary name character: Name never splits a prefix out.
type Name struct {
	local string
}

// Local returns the full identifier, unchanged from what appeared in the
// document.
func (n *Name) Local() string {
	if n == nil {
		return ""
	}
	return n.local
}

// Copy returns an independent copy of n.
func (n *Name) Copy() *Name {
	if n == nil {
		return nil
	}
	c := *n
	return &c
}

// TokenStream re-assembles a Parser's per-attribute event stream into the
// StartTag/CloseTag/CharData vocabulary above: one NextToken call per open
// tag (bundling all of its attributes), one per close tag, one per run of
// text.
//
// A TokenStream is not safe for concurrent use.
type TokenStream struct {
	p     *Parser
	attrs attrBuffer

	pendingKind TokenKind
	hasPending  bool
}

// NewTokenStream wraps p, starting from whatever state it is currently in.
func NewTokenStream(p *Parser) *TokenStream {
	return &TokenStream{p: p}
}

func (ts *TokenStream) nextKind() TokenKind {
	if ts.hasPending {
		ts.hasPending = false
		return ts.pendingKind
	}
	return ts.p.ParseNext()
}

// NextToken returns the next Token in the stream. It returns io.EOF once the
// outermost element has closed, and io.ErrUnexpectedEOF if the underlying
// Parser runs out of input mid-construct with no more data coming.
func (ts *TokenStream) NextToken() (Token, error) {
	switch kind := ts.nextKind(); kind {
	case InitialState, OpenDocument:
		return ts.NextToken()
	case OpenTag:
		name := &Name{local: string(ts.p.CurrentTagName())}
		ts.attrs.reset()
		for {
			k := ts.p.ParseNext()
			switch k {
			case Attribute:
				ts.attrs.add(&Attr{
					Name:  &Name{local: string(ts.p.CurrentAttrName())},
					Value: string(ts.p.CurrentValue()),
				})
			case Error:
				return nil, ts.p.Err()
			case IncompleteDocument:
				return nil, io.ErrUnexpectedEOF
			default:
				ts.pendingKind, ts.hasPending = k, true
				return &StartTag{Name: name, Attr: ts.attrs.get()}, nil
			}
		}
	case CloseTag:
		return &CloseTag{Name: &Name{local: string(ts.p.CurrentTagName())}}, nil
	case Text:
		data := make([]byte, len(ts.p.CurrentValue()))
		copy(data, ts.p.CurrentValue())
		return &CharData{Data: data}, nil
	case CloseDocument:
		return nil, io.EOF
	case IncompleteDocument:
		return nil, io.ErrUnexpectedEOF
	default: // Error
		return nil, ts.p.Err()
	}
}
