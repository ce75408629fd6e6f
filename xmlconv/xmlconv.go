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

// Package xmlconv converts an XML token stream into a generic JSON document.
//
// Attributes land under "@"-prefixed keys, text content under "#text", and
// repeated sibling elements collapse into an array. An element carrying
// nothing but text collapses to a plain string.
package xmlconv

import (
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	xml "github.com/krox/xmlpull"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// openElement is one still-open element while the tree is being assembled.
type openElement struct {
	name     string
	fields   map[string]interface{}
	text     []byte
	hasChild bool
}

// ToJSON drains p from its current position through CloseDocument and
// returns the document rendered as JSON.
func ToJSON(p *xml.Parser) ([]byte, error) {
	tree, err := ToTree(p)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("xmlconv: marshaling: %w", err)
	}
	return out, nil
}

// ToTree drains p and returns the generic map/slice/string tree that ToJSON
// serializes.
func ToTree(p *xml.Parser) (map[string]interface{}, error) {
	ts := xml.NewTokenStream(p)
	root := map[string]interface{}{}
	var stack []*openElement

	for {
		tok, err := ts.NextToken()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return root, nil
			}
			return nil, fmt.Errorf("xmlconv: tokenizing: %w", err)
		}

		switch tok := tok.(type) {
		case *xml.StartTag:
			el := &openElement{
				name:   tok.Name.Local(),
				fields: map[string]interface{}{},
			}
			for _, a := range tok.Attr {
				el.fields["@"+a.Name.Local()] = a.Value
			}
			stack = append(stack, el)
		case *xml.CharData:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.text = append(top.text, tok.Data...)
			}
		case *xml.CloseTag:
			el := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			parent := root
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.hasChild = true
				parent = top.fields
			}
			attach(parent, el.name, el.value())
		}
	}
}

// value renders a finished element: a bare string when it held only text,
// otherwise its field map with any text under "#text".
func (el *openElement) value() interface{} {
	if len(el.fields) == 0 && !el.hasChild {
		return string(el.text)
	}
	if len(el.text) > 0 {
		el.fields["#text"] = string(el.text)
	}
	return el.fields
}

// attach adds v to parent under name, promoting repeated siblings to a
// slice.
func attach(parent map[string]interface{}, name string, v interface{}) {
	switch prev := parent[name].(type) {
	case nil:
		parent[name] = v
	case []interface{}:
		parent[name] = append(prev, v)
	default:
		parent[name] = []interface{}{prev, v}
	}
}
