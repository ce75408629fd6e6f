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

import (
	"fmt"
	"io"
)

// Decoder processes an XML input and generates tokens.
//
// Unlike Parser, Decoder is not incremental: NewDecoder reads r to
// completion up front, trading the resumable core's zero-copy design for a
// familiar one-call io.Reader entry point.
type Decoder struct {
	ts      *TokenStream
	readErr error
}

// NewDecoder instantiates a Decoder to process a Reader input.
func NewDecoder(r io.Reader) *Decoder {
	data, err := io.ReadAll(r)
	if err != nil {
		return &Decoder{readErr: err}
	}
	return &Decoder{ts: NewTokenStream(NewParserFromOwnedBytes(data))}
}

// Token will decode the next token from the current XML position.
//
// The token is meant to be processed BEFORE the next token is called.
// Contents of previous tokens can be modified at any time during
// tokenization.
func (d *Decoder) Token() (Token, error) {
	if d.readErr != nil {
		return nil, fmt.Errorf("xml: reading input: %w", d.readErr)
	}
	return d.ts.NextToken()
}
