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

// Package xmlgz builds parsers over possibly gzip-compressed XML documents.
//
// XML payloads fetched over the wire very often arrive gzip-compressed. This
// package sniffs the gzip magic bytes the same way the parser's own factory
// sniffs a byte-order mark: inspect the head of the stream, pick the right
// decoder, hand the decoded bytes over.
package xmlgz

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	xml "github.com/krox/xmlpull"
)

// gzip streams start with the two-byte magic 1F 8B.
var gzipMagic = []byte{0x1F, 0x8B}

// IsCompressed reports whether data begins with the gzip magic bytes.
func IsCompressed(data []byte) bool {
	return bytes.HasPrefix(data, gzipMagic)
}

// NewParser reads r to completion and returns a Parser over its contents,
// transparently decompressing when the stream is gzip-compressed. The
// returned Parser owns the decompressed bytes; r is not used afterwards.
func NewParser(r io.Reader) (*xml.Parser, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("xmlgz: reading input: %w", err)
	}
	return NewParserFromBytes(data)
}

// NewParserFromBytes is NewParser over bytes already in memory. It takes
// ownership of data when data is not compressed.
func NewParserFromBytes(data []byte) (*xml.Parser, error) {
	if !IsCompressed(data) {
		return xml.NewParserFromOwnedBytes(data), nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("xmlgz: opening gzip stream: %w", err)
	}
	plain, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("xmlgz: decompressing: %w", err)
	}
	if err := zr.Close(); err != nil {
		return nil, fmt.Errorf("xmlgz: closing gzip stream: %w", err)
	}
	return xml.NewParserFromOwnedBytes(plain), nil
}
