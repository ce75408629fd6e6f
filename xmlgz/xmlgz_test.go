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

package xmlgz

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/gzip"
	xml "github.com/krox/xmlpull"
)

const doc = `<root><item id="1">first</item><item id="2">second</item></root>`

func gzipped(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func drain(t *testing.T, p *xml.Parser) []string {
	t.Helper()
	var tags []string
	for {
		switch kind := p.ParseNext(); kind {
		case xml.OpenTag:
			tags = append(tags, string(p.CurrentTagName()))
		case xml.CloseDocument:
			return tags
		case xml.Error, xml.IncompleteDocument:
			t.Fatalf("parser state %v: %v", kind, p.Err())
		}
	}
}

func TestNewParserGzip(t *testing.T) {
	p, err := NewParser(bytes.NewReader(gzipped(t, []byte(doc))))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"root", "item", "item"}
	got := drain(t, p)
	if len(got) != len(want) {
		t.Fatalf("open tags = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("open tags = %v, want %v", got, want)
		}
	}
}

func TestNewParserPlain(t *testing.T) {
	p, err := NewParser(bytes.NewReader([]byte(doc)))
	if err != nil {
		t.Fatal(err)
	}
	if got := drain(t, p); len(got) != 3 {
		t.Fatalf("open tags = %v, want 3 tags", got)
	}
}

func TestNewParserCorruptGzip(t *testing.T) {
	corrupt := gzipped(t, []byte(doc))[:10]
	corrupt[3] ^= 0xFF // clobber the header flags
	if _, err := NewParserFromBytes(corrupt); err == nil {
		t.Fatal("corrupt gzip stream produced a parser")
	}
}

func TestIsCompressed(t *testing.T) {
	if IsCompressed([]byte(doc)) {
		t.Error("plain XML reported as compressed")
	}
	if !IsCompressed(gzipped(t, []byte(doc))) {
		t.Error("gzip stream not recognized")
	}
	if IsCompressed([]byte{0x1F}) {
		t.Error("single byte reported as compressed")
	}
}
