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

// attrBuffer recycles the []*Attr slice handed out with each StartTag so
// that attribute-bearing tags do not grow a fresh slice per token. Only the
// slice storage is reused; the Attr values are freshly allocated, so a
// copied StartTag keeps valid attributes after the stream moves on.
type attrBuffer struct {
	items []*Attr
	n     int
}

func (b *attrBuffer) reset() {
	b.n = 0
}

func (b *attrBuffer) add(a *Attr) {
	if b.n == len(b.items) {
		b.items = append(b.items, nil)
	}
	b.items[b.n] = a
	b.n++
}

// get returns the attributes added since the last reset, or nil for none,
// and readies the buffer for the next tag. The returned slice is
// overwritten by the next tag's attributes.
func (b *attrBuffer) get() []*Attr {
	if b.n == 0 {
		return nil
	}
	attrs := b.items[:b.n]
	b.n = 0
	return attrs
}
