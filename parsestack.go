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

import "github.com/google/triemap"

// parseStack tracks the tag names of currently-open elements, outermost
// first. Two implementations exist because UTF-8 input lets a frame borrow
// directly into the input buffer (zero-copy), while UTF-16 input must be
// transcoded to UTF-8 first and so needs an owned backing store.
type parseStack interface {
	pop()
	top() []byte
	depth() int
	// addOffset shifts every borrowed frame by delta. A no-op for the
	// owned (UTF-16) representation, whose frames never alias buf.
	addOffset(delta int)
	// clone returns a deep, independent copy for the Parser's lazy
	// savepoint snapshot.
	clone() parseStack
	// truncate pops frames until depth() == n.
	truncate(n int)
	// minBorrowedOffset returns the smallest input-buffer offset any live
	// frame still aliases, and true, if this stack's frames borrow
	// directly into the Parser's buffer. It returns (0, false) for a
	// stack whose frames are independently owned (ownedStack) and so
	// place no constraint on how much of the buffer Parser.compact may
	// discard. Because frames are pushed outermost-first and never
	// reordered, the oldest live frame always holds the smallest offset.
	minBorrowedOffset() (int, bool)
}

// --- borrowedStack (UTF-8): frames are offset pairs into the Parser's buf.

type offsetPair struct{ start, end int }

type borrowedStack struct {
	buf    *[]byte // pointer to the Parser's input buffer
	frames []offsetPair
}

func newBorrowedStack(buf *[]byte) *borrowedStack {
	return &borrowedStack{buf: buf}
}

// pushAt records a frame as the half-open byte range [start, end) of the
// Parser's input buffer. Frames are offsets, not byte content, because a
// borrowed frame must survive the buffer being reallocated or slid during
// compaction (see addOffset and Parser.compact).
func (s *borrowedStack) pushAt(start, end int) {
	s.frames = append(s.frames, offsetPair{start, end})
}

func (s *borrowedStack) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

func (s *borrowedStack) truncate(n int) {
	s.frames = s.frames[:n]
}

func (s *borrowedStack) top() []byte {
	if len(s.frames) == 0 {
		return nil
	}
	f := s.frames[len(s.frames)-1]
	return (*s.buf)[f.start:f.end]
}

func (s *borrowedStack) depth() int { return len(s.frames) }

func (s *borrowedStack) addOffset(delta int) {
	for i := range s.frames {
		s.frames[i].start += delta
		s.frames[i].end += delta
	}
}

func (s *borrowedStack) clone() parseStack {
	c := &borrowedStack{buf: s.buf, frames: make([]offsetPair, len(s.frames))}
	copy(c.frames, s.frames)
	return c
}

func (s *borrowedStack) minBorrowedOffset() (int, bool) {
	if len(s.frames) == 0 {
		return 0, false
	}
	return s.frames[0].start, true
}

// --- ownedStack (UTF-16): frames are UTF-8 bytes copied into a private
// backing buffer, delimited by a parallel slice of end-offsets.

type ownedStack struct {
	buf    []byte
	ends   []int
	intern triemap.RuneSliceMap
}

func newOwnedStack() *ownedStack {
	return &ownedStack{}
}

func (s *ownedStack) push(name []byte) {
	// name is already UTF-8. Names are looked up in an intern cache keyed
	// by their runes: a hit copies the cached bytes (equal to name) into
	// the frame, a miss copies name and records a copy in the cache.
	key := []rune(string(name))
	if cached, ok := s.intern.Get(key); ok {
		cb := cached.([]byte)
		tmpEnd := 0
		if len(s.ends) > 0 {
			tmpEnd = s.ends[len(s.ends)-1]
		}
		if len(s.buf) < tmpEnd+len(cb) {
			s.buf = append(s.buf, make([]byte, tmpEnd+len(cb)+50-len(s.buf))...)
		}
		copy(s.buf[tmpEnd:], cb)
		s.ends = append(s.ends, tmpEnd+len(cb))
		return
	}

	tmpEnd := 0
	if len(s.ends) > 0 {
		tmpEnd = s.ends[len(s.ends)-1]
	}
	if len(s.buf) < tmpEnd+len(name) {
		s.buf = append(s.buf, make([]byte, tmpEnd+len(name)+50-len(s.buf))...)
	}
	copy(s.buf[tmpEnd:], name)
	s.ends = append(s.ends, tmpEnd+len(name))

	stored := make([]byte, len(name))
	copy(stored, name)
	s.intern.Put(key, stored)
}

func (s *ownedStack) pop() {
	s.ends = s.ends[:len(s.ends)-1]
}

func (s *ownedStack) truncate(n int) {
	s.ends = s.ends[:n]
}

func (s *ownedStack) top() []byte {
	if len(s.ends) == 0 {
		return nil
	}
	start := 0
	if len(s.ends) >= 2 {
		start = s.ends[len(s.ends)-2]
	}
	return s.buf[start:s.ends[len(s.ends)-1]]
}

func (s *ownedStack) depth() int { return len(s.ends) }

func (s *ownedStack) addOffset(int) {}

func (s *ownedStack) minBorrowedOffset() (int, bool) { return 0, false }

func (s *ownedStack) clone() parseStack {
	c := &ownedStack{
		buf:  append([]byte(nil), s.buf...),
		ends: append([]int(nil), s.ends...),
	}
	// The intern cache is a pure performance optimization keyed by
	// content, not position; sharing it across the clone and the live
	// stack is safe and avoids copying it.
	c.intern = s.intern
	return c
}
