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

// isXMLSpace implements the XML 1.0 S production: #x20 | #x9 | #xD | #xA.
func isXMLSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

// isNameStartChar implements the XML 1.0 NameStartChar production. Namespace prefixes are not split out (see the grounding
// ledger), so ':' is accepted here like any other start character.
func isNameStartChar(r rune) bool {
	switch {
	case r == ':' || r == '_':
		return true
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		return true
	case r >= 0xC0 && r <= 0xD6,
		r >= 0xD8 && r <= 0xF6,
		r >= 0xF8 && r <= 0x2FF,
		r >= 0x370 && r <= 0x37D,
		r >= 0x37F && r <= 0x1FFF,
		r >= 0x200C && r <= 0x200D,
		r >= 0x2070 && r <= 0x218F,
		r >= 0x2C00 && r <= 0x2FEF,
		r >= 0x3001 && r <= 0xD7FF,
		r >= 0xF900 && r <= 0xFDCF,
		r >= 0xFDF0 && r <= 0xFFFD,
		r >= 0x10000 && r <= 0xEFFFF:
		return true
	}
	return false
}

// isNameChar implements the XML 1.0 NameChar production: NameStartChar plus
// '-', '.', digits, the middle dot, and a couple of combining-mark ranges.
func isNameChar(r rune) bool {
	if isNameStartChar(r) {
		return true
	}
	switch {
	case r == '-' || r == '.' || r == 0xB7:
		return true
	case r >= '0' && r <= '9':
		return true
	case r >= 0x0300 && r <= 0x036F:
		return true
	case r >= 0x203F && r <= 0x2040:
		return true
	}
	return false
}
