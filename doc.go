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

// Package xml is an incremental, resumable, allocation-conscious XML 1.0
// pull parser.
//
// Unlike the standard library's encoding/xml, a Parser owns a single growable
// input buffer and never blocks on I/O: it reports IncompleteDocument instead
// of waiting for more bytes, and lets the caller feed a continuation with
// AppendData once more of the document has arrived. Combined with
// SetSavepointAtCurrentTag and RestoreToSavepoint, this makes it possible to
// parse a document as it streams in over the network, re-parsing only from
// the last savepoint onwards, and without pinning the whole document in
// memory past the point the caller has finished with it.
//
// All decoded names and values returned by Parser's accessors are borrows
// into internal buffers. They are valid only until the next call to
// ParseNext, AppendData, or RestoreToSavepoint; copy them if you need them to
// outlive that call.
package xml
