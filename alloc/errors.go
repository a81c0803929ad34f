// Copyright 2019 Michael J. Fromberger. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package alloc

import "errors"

// ErrOutOfMemory is the underlying cause recorded by [Heap.LastError] when
// heap extension fails. It is never returned directly by Reserve or Resize,
// which report out-of-memory by returning [NullAddr] per spec.
var ErrOutOfMemory = errors.New("alloc: heap extension failed")

// ErrInvalidHeap is wrapped into the error returned by [Heap.Check] when a
// heap invariant is violated.
var ErrInvalidHeap = errors.New("alloc: heap invariant violated")

// ErrNotInitialized describes a [Heap] that has not been bootstrapped with
// [New]. No function in this package returns it.
var ErrNotInitialized = errors.New("alloc: heap not initialized")
