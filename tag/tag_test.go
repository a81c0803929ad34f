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

package tag_test

import (
	"testing"

	"github.com/creachadair/blkalloc/tag"
)

func TestPackUnpack(t *testing.T) {
	tests := []struct {
		size                          uint64
		alloc, prev, next, epilogue bool
	}{
		{0, true, true, true, true},     // epilogue
		{8, true, true, true, false},    // prologue
		{32, true, false, true, false},  // minimum reserved block
		{4096, false, true, false, false},
		{1<<60 - 16, true, false, false, false}, // near max size
	}
	for _, c := range tests {
		got := tag.New(c.size, c.alloc, c.prev, c.next, c.epilogue)
		if got.Size() != c.size {
			t.Errorf("New(%v).Size() = %d, want %d", c, got.Size(), c.size)
		}
		if got.Alloc() != c.alloc || got.PrevAlloc() != c.prev ||
			got.NextAlloc() != c.next || got.Epilogue() != c.epilogue {
			t.Errorf("New(%v) = %#v, bits do not match", c, got)
		}
	}
}

func TestWithers(t *testing.T) {
	base := tag.New(64, false, false, false, false)

	if v := base.WithSize(128); v.Size() != 128 {
		t.Errorf("WithSize(128).Size() = %d, want 128", v.Size())
	}
	if v := base.WithAlloc(true); !v.Alloc() || v.Size() != 64 {
		t.Errorf("WithAlloc(true) = %#v, want alloc set and size unchanged", v)
	}
	if v := base.WithPrevAlloc(true); !v.PrevAlloc() {
		t.Errorf("WithPrevAlloc(true) did not set P")
	}
	if v := base.WithNextAlloc(true); !v.NextAlloc() {
		t.Errorf("WithNextAlloc(true) did not set N")
	}

	// Setting one field must not disturb the others.
	full := tag.New(96, true, true, true, false)
	if v := full.WithNextAlloc(false); v.Size() != 96 || !v.Alloc() || !v.PrevAlloc() || v.NextAlloc() {
		t.Errorf("WithNextAlloc(false) on %#v = %#v, unexpected field change", full, v)
	}
}

func TestReadWriteAt(t *testing.T) {
	mem := make([]byte, 16)
	want := tag.New(48, true, false, true, false)
	tag.WriteAt(mem, 8, want)

	got := tag.ReadAt(mem, 8)
	if got != want {
		t.Errorf("ReadAt = %#v, want %#v", got, want)
	}
	// The bytes before the tag must be untouched.
	for i, b := range mem[:8] {
		if b != 0 {
			t.Errorf("mem[%d] = %d, want 0 (WriteAt wrote out of range)", i, b)
		}
	}
}
