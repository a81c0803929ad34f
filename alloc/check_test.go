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

import (
	"errors"
	"testing"
)

func TestCheckPassesOnFreshHeap(t *testing.T) {
	h := newTestHeap(t)
	if err := h.Check("fresh"); err != nil {
		t.Errorf("Check: %v", err)
	}
}

func TestCheckDetectsCorruptedSize(t *testing.T) {
	h := newTestHeap(t)
	p := h.Reserve(64)
	header := headerFromData(p)

	corrupt := h.tagAt(header).WithSize(17) // violates 16-byte alignment
	h.writeTag(header, corrupt)

	err := h.Check("corrupted")
	if err == nil {
		t.Fatal("Check did not detect corrupted block size")
	}
	if !errors.Is(err, ErrInvalidHeap) {
		t.Errorf("Check error = %v, want wrapping ErrInvalidHeap", err)
	}
}

func TestCheckDetectsMissingFreeListMembership(t *testing.T) {
	h := newTestHeap(t)
	p := h.Reserve(64)
	h.Release(p)

	header := headerFromData(p)
	h.unlinkFree(header) // now free per its tag, but absent from every bucket

	if err := h.Check("orphaned-free-block"); err == nil {
		t.Fatal("Check did not detect a free block missing from its bucket")
	}
}

func TestDigestStableAcrossChecks(t *testing.T) {
	h := newTestHeap(t)
	h.Reserve(40)
	h.Reserve(80)
	a := h.Digest()
	if err := h.Check("between-digests"); err != nil {
		t.Fatalf("Check: %v", err)
	}
	b := h.Digest()
	if a != b {
		t.Errorf("Digest not stable across repeated calls: %d != %d", a, b)
	}
}
