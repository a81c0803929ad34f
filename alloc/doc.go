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

// Package alloc implements a single-region, segregated-free-list dynamic
// memory allocator over a [heapmem.Region].
//
// # Summary
//
// A [Heap] exposes the four classical allocation operations — Reserve,
// Release, Resize, and Calloc — backed by an implicit list of blocks, each
// headed by an 8-byte boundary tag (see package tag). Free blocks are
// additionally indexed by six size-segregated doubly-linked lists so that
// placement does not require a full heap scan.
//
// # Layout
//
// Every block begins with a header tag. Reserved blocks carry only a
// header; free blocks carry a matching footer tag at their last 8 bytes, and
// use the first 16 bytes of their payload to hold predecessor/successor
// pointers into their owning free-list bucket. This is why the minimum block
// size is 32 bytes: header (8) + two pointers (16) + footer (8).
//
//	 ┌───────────┬───── blocks ─────┬───────────┐
//	 │ prologue  │ H [data] [F]? … │ epilogue  │
//	 │  8B, A=1  │                  │  size 0   │
//	 └───────────┴──────────────────┴───────────┘
//
// The prologue and epilogue are sentinel tags that eliminate edge cases at
// both ends of the heap: the prologue is always reserved, so a free block at
// the low edge never attempts to coalesce leftward past it; the epilogue is
// always reserved and marked E, so a free block at the high edge never
// attempts to coalesce rightward past it.
//
// # Concurrency
//
// A *Heap value holds no lock and is not safe for concurrent use. This
// mirrors the single-flow-of-control assumption of the allocator this
// package models: multiple independent *Heap values may be used
// concurrently from different goroutines (each is a self-contained
// instance), but a single *Heap must not be shared across goroutines
// without external synchronization.
package alloc
