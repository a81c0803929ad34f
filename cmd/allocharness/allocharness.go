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

// Program allocharness drives a population of independent heaps through a
// random workload of reserve/resize/release calls, verifying invariants
// periodically and optionally snapshotting each heap's final state to disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/creachadair/msync"
	"github.com/creachadair/taskgroup"

	"github.com/creachadair/blkalloc/alloc"
	"github.com/creachadair/blkalloc/heapmem"
)

var (
	numHeaps    = flag.Int("heaps", 4, "Number of independent heaps to drive concurrently")
	opsPerHeap  = flag.Int("ops", 10000, "Number of allocator operations per heap")
	maxRequest  = flag.Int("max-request", 4096, "Maximum single reserve/resize request size, in bytes")
	checkEvery  = flag.Int("check-every", 500, "Verify heap invariants after every N operations")
	snapshotDir = flag.String("snapshot-dir", "", "If set, write a heap-dump snapshot here after each heap's run")
	doDebug     = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: %s [options]

Drive -heaps independent allocator instances through -ops randomized
reserve/resize/release calls each, verifying heap invariants every
-check-every operations.
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *doDebug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger); err != nil {
		logger.Error("harness failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	heaps := make([]*harness, *numHeaps)
	for i := range heaps {
		h, err := newHarness(i, logger)
		if err != nil {
			return fmt.Errorf("heap %d: %w", i, err)
		}
		heaps[i] = h
	}

	g, start := taskgroup.New(nil).Limit(2 * *numHeaps)
	for _, h := range heaps {
		h := h

		// The snapshot waiter runs concurrently with the workload but never
		// touches the heap until h.done is set, which happens only after the
		// workload goroutine has stopped mutating it: the Flag's Ready()
		// channel close is the handoff, the same role nempty plays between
		// the write-behind buffer's producers and its background writer.
		start(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-h.done.Ready():
			}
			if *snapshotDir == "" {
				return nil
			}
			return h.snapshot(*snapshotDir)
		})
		start(func() error {
			defer h.done.Set(nil)
			return h.workload(ctx, *opsPerHeap, *maxRequest, *checkEvery)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, h := range heaps {
		logger.Info("heap complete", "id", h.id, "digest", fmt.Sprintf("%016x", h.heap.Digest()))
	}
	return nil
}

// harness drives one independent alloc.Heap through a randomized workload.
// Exactly one goroutine (the workload goroutine) ever mutates heap; a
// second, the snapshot waiter registered alongside it in run, only reads
// heap state after the workload goroutine has signaled completion via done,
// so the two never execute concurrently against the same Heap value.
type harness struct {
	id     int
	heap   *alloc.Heap
	logger *slog.Logger
	rng    *rand.Rand
	done   *msync.Flag[any]

	live []heapmem.Addr
}

func newHarness(id int, logger *slog.Logger) (*harness, error) {
	h, err := alloc.New(heapmem.NewRegion(), logger.With("heap", id))
	if err != nil {
		return nil, err
	}
	return &harness{
		id:     id,
		heap:   h,
		logger: logger.With("heap", id),
		rng:    rand.New(rand.NewSource(int64(id) + 1)),
		done:   msync.NewFlag[any](),
	}, nil
}

func (h *harness) workload(ctx context.Context, ops, maxRequest, checkEvery int) error {
	for i := 0; i < ops; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		switch {
		case len(h.live) == 0 || h.rng.Intn(3) == 0:
			n := 1 + h.rng.Intn(maxRequest)
			p := h.heap.Reserve(n)
			if p != alloc.NullAddr {
				h.live = append(h.live, p)
			}
		case h.rng.Intn(2) == 0:
			idx := h.rng.Intn(len(h.live))
			p := h.live[idx]
			h.heap.Release(p)
			h.live = append(h.live[:idx], h.live[idx+1:]...)
		default:
			idx := h.rng.Intn(len(h.live))
			n := 1 + h.rng.Intn(maxRequest)
			h.live[idx] = h.heap.Resize(h.live[idx], n)
		}

		if checkEvery > 0 && i%checkEvery == 0 {
			if err := h.heap.Check(fmt.Sprintf("heap-%d-op-%d", h.id, i)); err != nil {
				return err
			}
		}
	}
	return h.heap.Check(fmt.Sprintf("heap-%d-final", h.id))
}
