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

package main

import (
	"fmt"
	"path/filepath"

	"github.com/creachadair/atomicfile"
	"github.com/golang/snappy"
)

// snapshot writes a snappy-compressed copy of the heap's raw byte image to
// dir/heap-<id>.snap, using an atomic rename so a reader never observes a
// partially written file.
func (h *harness) snapshot(dir string) error {
	raw := h.heap.Bytes()
	compressed := snappy.Encode(nil, raw)

	path := filepath.Join(dir, fmt.Sprintf("heap-%d.snap", h.id))
	if err := atomicfile.WriteData(path, compressed, 0600); err != nil {
		return fmt.Errorf("heap %d: write snapshot: %w", h.id, err)
	}
	h.logger.Info("wrote snapshot", "path", path, "raw_bytes", len(raw), "compressed_bytes", len(compressed))
	return nil
}
