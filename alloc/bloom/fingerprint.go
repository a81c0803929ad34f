// Copyright 2021 Michael J. Fromberger. All Rights Reserved.
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

package bloom

import "golang.org/x/crypto/blake2b"

// Fingerprint is a stable digest of a block's payload bytes at the moment
// Release was called, retained only long enough to flag a write observed
// after release (a use-after-free symptom) when a harness re-checks it
// before the address is reused.
type Fingerprint [blake2b.Size256]byte

// Fingerprint256 computes the fingerprint of data.
func Fingerprint256(data []byte) Fingerprint {
	return blake2b.Sum256(data)
}
