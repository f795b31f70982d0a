// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package hashengines defines the hash engine abstraction used to compute
// object digests locally, and a registry of engines keyed by algorithm name.
package hashengines

import (
	"github.com/sampras343/transfer-checksums/pkg/hashing/digests"
)

// HashEngine computes a digest.
type HashEngine interface {
	// Compute returns the digest of everything fed to the engine so far.
	Compute() (digests.Digest, error)

	// DigestName is the algorithm name carried by computed digests.
	DigestName() string

	// DigestSize is the length in bytes of computed digests.
	DigestSize() int
}

// Streaming accepts data incrementally.
type Streaming interface {
	Update(data []byte)
	// Reset clears state and seeds it with data.
	Reset(data []byte)
}

// StreamingHashEngine is a HashEngine fed incrementally.
type StreamingHashEngine interface {
	HashEngine
	Streaming
}
