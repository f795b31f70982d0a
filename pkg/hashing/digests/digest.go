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

// Package digests provides the digest value type and the codec between the
// transport encoding reported by object stores (base64) and the canonical
// lowercase hexadecimal form stored in manifests.
package digests

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// Digest is an opaque content hash reported by a storage backend.
//
// Fields are unexported and accessors copy, so a Digest never changes after
// construction.
type Digest struct {
	algorithm string // Name of the hash algorithm used
	value     []byte // Raw digest bytes
}

// NewDigest creates a new Digest with the specified algorithm and hash value.
//
// The value slice is copied.
func NewDigest(algorithm string, value []byte) Digest {
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	return Digest{
		algorithm: algorithm,
		value:     valueCopy,
	}
}

// Algorithm returns the name of the hash algorithm used to compute this digest.
//
// The name is informational ("md5" for GCS and S3 listings); the core never
// recomputes digests, so it is not used for comparison of manifest rows.
func (d Digest) Algorithm() string {
	return d.algorithm
}

// Value returns a copy of the raw digest bytes.
func (d Digest) Value() []byte {
	valueCopy := make([]byte, len(d.value))
	copy(valueCopy, d.value)
	return valueCopy
}

// Hex returns the canonical lowercase hexadecimal form of the digest.
func (d Digest) Hex() string {
	return hex.EncodeToString(d.value)
}

// Base64 returns the transport form of the digest, standard base64 with
// padding, as GCS reports it in object metadata.
func (d Digest) Base64() string {
	return base64.StdEncoding.EncodeToString(d.value)
}

// Size returns the length in bytes of the digest value.
func (d Digest) Size() int {
	return len(d.value)
}

// String returns a human-readable string representation of the digest.
//
// The format is "algorithm:hexvalue" (e.g., "md5:9e107d9d...").
func (d Digest) String() string {
	return fmt.Sprintf("%s:%s", d.algorithm, d.Hex())
}

// Equal reports whether both digests have the same algorithm name and value.
func (d Digest) Equal(other Digest) bool {
	if d.algorithm != other.algorithm {
		return false
	}

	return bytes.Equal(d.value, other.value)
}
