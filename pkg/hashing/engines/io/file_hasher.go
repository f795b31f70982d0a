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

// Package io hashes files on local disk with a registered hash engine.
package io

import (
	"context"

	"github.com/sampras343/transfer-checksums/pkg/hashing/digests"
	hashengines "github.com/sampras343/transfer-checksums/pkg/hashing/engines"
)

// FileHasher is a HashEngine bound to a file.
type FileHasher interface {
	hashengines.HashEngine
	// ComputeContext is Compute that gives up between chunks once ctx is done.
	ComputeContext(ctx context.Context) (digests.Digest, error)
}

// FileHasherFactory returns a FileHasher for path.
type FileHasherFactory func(path string) (FileHasher, error)

// NewFactory returns a FileHasherFactory hashing with algorithm in
// chunkSize reads.
func NewFactory(algorithm string, chunkSize int) FileHasherFactory {
	return func(path string) (FileHasher, error) {
		engine, err := hashengines.Create(algorithm)
		if err != nil {
			return nil, err
		}
		return NewSimpleFileHasher(path, engine, chunkSize, "")
	}
}
