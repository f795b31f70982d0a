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

package io

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sampras343/transfer-checksums/pkg/hashing/digests"
	hashengines "github.com/sampras343/transfer-checksums/pkg/hashing/engines"
	"github.com/sampras343/transfer-checksums/pkg/utils"
)

var _ FileHasher = (*SimpleFileHasher)(nil)

// SimpleFileHasher streams a whole file through a StreamingHashEngine.
// chunkSize 0 reads the file in one go.
type SimpleFileHasher struct {
	filePath           string
	contentHasher      hashengines.StreamingHashEngine
	chunkSize          int
	digestNameOverride string
}

// NewSimpleFileHasher returns a hasher for filePath. digestNameOverride, when
// set, replaces the engine's algorithm name on computed digests.
func NewSimpleFileHasher(
	filePath string,
	contentHasher hashengines.StreamingHashEngine,
	chunkSize int,
	digestNameOverride string,
) (*SimpleFileHasher, error) {
	if chunkSize < 0 {
		return nil, fmt.Errorf("chunk size must be non-negative, got %d", chunkSize)
	}
	if filePath == "" {
		return nil, fmt.Errorf("file path must be non-empty")
	}
	if contentHasher == nil {
		return nil, fmt.Errorf("content hasher must not be nil")
	}

	return &SimpleFileHasher{
		filePath:           filePath,
		contentHasher:      contentHasher,
		chunkSize:          chunkSize,
		digestNameOverride: digestNameOverride,
	}, nil
}

// SetFile points the hasher at another file.
func (h *SimpleFileHasher) SetFile(filePath string) error {
	if filePath == "" {
		return fmt.Errorf("file path must be non-empty")
	}
	h.filePath = filePath
	return nil
}

func (h *SimpleFileHasher) DigestName() string {
	if h.digestNameOverride != "" {
		return h.digestNameOverride
	}
	return h.contentHasher.DigestName()
}

func (h *SimpleFileHasher) DigestSize() int {
	return h.contentHasher.DigestSize()
}

func (h *SimpleFileHasher) Compute() (digests.Digest, error) {
	return h.ComputeContext(context.Background())
}

// ComputeContext hashes the file. A missing file is reported as NotFound.
func (h *SimpleFileHasher) ComputeContext(ctx context.Context) (digests.Digest, error) {
	h.contentHasher.Reset(nil)

	f, err := os.Open(h.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return digests.Digest{}, utils.NewChecksumErrorWithPath(utils.ErrTypeNotFound, h.filePath, "file not found", err)
		}
		return digests.Digest{}, utils.NewChecksumErrorWithPath(utils.ErrTypeIO, h.filePath, "open file", err)
	}
	defer f.Close()

	if h.chunkSize == 0 {
		data, err := io.ReadAll(f)
		if err != nil {
			return digests.Digest{}, utils.NewChecksumErrorWithPath(utils.ErrTypeIO, h.filePath, "read file", err)
		}
		h.contentHasher.Update(data)
	} else {
		buf := make([]byte, h.chunkSize)
		for {
			if err := ctx.Err(); err != nil {
				return digests.Digest{}, err
			}
			n, err := f.Read(buf)
			if n > 0 {
				h.contentHasher.Update(buf[:n])
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				return digests.Digest{}, utils.NewChecksumErrorWithPath(utils.ErrTypeIO, h.filePath, "read file", err)
			}
		}
	}

	d, err := h.contentHasher.Compute()
	if err != nil {
		return digests.Digest{}, fmt.Errorf("compute digest: %w", err)
	}
	return digests.NewDigest(h.DigestName(), d.Value()), nil
}
