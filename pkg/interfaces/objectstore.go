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

// Package interfaces defines the collaborator contracts the checksum core
// depends on. Implementations live in pkg/storage.
package interfaces

import (
	"context"
	"iter"
)

// ObjectInfo describes one listed object.
type ObjectInfo struct {
	// Name is the full object name inside its container.
	Name string

	// TransportDigest is the digest in the backend's transport encoding
	// (base64). Empty when the backend has no digest for the object.
	TransportDigest string

	// Size is the object size in bytes, when known.
	Size int64
}

// ObjectLister lists objects lazily.
type ObjectLister interface {
	// List yields every object in container whose name starts with prefix.
	// Pagination and retries are the implementation's concern; the sequence
	// stops after yielding a non-nil error.
	List(ctx context.Context, container, prefix string) iter.Seq2[ObjectInfo, error]
}

// ObjectStore is the full collaborator surface: listing, reading and writing
// manifest objects.
type ObjectStore interface {
	ObjectLister

	// Read returns the content of an object. A missing object yields an
	// error of type utils.ErrTypeNotFound.
	Read(ctx context.Context, container, name string) ([]byte, error)

	// Write creates or replaces an object.
	Write(ctx context.Context, container, name string, data []byte) error

	// Exists reports whether an object exists.
	Exists(ctx context.Context, container, name string) (bool, error)
}

// DigestDescriber is implemented by stores that compute digests locally
// instead of reporting the backend's md5.
type DigestDescriber interface {
	// DigestAlgorithm names the algorithm behind TransportDigest and the
	// decoded digest length in bytes.
	DigestAlgorithm() (name string, size int)
}
