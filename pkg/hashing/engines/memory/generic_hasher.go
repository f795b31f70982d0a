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

// Package memory provides in-memory hash engines and registers them with
// the engine registry.
package memory

import (
	"hash"

	"github.com/sampras343/transfer-checksums/pkg/hashing/digests"
	hashengines "github.com/sampras343/transfer-checksums/pkg/hashing/engines"
)

var _ hashengines.StreamingHashEngine = (*GenericHashEngine)(nil)

// HashFactoryFunc creates a hash.Hash.
type HashFactoryFunc func() (hash.Hash, error)

// GenericHashEngine adapts any hash.Hash to StreamingHashEngine.
type GenericHashEngine struct {
	name    string
	size    int
	factory HashFactoryFunc
	h       hash.Hash
}

// NewGenericHashEngine returns an engine named name producing size-byte
// digests, seeded with initialData.
func NewGenericHashEngine(name string, size int, factory HashFactoryFunc, initialData []byte) (*GenericHashEngine, error) {
	h, err := factory()
	if err != nil {
		return nil, err
	}

	engine := &GenericHashEngine{
		name:    name,
		size:    size,
		factory: factory,
		h:       h,
	}
	engine.Update(initialData)
	return engine, nil
}

// Write lets the engine sit behind io.Copy.
func (e *GenericHashEngine) Write(p []byte) (int, error) {
	return e.h.Write(p)
}

func (e *GenericHashEngine) Update(data []byte) {
	if len(data) > 0 {
		// hash.Hash.Write never errors
		_, _ = e.h.Write(data)
	}
}

func (e *GenericHashEngine) Reset(data []byte) {
	// the factory already succeeded once in the constructor
	h, _ := e.factory()
	e.h = h
	e.Update(data)
}

func (e *GenericHashEngine) Compute() (digests.Digest, error) {
	return digests.NewDigest(e.name, e.h.Sum(nil)), nil
}

func (e *GenericHashEngine) DigestName() string {
	return e.name
}

func (e *GenericHashEngine) DigestSize() int {
	return e.size
}
