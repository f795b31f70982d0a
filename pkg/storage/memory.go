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

package storage

import (
	"context"
	"iter"
	"sort"
	"strings"
	"sync"

	"github.com/sampras343/transfer-checksums/pkg/hashing/engines/memory"
	"github.com/sampras343/transfer-checksums/pkg/interfaces"
)

type memoryObject struct {
	data   []byte
	digest string
}

// MemoryStore keeps containers in process memory. Objects written through
// Put or Write get an md5 transport digest; PutObject stores any digest,
// including none. Listing is lexical, like the cloud backends.
type MemoryStore struct {
	mu         sync.RWMutex
	containers map[string]map[string]memoryObject
	listErrs   map[string]error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		containers: make(map[string]map[string]memoryObject),
		listErrs:   make(map[string]error),
	}
}

// Put stores data and computes its md5 digest.
func (s *MemoryStore) Put(container, name string, data []byte) {
	h, _ := memory.NewMD5(data)
	d, _ := h.Compute()
	s.PutObject(container, name, data, d.Base64())
}

// PutObject stores data with an explicit transport digest.
func (s *MemoryStore) PutObject(container, name string, data []byte, transportDigest string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.containers[container]
	if !ok {
		c = make(map[string]memoryObject)
		s.containers[container] = c
	}
	c[name] = memoryObject{data: append([]byte(nil), data...), digest: transportDigest}
}

// FailList makes listings of container yield err after the first object.
func (s *MemoryStore) FailList(container string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErrs[container] = err
}

func (s *MemoryStore) List(ctx context.Context, container, prefix string) iter.Seq2[interfaces.ObjectInfo, error] {
	return func(yield func(interfaces.ObjectInfo, error) bool) {
		s.mu.RLock()
		var objs []interfaces.ObjectInfo
		for name, obj := range s.containers[container] {
			if strings.HasPrefix(name, prefix) {
				objs = append(objs, interfaces.ObjectInfo{Name: name, TransportDigest: obj.digest, Size: int64(len(obj.data))})
			}
		}
		listErr := s.listErrs[container]
		s.mu.RUnlock()

		sort.Slice(objs, func(i, j int) bool { return objs[i].Name < objs[j].Name })

		for i, obj := range objs {
			if err := ctx.Err(); err != nil {
				yield(interfaces.ObjectInfo{}, err)
				return
			}
			if listErr != nil && i == 1 {
				yield(interfaces.ObjectInfo{}, ioError("listing objects", container, "", listErr))
				return
			}
			if !yield(obj, nil) {
				return
			}
		}
		if listErr != nil && len(objs) < 2 {
			yield(interfaces.ObjectInfo{}, ioError("listing objects", container, "", listErr))
		}
	}
}

func (s *MemoryStore) Read(_ context.Context, container, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.containers[container][name]
	if !ok {
		return nil, notFound(container, name, nil)
	}
	return append([]byte(nil), obj.data...), nil
}

func (s *MemoryStore) Write(ctx context.Context, container, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Put(container, name, data)
	return nil
}

func (s *MemoryStore) Exists(_ context.Context, container, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.containers[container][name]
	return ok, nil
}
