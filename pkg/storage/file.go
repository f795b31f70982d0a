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
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"github.com/sampras343/transfer-checksums/pkg/config"
	"github.com/sampras343/transfer-checksums/pkg/hashing"
	"github.com/sampras343/transfer-checksums/pkg/interfaces"
	"github.com/sampras343/transfer-checksums/pkg/utils"
)

// FileStore treats each directory under root as a container. Digests are
// computed while listing with the configured hash engine.
type FileStore struct {
	root    string
	hashing *hashing.Config
}

// NewFileStore returns a store rooted at root. A nil hashing config uses
// md5 with the default chunk size.
func NewFileStore(root string, hc *hashing.Config) *FileStore {
	if hc == nil {
		hc = hashing.NewConfig()
	}
	return &FileStore{root: root, hashing: hc}
}

// NewFileStoreFromConfig builds a FileStore from the storage.file section.
func NewFileStoreFromConfig(cfg config.FileConfig) (*FileStore, error) {
	hc := hashing.NewConfig().
		SetAlgorithm(cfg.Algorithm).
		SetChunkSize(cfg.ChunkSize).
		SetAllowSymlinks(cfg.AllowSymlinks).
		SetIgnoredPaths(cfg.IgnoredPaths, cfg.IgnoreGitPaths)
	if err := hc.Validate(); err != nil {
		return nil, err
	}
	return NewFileStore(cfg.Root, hc), nil
}

// DigestAlgorithm reports the hash engine used while listing. The size is 0
// when the engine is unknown.
func (s *FileStore) DigestAlgorithm() (string, int) {
	size, err := s.hashing.DigestSize()
	if err != nil {
		return s.hashing.Algorithm(), 0
	}
	return s.hashing.Algorithm(), size
}

func (s *FileStore) containerDir(container string) (string, error) {
	if container == "" || container == "." || container == ".." || filepath.Base(container) != container {
		return "", utils.NewChecksumErrorWithPath(utils.ErrTypeInvalidLocation, container,
			"container must be a single directory name", nil)
	}
	return filepath.Join(s.root, container), nil
}

func (s *FileStore) objectPath(container, name string) (string, error) {
	dir, err := s.containerDir(container)
	if err != nil {
		return "", err
	}
	local := filepath.FromSlash(name)
	if !filepath.IsLocal(local) {
		return "", utils.NewChecksumErrorWithPath(utils.ErrTypeInvalidLocation, name,
			"object name escapes its container", nil)
	}
	return filepath.Join(dir, local), nil
}

func (s *FileStore) List(ctx context.Context, container, prefix string) iter.Seq2[interfaces.ObjectInfo, error] {
	dir, err := s.containerDir(container)
	if err != nil {
		return func(yield func(interfaces.ObjectInfo, error) bool) {
			yield(interfaces.ObjectInfo{}, err)
		}
	}
	return s.hashing.Walk(ctx, dir, prefix)
}

func (s *FileStore) Read(_ context.Context, container, name string) ([]byte, error) {
	path, err := s.objectPath(container, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, notFound(container, name, err)
		}
		return nil, ioError("reading object", container, name, err)
	}
	return data, nil
}

// Write replaces the object atomically through a temporary file in the
// same directory.
func (s *FileStore) Write(ctx context.Context, container, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.objectPath(container, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ioError("creating directory", container, name, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return ioError("writing object", container, name, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return ioError("writing object", container, name, err)
	}
	if err := tmp.Close(); err != nil {
		return ioError("writing object", container, name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return ioError("writing object", container, name, fmt.Errorf("rename: %w", err))
	}
	return nil
}

func (s *FileStore) Exists(_ context.Context, container, name string) (bool, error) {
	path, err := s.objectPath(container, name)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, ioError("stat object", container, name, err)
	}
	return info.Mode().IsRegular(), nil
}
