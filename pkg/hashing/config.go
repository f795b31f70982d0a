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

// Package hashing computes object listings for local directory trees, giving
// each regular file the base64 transport digest an object store would report.
package hashing

import (
	"context"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	hashengines "github.com/sampras343/transfer-checksums/pkg/hashing/engines"
	hashio "github.com/sampras343/transfer-checksums/pkg/hashing/engines/io"
	_ "github.com/sampras343/transfer-checksums/pkg/hashing/engines/memory" // registers md5, sha256, blake2b
	"github.com/sampras343/transfer-checksums/pkg/interfaces"
	"github.com/sampras343/transfer-checksums/pkg/utils"
)

// DefaultChunkSize is the read size used when hashing files.
const DefaultChunkSize = 8192

var gitRelatedPaths = []string{
	".git",
	".gitignore",
	".gitattributes",
	".github",
	".gitmodules",
}

// Config controls which files a walk visits and how they are hashed.
type Config struct {
	hashAlgorithm  string
	allowSymlinks  bool
	ignoredPaths   []string
	ignoreGitPaths bool
	chunkSize      int
}

// NewConfig returns a Config hashing with md5, skipping symlinks.
func NewConfig() *Config {
	return &Config{
		hashAlgorithm: utils.DefaultDigestAlgorithm,
		chunkSize:     DefaultChunkSize,
	}
}

// SetAlgorithm selects a registered hash engine.
func (c *Config) SetAlgorithm(algorithm string) *Config {
	c.hashAlgorithm = algorithm
	return c
}

// Algorithm returns the configured engine name.
func (c *Config) Algorithm() string {
	return c.hashAlgorithm
}

// SetIgnoredPaths replaces the ignore list. Relative entries are matched
// against slash-separated names relative to the walk root.
func (c *Config) SetIgnoredPaths(paths []string, ignoreGitPaths bool) *Config {
	c.ignoredPaths = append([]string(nil), paths...)
	c.ignoreGitPaths = ignoreGitPaths
	return c
}

func (c *Config) SetAllowSymlinks(allow bool) *Config {
	c.allowSymlinks = allow
	return c
}

// SetChunkSize sets the read size; 0 reads whole files.
func (c *Config) SetChunkSize(size int) *Config {
	c.chunkSize = size
	return c
}

// Validate checks that the algorithm is registered and the chunk size is
// usable.
func (c *Config) Validate() error {
	if !hashengines.IsSupported(c.hashAlgorithm) {
		return utils.NewChecksumError(utils.ErrTypeConfiguration,
			fmt.Sprintf("unsupported hash algorithm %q (supported: %v)", c.hashAlgorithm, hashengines.SupportedAlgorithms()), nil)
	}
	if c.chunkSize < 0 {
		return utils.NewChecksumError(utils.ErrTypeConfiguration,
			fmt.Sprintf("chunk size must be non-negative, got %d", c.chunkSize), nil)
	}
	return nil
}

// DigestSize returns the length in bytes of digests the configured engine
// produces.
func (c *Config) DigestSize() (int, error) {
	engine, err := hashengines.Create(c.hashAlgorithm)
	if err != nil {
		return 0, err
	}
	return engine.DigestSize(), nil
}

// HashFile returns the transport (base64) digest of one file.
func (c *Config) HashFile(ctx context.Context, path string) (string, error) {
	hasher, err := hashio.NewFactory(c.hashAlgorithm, c.chunkSize)(path)
	if err != nil {
		return "", err
	}
	d, err := hasher.ComputeContext(ctx)
	if err != nil {
		return "", err
	}
	return d.Base64(), nil
}

// Walk lists the regular files under root in lexical order. Names are
// slash-separated and relative to root; only names starting with prefix are
// hashed and yielded. A missing root yields nothing.
func (c *Config) Walk(ctx context.Context, root, prefix string) iter.Seq2[interfaces.ObjectInfo, error] {
	return func(yield func(interfaces.ObjectInfo, error) bool) {
		if _, err := os.Stat(root); err != nil {
			if os.IsNotExist(err) {
				return
			}
			yield(interfaces.ObjectInfo{}, utils.NewChecksumErrorWithPath(utils.ErrTypeIO, root, "stat root", err))
			return
		}

		stopped := false
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if path == root {
				return nil
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			name := filepath.ToSlash(rel)

			if c.shouldIgnore(name) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if !couldContain(name+"/", prefix) {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasPrefix(name, prefix) {
				return nil
			}

			info, ok, err := c.regularFile(path, d)
			if err != nil || !ok {
				return err
			}

			digest, err := c.HashFile(ctx, path)
			if err != nil {
				return err
			}
			if !yield(interfaces.ObjectInfo{Name: name, TransportDigest: digest, Size: info.Size()}, nil) {
				stopped = true
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil && !stopped {
			yield(interfaces.ObjectInfo{}, err)
		}
	}
}

// regularFile resolves d to a regular file, following symlinks when allowed.
func (c *Config) regularFile(path string, d fs.DirEntry) (fs.FileInfo, bool, error) {
	if d.Type()&fs.ModeSymlink != 0 {
		if !c.allowSymlinks {
			return nil, false, nil
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, false, fmt.Errorf("failed to stat symlink target %s: %w", path, err)
		}
		if !info.Mode().IsRegular() {
			return nil, false, nil
		}
		return info, true, nil
	}
	if !d.Type().IsRegular() {
		return nil, false, nil
	}
	info, err := d.Info()
	if err != nil {
		return nil, false, err
	}
	return info, true, nil
}

// couldContain reports whether a directory whose names all start with dir
// can hold a name starting with prefix.
func couldContain(dir, prefix string) bool {
	return strings.HasPrefix(dir, prefix) || strings.HasPrefix(prefix, dir)
}

func (c *Config) shouldIgnore(name string) bool {
	for _, ignored := range c.ignoredPaths {
		ignored = strings.Trim(filepath.ToSlash(ignored), "/")
		if name == ignored || strings.HasPrefix(name, ignored+"/") {
			return true
		}
	}
	if c.ignoreGitPaths {
		for _, segment := range strings.Split(name, "/") {
			if slices.Contains(gitRelatedPaths, segment) {
				return true
			}
		}
	}
	return false
}
