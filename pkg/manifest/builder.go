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

package manifest

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/sampras343/transfer-checksums/pkg/hashing/digests"
	"github.com/sampras343/transfer-checksums/pkg/interfaces"
	"github.com/sampras343/transfer-checksums/pkg/location"
	"github.com/sampras343/transfer-checksums/pkg/logging"
	"github.com/sampras343/transfer-checksums/pkg/utils"
)

// DuplicatePolicy selects what Build does when two listed objects map to
// the same manifest filename.
type DuplicatePolicy int

const (
	// DuplicateReject fails the build with ErrTypeDuplicateEntry.
	DuplicateReject DuplicatePolicy = iota
	// DuplicateWarn logs a warning and keeps both rows; lookups see the last.
	DuplicateWarn
)

// String returns the flag/config spelling of the policy.
func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateWarn:
		return "warn"
	default:
		return "reject"
	}
}

// ParseDuplicatePolicy parses "reject" or "warn".
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject", "error":
		return DuplicateReject, nil
	case "warn", "warning":
		return DuplicateWarn, nil
	default:
		return DuplicateReject, fmt.Errorf("unknown duplicate policy %q (want reject or warn)", s)
	}
}

// BuildOptions configures Build.
type BuildOptions struct {
	// Prefix is stripped from object names to form manifest filenames.
	Prefix string

	// Algorithm names the digest the backend reports (default: "md5").
	Algorithm string

	// DigestSize, when > 0, asserts the decoded length of every digest.
	DigestSize int

	// Duplicates selects the duplicate filename policy (default: reject).
	Duplicates DuplicatePolicy

	// Logger is an optional logger for progress and warnings.
	Logger logging.Logger
}

// Build consumes a lazy object listing one object at a time and returns the
// manifest of (relative name, hex checksum) rows in listing order.
//
// Build is all-or-nothing: an object without a digest, an undecodable digest,
// a listing error or a cancelled context aborts it and no manifest is
// returned.
func Build(ctx context.Context, objects iter.Seq2[interfaces.ObjectInfo, error], opts BuildOptions) (*Manifest, error) {
	logger := logging.EnsureLogger(opts.Logger)
	algorithm := opts.Algorithm
	if algorithm == "" {
		algorithm = utils.DefaultDigestAlgorithm
	}

	var entries []Entry
	seen := make(map[string]string)

	for obj, err := range objects {
		if err != nil {
			return nil, fmt.Errorf("listing objects: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if obj.TransportDigest == "" {
			return nil, utils.NewChecksumErrorWithPath(utils.ErrTypeMissingDigest, obj.Name,
				fmt.Sprintf("object %s has no %s hash available", obj.Name, algorithm), nil)
		}

		d, err := digests.FromTransportSized(algorithm, obj.TransportDigest, opts.DigestSize)
		if err != nil {
			return nil, fmt.Errorf("decoding digest of %s: %w", obj.Name, err)
		}

		filename := location.RelativeName(obj.Name, opts.Prefix)
		if filename == "" {
			filename = obj.Name
		}

		if previous, dup := seen[filename]; dup {
			if opts.Duplicates == DuplicateReject {
				return nil, utils.NewChecksumErrorWithPath(utils.ErrTypeDuplicateEntry, filename,
					fmt.Sprintf("objects %s and %s map to the same manifest filename", previous, obj.Name), nil)
			}
			logger.WithField("filename", filename).Warn("duplicate manifest filename from objects %s and %s; keeping the later checksum", previous, obj.Name)
		}
		seen[filename] = obj.Name

		entries = append(entries, Entry{Filename: filename, Checksum: d.Hex()})
		logger.Debug("%s -> %s", obj.Name, d.Hex())
	}

	logger.Debug("built manifest with %d entries", len(entries))
	return NewManifest(entries), nil
}
