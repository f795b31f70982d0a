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

package checksums

import (
	"context"
	"fmt"
	"strings"

	"github.com/sampras343/transfer-checksums/pkg/logging"
	"github.com/sampras343/transfer-checksums/pkg/manifest"
	"github.com/sampras343/transfer-checksums/pkg/tracing"
	"github.com/sampras343/transfer-checksums/pkg/utils"
)

// SourceKind tags a ManifestSource.
type SourceKind int

const (
	SourceNone SourceKind = iota
	// SourceEntries is an already structured entry list.
	SourceEntries
	// SourceRef is a manifest object in a store.
	SourceRef
	// SourceText is delimited manifest text.
	SourceText
	// SourceChecksumList is md5sum-style "<checksum> <filename>" text.
	SourceChecksumList
)

func (k SourceKind) String() string {
	switch k {
	case SourceEntries:
		return "entries"
	case SourceRef:
		return "ref"
	case SourceText:
		return "text"
	case SourceChecksumList:
		return "checksum-list"
	default:
		return "none"
	}
}

// Ref locates a stored manifest. Container may be a bare name or a location
// URI whose prefix is prepended to Name.
type Ref struct {
	Container string
	Name      string
}

// ManifestSource is one side of a comparison. Build it with FromEntries,
// FromRef, FromText or FromChecksumList.
type ManifestSource struct {
	kind    SourceKind
	entries []manifest.Entry
	ref     Ref
	data    []byte
}

func FromEntries(entries []manifest.Entry) ManifestSource {
	return ManifestSource{kind: SourceEntries, entries: entries}
}

func FromRef(container, name string) ManifestSource {
	return ManifestSource{kind: SourceRef, ref: Ref{Container: container, Name: name}}
}

func FromText(data []byte) ManifestSource {
	return ManifestSource{kind: SourceText, data: data}
}

func FromChecksumList(data []byte) ManifestSource {
	return ManifestSource{kind: SourceChecksumList, data: data}
}

func (m ManifestSource) Kind() SourceKind { return m.kind }

func (m ManifestSource) String() string {
	if m.kind == SourceRef {
		return m.ref.Container + "/" + m.ref.Name
	}
	return m.kind.String()
}

// CompareRequest holds the two sides to reconcile.
type CompareRequest struct {
	First  ManifestSource
	Second ManifestSource
}

// CompareResponse is the reconciliation result plus the filenames that were
// listed more than once on either side.
type CompareResponse struct {
	manifest.Result
	FirstDuplicates  []string `json:"first_duplicates,omitempty"`
	SecondDuplicates []string `json:"second_duplicates,omitempty"`
}

// Compare loads both manifests and reconciles them. Differences are not an
// error; check Consistent on the response.
func (s *Service) Compare(ctx context.Context, req CompareRequest) (*CompareResponse, error) {
	var resp *CompareResponse
	attrs := map[string]interface{}{
		"transfer_checksums.first":  req.First.String(),
		"transfer_checksums.second": req.Second.String(),
	}
	err := tracing.Run(ctx, tracing.SpanCompare, attrs, func(ctx context.Context) error {
		first, err := s.load(ctx, req.First)
		if err != nil {
			return fmt.Errorf("loading first manifest: %w", err)
		}
		second, err := s.load(ctx, req.Second)
		if err != nil {
			return fmt.Errorf("loading second manifest: %w", err)
		}

		logger := s.log(ctx)
		warnDuplicates(logger, "first", first)
		warnDuplicates(logger, "second", second)

		result := manifest.Compare(first, second)
		logger.WithFields(map[string]interface{}{
			"matching":       len(result.Matching),
			"mismatching":    len(result.Mismatching),
			"only_in_first":  len(result.OnlyInFirst),
			"only_in_second": len(result.OnlyInSecond),
		}).Info("comparison finished")

		resp = &CompareResponse{
			Result:           *result,
			FirstDuplicates:  first.Duplicates(),
			SecondDuplicates: second.Duplicates(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func warnDuplicates(logger logging.Logger, side string, m *manifest.Manifest) {
	if dups := m.Duplicates(); len(dups) > 0 {
		logger.WithFields(map[string]interface{}{"manifest": side, "filenames": strings.Join(dups, ",")}).
			Warn("duplicate filenames; the last entry of each is compared")
	}
}

func (s *Service) load(ctx context.Context, src ManifestSource) (*manifest.Manifest, error) {
	switch src.kind {
	case SourceEntries:
		return manifest.Parse(manifest.StructuredEntries(src.entries))
	case SourceText:
		return manifest.Parse(manifest.DelimitedText(src.data))
	case SourceChecksumList:
		return manifest.Parse(manifest.ChecksumListText(src.data))
	case SourceRef:
		data, err := s.read(ctx, src.ref)
		if err != nil {
			return nil, err
		}
		return manifest.Parse(manifest.DelimitedText(data))
	default:
		return nil, utils.NewChecksumError(utils.ErrTypeMalformedManifest, "no manifest provided", nil)
	}
}

func (s *Service) read(ctx context.Context, ref Ref) ([]byte, error) {
	if ref.Name == "" {
		return nil, utils.NewChecksumError(utils.ErrTypeInvalidLocation, "checksum file name is empty", nil)
	}
	loc, store, err := s.resolver.Resolve(ctx, ref.Container)
	if err != nil {
		return nil, err
	}
	name := objectName(loc, ref.Name)

	var data []byte
	err = tracing.Run(ctx, tracing.SpanRead, map[string]interface{}{"transfer_checksums.object": name}, func(ctx context.Context) error {
		ok, err := store.Exists(ctx, loc.Container, name)
		if err != nil {
			return err
		}
		if !ok {
			return utils.NewChecksumErrorWithPath(utils.ErrTypeNotFound, loc.Container+"/"+name,
				"checksum file not found in specified bucket", nil)
		}
		data, err = store.Read(ctx, loc.Container, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log(ctx).WithFields(map[string]interface{}{"container": loc.Container, "name": name, "bytes": len(data)}).
		Debugln("read manifest")
	return data, nil
}
