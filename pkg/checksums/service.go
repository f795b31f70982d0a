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

// Package checksums implements the three boundary operations of the
// service: generating a manifest for a location and storing it, comparing
// two manifests, and fetching a stored manifest.
package checksums

import (
	"context"
	"fmt"
	"path"

	"github.com/sampras343/transfer-checksums/pkg/interfaces"
	"github.com/sampras343/transfer-checksums/pkg/location"
	"github.com/sampras343/transfer-checksums/pkg/logging"
	"github.com/sampras343/transfer-checksums/pkg/manifest"
	"github.com/sampras343/transfer-checksums/pkg/tracing"
	"github.com/sampras343/transfer-checksums/pkg/utils"
)

// GeneratedMessage is reported after a manifest has been stored.
const GeneratedMessage = "checksum file created successfully."

// Resolver turns a location reference into a parsed location and the store
// serving it. *storage.Registry implements it.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (location.Location, interfaces.ObjectStore, error)
}

// Options configures a Service.
type Options struct {
	Logger logging.Logger
	// Duplicates applies when building; parsed manifests only warn.
	Duplicates manifest.DuplicatePolicy
	// DigestSize is the expected decoded digest length; 0 skips the check.
	// Stores implementing interfaces.DigestDescriber supply their own size.
	DigestSize int
	// Algorithm labels backend digests; defaults to md5.
	Algorithm string
}

// Service runs checksum operations against the stores a Resolver provides.
// It keeps no per-request state and is safe for concurrent use.
type Service struct {
	resolver Resolver
	opts     Options
	logger   logging.Logger
}

func NewService(resolver Resolver, opts Options) *Service {
	if opts.Algorithm == "" {
		opts.Algorithm = utils.DefaultDigestAlgorithm
	}
	return &Service{
		resolver: resolver,
		opts:     opts,
		logger:   logging.EnsureLogger(opts.Logger),
	}
}

func (s *Service) log(ctx context.Context) logging.Logger {
	return logging.FromContext(ctx, s.logger)
}

// GenerateRequest names the objects to checksum and where to put the result.
type GenerateRequest struct {
	// SourceURI is scheme://container/prefix, or a bare container name.
	SourceURI string
	// DestinationContainer may carry a scheme and a prefix as well.
	DestinationContainer string
	OutputFileName       string
}

type GenerateResponse struct {
	Message  string `json:"message"`
	Entries  int    `json:"entries"`
	Location string `json:"location"`
}

// Generate builds the manifest of every object under SourceURI and writes it
// to OutputFileName in DestinationContainer. Nothing is written unless the
// whole listing produced a manifest.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	var resp *GenerateResponse
	attrs := map[string]interface{}{
		"transfer_checksums.source":      req.SourceURI,
		"transfer_checksums.destination": req.DestinationContainer,
		"transfer_checksums.output":      req.OutputFileName,
	}
	err := tracing.Run(ctx, tracing.SpanGenerate, attrs, func(ctx context.Context) error {
		if req.OutputFileName == "" {
			return utils.NewChecksumError(utils.ErrTypeInvalidLocation, "output file name is empty", nil)
		}

		src, srcStore, err := s.resolver.Resolve(ctx, req.SourceURI)
		if err != nil {
			return fmt.Errorf("resolving source: %w", err)
		}
		dst, dstStore, err := s.resolver.Resolve(ctx, req.DestinationContainer)
		if err != nil {
			return fmt.Errorf("resolving destination: %w", err)
		}

		logger := s.log(ctx).WithField("source", src.String())
		logger.Info("generating checksums")

		var m *manifest.Manifest
		err = tracing.Run(ctx, tracing.SpanList, map[string]interface{}{"transfer_checksums.container": src.Container}, func(ctx context.Context) error {
			var err error
			algorithm, size := s.digestFor(srcStore)
			m, err = manifest.Build(ctx, srcStore.List(ctx, src.Container, src.Prefix), manifest.BuildOptions{
				Prefix:     src.Prefix,
				Algorithm:  algorithm,
				DigestSize: size,
				Duplicates: s.opts.Duplicates,
				Logger:     logger,
			})
			return err
		})
		if err != nil {
			return err
		}

		data, err := manifest.Marshal(m)
		if err != nil {
			return fmt.Errorf("encoding manifest: %w", err)
		}

		name := objectName(dst, req.OutputFileName)
		err = tracing.Run(ctx, tracing.SpanWrite, map[string]interface{}{"transfer_checksums.object": name}, func(ctx context.Context) error {
			return dstStore.Write(ctx, dst.Container, name, data)
		})
		if err != nil {
			return fmt.Errorf("writing manifest: %w", err)
		}

		target := location.Location{Scheme: dst.Scheme, Container: dst.Container, Prefix: name}
		logger.WithFields(map[string]interface{}{"entries": m.Len(), "destination": target.String()}).
			Info("checksum file written")

		resp = &GenerateResponse{Message: GeneratedMessage, Entries: m.Len(), Location: target.String()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// digestFor returns the algorithm label and expected digest size for objects
// listed from store.
func (s *Service) digestFor(store interfaces.ObjectStore) (string, int) {
	d, ok := store.(interfaces.DigestDescriber)
	if !ok {
		return s.opts.Algorithm, s.opts.DigestSize
	}
	name, size := d.DigestAlgorithm()
	if s.opts.DigestSize == 0 {
		size = 0
	}
	return name, size
}

// GetRequest names a stored manifest.
type GetRequest struct {
	Container string
	FileName  string
}

type GetResponse struct {
	Checksums []manifest.Entry `json:"checksums"`
}

// Get reads and parses a stored manifest. A missing object is NotFound.
func (s *Service) Get(ctx context.Context, req GetRequest) (*GetResponse, error) {
	var resp *GetResponse
	attrs := map[string]interface{}{
		"transfer_checksums.container": req.Container,
		"transfer_checksums.file":      req.FileName,
	}
	err := tracing.Run(ctx, tracing.SpanGet, attrs, func(ctx context.Context) error {
		m, err := s.load(ctx, FromRef(req.Container, req.FileName))
		if err != nil {
			return err
		}
		resp = &GetResponse{Checksums: m.Entries()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// objectName places name under the prefix of a destination location.
func objectName(dst location.Location, name string) string {
	if dst.Prefix == "" {
		return name
	}
	return path.Join(dst.Prefix, name)
}
