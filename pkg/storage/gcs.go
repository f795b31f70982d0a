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
	"io"
	"iter"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/sampras343/transfer-checksums/pkg/config"
	"github.com/sampras343/transfer-checksums/pkg/interfaces"
	"github.com/sampras343/transfer-checksums/pkg/utils"
)

// GCSStore is a Google Cloud Storage backend. Containers are buckets.
// Listed digests come from the MD5 attribute GCS keeps for every
// non-composite object.
type GCSStore struct {
	client *storage.Client
}

// NewGCSStore creates a client using Application Default Credentials unless
// cfg asks for anonymous access.
func NewGCSStore(ctx context.Context, cfg config.GCSConfig) (*GCSStore, error) {
	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	if cfg.Anonymous {
		opts = append(opts, option.WithoutAuthentication())
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, utils.NewChecksumError(utils.ErrTypeConfiguration, "failed to create GCS client", err)
	}
	return NewGCSStoreFromClient(client), nil
}

// NewGCSStoreFromClient wraps an existing client.
func NewGCSStoreFromClient(client *storage.Client) *GCSStore {
	return &GCSStore{client: client}
}

func (s *GCSStore) List(ctx context.Context, container, prefix string) iter.Seq2[interfaces.ObjectInfo, error] {
	return func(yield func(interfaces.ObjectInfo, error) bool) {
		q := &storage.Query{Prefix: prefix}
		if err := q.SetAttrSelection([]string{"Name", "MD5", "Size"}); err != nil {
			yield(interfaces.ObjectInfo{}, fmt.Errorf("gcs query: %w", err))
			return
		}

		it := s.client.Bucket(container).Objects(ctx, q)
		for {
			attrs, err := it.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				if errors.Is(err, storage.ErrBucketNotExist) {
					err = utils.NewChecksumErrorWithPath(utils.ErrTypeNotFound, container, "bucket not found", err)
				} else {
					err = ioError("gcs list failed", container, "", err)
				}
				yield(interfaces.ObjectInfo{}, err)
				return
			}
			// synthetic directory entries only appear with a delimiter
			if attrs.Prefix != "" {
				continue
			}
			if !yield(interfaces.ObjectInfo{
				Name:            attrs.Name,
				TransportDigest: base64Digest(attrs.MD5),
				Size:            attrs.Size,
			}, nil) {
				return
			}
		}
	}
}

func (s *GCSStore) Read(ctx context.Context, container, name string) ([]byte, error) {
	reader, err := s.client.Bucket(container).Object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return nil, notFound(container, name, err)
		}
		return nil, ioError("gcs get failed", container, name, err)
	}
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, ioError("gcs read failed", container, name, err)
	}
	return data, nil
}

func (s *GCSStore) Write(ctx context.Context, container, name string, data []byte) error {
	w := s.client.Bucket(container).Object(name).NewWriter(ctx)
	w.ContentType = utils.ManifestContentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return ioError("gcs write failed", container, name, err)
	}
	if err := w.Close(); err != nil {
		return ioError("gcs close failed", container, name, err)
	}
	return nil
}

func (s *GCSStore) Exists(ctx context.Context, container, name string) (bool, error) {
	_, err := s.client.Bucket(container).Object(name).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, ioError("gcs attrs error", container, name, err)
	}
	return true, nil
}

// Close releases the client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
