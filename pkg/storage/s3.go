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
	"bytes"
	"context"
	"errors"
	"io"
	"iter"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/sampras343/transfer-checksums/pkg/config"
	"github.com/sampras343/transfer-checksums/pkg/interfaces"
	"github.com/sampras343/transfer-checksums/pkg/utils"
)

// S3API is the subset of *s3.Client the store calls.
type S3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Store is an Amazon S3 backend. Containers are buckets. Listed digests
// are derived from single-part ETags.
type S3Store struct {
	client S3API
}

// NewS3Store loads the default AWS configuration chain, overriding the
// region and endpoint from cfg when set.
func NewS3Store(ctx context.Context, cfg config.S3Config) (*S3Store, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, utils.NewChecksumError(utils.ErrTypeConfiguration, "failed to load AWS config", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewS3StoreFromClient(client), nil
}

// NewS3StoreFromClient wraps an existing client.
func NewS3StoreFromClient(client S3API) *S3Store {
	return &S3Store{client: client}
}

func (s *S3Store) List(ctx context.Context, container, prefix string) iter.Seq2[interfaces.ObjectInfo, error] {
	return func(yield func(interfaces.ObjectInfo, error) bool) {
		input := &s3.ListObjectsV2Input{Bucket: aws.String(container)}
		if prefix != "" {
			input.Prefix = aws.String(prefix)
		}

		paginator := s3.NewListObjectsV2Paginator(s.client, input)
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				if isS3NotFound(err) {
					err = utils.NewChecksumErrorWithPath(utils.ErrTypeNotFound, container, "bucket not found", err)
				} else {
					err = ioError("s3 list failed", container, "", err)
				}
				yield(interfaces.ObjectInfo{}, err)
				return
			}
			for _, obj := range page.Contents {
				if !yield(interfaces.ObjectInfo{
					Name:            aws.ToString(obj.Key),
					TransportDigest: etagDigest(aws.ToString(obj.ETag)),
					Size:            aws.ToInt64(obj.Size),
				}, nil) {
					return
				}
			}
		}
	}
}

func (s *S3Store) Read(ctx context.Context, container, name string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(name),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, notFound(container, name, err)
		}
		return nil, ioError("s3 get failed", container, name, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, ioError("s3 read failed", container, name, err)
	}
	return data, nil
}

func (s *S3Store) Write(ctx context.Context, container, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(container),
		Key:         aws.String(name),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(utils.ManifestContentType),
	})
	if err != nil {
		return ioError("s3 put failed", container, name, err)
	}
	return nil
}

func (s *S3Store) Exists(ctx context.Context, container, name string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(name),
	})
	if err != nil {
		if isS3NotFound(err) {
			return false, nil
		}
		return false, ioError("s3 head failed", container, name, err)
	}
	return true, nil
}

func isS3NotFound(err error) bool {
	var nsk *types.NoSuchKey
	var nsb *types.NoSuchBucket
	var notFound *types.NotFound
	if errors.As(err, &nsk) || errors.As(err, &nsb) || errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return true
		}
	}
	return false
}
