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
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sampras343/transfer-checksums/pkg/utils"
)

type fakeS3Object struct {
	body []byte
	etag string
}

// fakeS3 serves pageSize keys per ListObjectsV2 page.
type fakeS3 struct {
	buckets  map[string]map[string]fakeS3Object
	pageSize int
	pages    int
	listErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{buckets: map[string]map[string]fakeS3Object{}, pageSize: 2}
}

func (f *fakeS3) put(bucket, key string, body []byte, etag string) {
	if f.buckets[bucket] == nil {
		f.buckets[bucket] = map[string]fakeS3Object{}
	}
	f.buckets[bucket][key] = fakeS3Object{body: body, etag: etag}
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	objs, ok := f.buckets[aws.ToString(in.Bucket)]
	if !ok {
		return nil, &types.NoSuchBucket{Message: aws.String("no such bucket")}
	}
	f.pages++

	var keys []string
	for k := range objs {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if in.ContinuationToken != nil {
		start, _ = strconv.Atoi(*in.ContinuationToken)
	}
	end := start + f.pageSize
	if end > len(keys) {
		end = len(keys)
	}

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{
			Key:  aws.String(k),
			ETag: aws.String(objs[k].etag),
			Size: aws.Int64(int64(len(objs[k].body))),
		})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	obj, ok := f.buckets[aws.ToString(in.Bucket)][aws.ToString(in.Key)]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchKey", Message: "The specified key does not exist."}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(obj.body))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.put(aws.ToString(in.Bucket), aws.ToString(in.Key), body, "")
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if _, ok := f.buckets[aws.ToString(in.Bucket)][aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func TestS3StoreListPaginates(t *testing.T) {
	fake := newFakeS3()
	fake.put("bucket", "data/a.txt", []byte("a"), `"9e107d9d372bb6826bd81d3542a419d6"`)
	fake.put("bucket", "data/b.txt", []byte("bb"), `"d41d8cd98f00b204e9800998ecf8427e"`)
	fake.put("bucket", "data/big.bin", []byte("ccc"), `"9e107d9d372bb6826bd81d3542a419d6-12"`)
	fake.put("bucket", "other/x", nil, `"d41d8cd98f00b204e9800998ecf8427e"`)

	objs, err := listAll(t, NewS3StoreFromClient(fake), "bucket", "data/")
	require.NoError(t, err)
	require.Len(t, objs, 3)

	assert.Equal(t, 2, fake.pages)
	assert.Equal(t, "data/a.txt", objs[0].Name)
	assert.Equal(t, "nhB9nTcrtoJr2B01QqQZ1g==", objs[0].TransportDigest)
	assert.Equal(t, int64(1), objs[0].Size)
	assert.Equal(t, "1B2M2Y8AsgTpgAmY7PhCfg==", objs[1].TransportDigest)
	assert.Equal(t, "data/big.bin", objs[2].Name)
	assert.Empty(t, objs[2].TransportDigest, "multipart ETags are not content digests")
}

func TestS3StoreListErrors(t *testing.T) {
	fake := newFakeS3()
	_, err := listAll(t, NewS3StoreFromClient(fake), "missing", "")
	assert.True(t, utils.IsType(err, utils.ErrTypeNotFound), "got %v", err)

	fake.put("bucket", "a", nil, "")
	fake.listErr = errors.New("throttled")
	_, err = listAll(t, NewS3StoreFromClient(fake), "bucket", "")
	assert.True(t, utils.IsType(err, utils.ErrTypeIO), "got %v", err)
}

func TestS3StoreReadWrite(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	store := NewS3StoreFromClient(fake)

	require.NoError(t, store.Write(ctx, "dest", "checksums.csv", []byte("a.txt,9e10\n")))

	data, err := store.Read(ctx, "dest", "checksums.csv")
	require.NoError(t, err)
	assert.Equal(t, "a.txt,9e10\n", string(data))

	ok, err := store.Exists(ctx, "dest", "checksums.csv")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, "dest", "nope.csv")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Read(ctx, "dest", "nope.csv")
	assert.True(t, utils.IsType(err, utils.ErrTypeNotFound), "got %v", err)
}

func TestIsS3NotFound(t *testing.T) {
	assert.True(t, isS3NotFound(&types.NoSuchKey{}))
	assert.True(t, isS3NotFound(&smithy.GenericAPIError{Code: "NotFound"}))
	assert.False(t, isS3NotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isS3NotFound(errors.New("plain")))
}
