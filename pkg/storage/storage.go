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

// Package storage implements interfaces.ObjectStore for Google Cloud
// Storage, Amazon S3 (and S3-compatible stores), local directories and
// process memory, plus a Registry resolving location schemes to stores.
//
// Every backend reports digests in transport form: the base64 encoding of
// the raw digest bytes. A backend that cannot vouch for an object's content
// reports an empty digest so manifest building fails closed.
package storage

import (
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/sampras343/transfer-checksums/pkg/interfaces"
	"github.com/sampras343/transfer-checksums/pkg/utils"
)

var (
	_ interfaces.ObjectStore = (*MemoryStore)(nil)
	_ interfaces.ObjectStore = (*FileStore)(nil)
	_ interfaces.ObjectStore = (*GCSStore)(nil)
	_ interfaces.ObjectStore = (*S3Store)(nil)

	_ interfaces.DigestDescriber = (*FileStore)(nil)
)

func notFound(container, name string, cause error) error {
	return utils.NewChecksumErrorWithPath(utils.ErrTypeNotFound, container+"/"+name,
		"checksum file not found in specified bucket", cause)
}

func ioError(op, container, name string, cause error) error {
	path := container
	if name != "" {
		path += "/" + name
	}
	return utils.NewChecksumErrorWithPath(utils.ErrTypeIO, path, op, cause)
}

// base64Digest renders raw digest bytes in transport form. No bytes means no
// digest.
func base64Digest(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(raw)
}

// etagDigest converts an S3 ETag to a transport digest. Multipart ETags
// (those with a "-N" suffix) yield no digest. Single-part objects encrypted
// with SSE-KMS or SSE-C also have 32-hex ETags that are not the content MD5;
// they cannot be told apart here and surface as mismatches on compare.
func etagDigest(etag string) string {
	etag = strings.Trim(etag, `"`)
	if etag == "" || strings.Contains(etag, "-") {
		return ""
	}
	raw, err := hex.DecodeString(etag)
	if err != nil || len(raw) != utils.MD5Size {
		return ""
	}
	return base64Digest(raw)
}
