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

package memory

import (
	"crypto/md5"
	"hash"

	hashengines "github.com/sampras343/transfer-checksums/pkg/hashing/engines"
)

func init() {
	hashengines.MustRegister("md5", func() (hashengines.StreamingHashEngine, error) {
		return NewMD5(nil)
	})
}

// MD5 computes the digest object stores publish as their content hash.
type MD5 = GenericHashEngine

func NewMD5(initialData []byte) (*MD5, error) {
	return NewGenericHashEngine("md5", md5.Size, func() (hash.Hash, error) {
		return md5.New(), nil
	}, initialData)
}
