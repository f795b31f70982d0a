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

package digests

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/sampras343/transfer-checksums/pkg/utils"
)

// DecodeTransport converts a base64 transport digest into its canonical
// lowercase hexadecimal form.
//
// The decoded length is not checked against any algorithm; use
// FromTransportSized when the expected size is known.
func DecodeTransport(transport string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(transport)
	if err != nil {
		return "", utils.NewChecksumErrorWithPath(utils.ErrTypeDecoding, transport,
			"transport digest is not valid base64", err)
	}
	return hex.EncodeToString(raw), nil
}

// FromTransport decodes a base64 transport digest into a Digest.
func FromTransport(algorithm, transport string) (Digest, error) {
	raw, err := base64.StdEncoding.DecodeString(transport)
	if err != nil {
		return Digest{}, utils.NewChecksumErrorWithPath(utils.ErrTypeDecoding, transport,
			"transport digest is not valid base64", err)
	}
	return Digest{algorithm: algorithm, value: raw}, nil
}

// FromTransportSized is FromTransport with a length assertion. A size of zero
// disables the check.
func FromTransportSized(algorithm, transport string, size int) (Digest, error) {
	d, err := FromTransport(algorithm, transport)
	if err != nil {
		return Digest{}, err
	}
	if size > 0 && d.Size() != size {
		return Digest{}, utils.NewChecksumErrorWithPath(utils.ErrTypeDecoding, transport,
			fmt.Sprintf("%s digest must be %d bytes, got %d", algorithm, size, d.Size()), nil)
	}
	return d, nil
}

// FromHex parses a canonical hexadecimal digest.
func FromHex(algorithm, value string) (Digest, error) {
	raw, err := hex.DecodeString(value)
	if err != nil {
		return Digest{}, utils.NewChecksumErrorWithPath(utils.ErrTypeDecoding, value,
			"digest is not valid hexadecimal", err)
	}
	return Digest{algorithm: algorithm, value: raw}, nil
}
