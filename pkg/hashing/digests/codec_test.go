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
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/sampras343/transfer-checksums/pkg/utils"
)

func TestDecodeTransport(t *testing.T) {
	tests := []struct {
		name      string
		transport string
		want      string
		wantErr   bool
	}{
		{
			// md5("The quick brown fox jumps over the lazy dog")
			name:      "md5 digest",
			transport: "nhB9nTcrtoJr2B01QqQZ1g==",
			want:      "9e107d9d372bb6826bd81d3542a419d6",
		},
		{
			// md5("")
			name:      "md5 of empty object",
			transport: "1B2M2Y8AsgTpgAmY7PhCfg==",
			want:      "d41d8cd98f00b204e9800998ecf8427e",
		},
		{
			name:      "empty input decodes to empty hex",
			transport: "",
			want:      "",
		},
		{
			name:      "invalid characters",
			transport: "not*base64!",
			wantErr:   true,
		},
		{
			name:      "bad padding",
			transport: "nhB9nTcrtoJr2B01QqQZ1g=",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeTransport(tt.transport)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DecodeTransport(%q) expected error, got %q", tt.transport, got)
				}
				if !utils.IsType(err, utils.ErrTypeDecoding) {
					t.Errorf("DecodeTransport(%q) error type = %v, want DecodingError", tt.transport, utils.TypeOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeTransport(%q) unexpected error: %v", tt.transport, err)
			}
			if got != tt.want {
				t.Errorf("DecodeTransport(%q) = %q, want %q", tt.transport, got, tt.want)
			}
		})
	}
}

func TestFromTransportSized(t *testing.T) {
	if _, err := FromTransportSized("md5", "nhB9nTcrtoJr2B01QqQZ1g==", utils.MD5Size); err != nil {
		t.Fatalf("FromTransportSized() unexpected error: %v", err)
	}

	_, err := FromTransportSized("md5", base64.StdEncoding.EncodeToString([]byte{1, 2, 3}), utils.MD5Size)
	if !utils.IsType(err, utils.ErrTypeDecoding) {
		t.Errorf("FromTransportSized() with short digest error = %v, want DecodingError", err)
	}

	d, err := FromTransportSized("crc", base64.StdEncoding.EncodeToString([]byte{1, 2, 3}), 0)
	if err != nil {
		t.Fatalf("FromTransportSized() with size 0 unexpected error: %v", err)
	}
	if d.Size() != 3 {
		t.Errorf("Size() = %d, want 3", d.Size())
	}
}

func TestDigestForms(t *testing.T) {
	raw := []byte{0x9e, 0x10, 0x7d, 0x9d}
	d := NewDigest("md5", raw)

	raw[0] = 0x00
	if d.Value()[0] != 0x9e {
		t.Error("NewDigest() did not copy its input")
	}

	if d.Hex() != "9e107d9d" {
		t.Errorf("Hex() = %q", d.Hex())
	}
	if d.String() != "md5:9e107d9d" {
		t.Errorf("String() = %q", d.String())
	}

	back, err := FromTransport("md5", d.Base64())
	if err != nil {
		t.Fatalf("FromTransport(Base64()) unexpected error: %v", err)
	}
	if !back.Equal(d) {
		t.Errorf("FromTransport(Base64()) = %v, want %v", back, d)
	}

	fromHex, err := FromHex("md5", "9E107D9D")
	if err != nil {
		t.Fatalf("FromHex() unexpected error: %v", err)
	}
	if fromHex.Hex() != "9e107d9d" {
		t.Errorf("FromHex().Hex() = %q, want lowercase", fromHex.Hex())
	}
	if _, err := FromHex("md5", "xyz"); !utils.IsType(err, utils.ErrTypeDecoding) {
		t.Errorf("FromHex(invalid) error = %v, want DecodingError", err)
	}

	if d.Equal(NewDigest("sha256", []byte{0x9e, 0x10, 0x7d, 0x9d})) {
		t.Error("Equal() should compare algorithm names")
	}
}

// TestDecodeTransportProperties checks that decoding is deterministic and
// lossless for arbitrary digest bytes.
func TestDecodeTransportProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("hex(decode_b64(x)) is canonical", prop.ForAll(
		func(raw []byte) bool {
			transport := base64.StdEncoding.EncodeToString(raw)
			first, err1 := DecodeTransport(transport)
			second, err2 := DecodeTransport(transport)
			if err1 != nil || err2 != nil {
				return false
			}
			return first == second &&
				first == hex.EncodeToString(raw) &&
				len(first) == 2*len(raw) &&
				first == strings.ToLower(first)
		},
		gen.SliceOf(gen.UInt8()),
	))

	properties.TestingRun(t)
}
