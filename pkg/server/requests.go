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

package server

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/sampras343/transfer-checksums/pkg/checksums"
	"github.com/sampras343/transfer-checksums/pkg/manifest"
)

// GenerateChecksumsRequest is the body of POST /generate-checksums.
// The source may be given as source_uri, source_gcs_uri or a bare
// source_bucket, checked in that order.
type GenerateChecksumsRequest struct {
	SourceURI         string `json:"source_uri,omitempty"`
	SourceGCSURI      string `json:"source_gcs_uri,omitempty"`
	SourceBucket      string `json:"source_bucket,omitempty"`
	DestinationBucket string `json:"destination_bucket"`
	OutputFileName    string `json:"output_file_name"`
}

func (r GenerateChecksumsRequest) source() string {
	switch {
	case r.SourceURI != "":
		return r.SourceURI
	case r.SourceGCSURI != "":
		return r.SourceGCSURI
	default:
		return r.SourceBucket
	}
}

// CompareChecksumsRequest is the body of POST /compare-checksums. Each side
// is an inline entry list, a stored manifest or an md5sum style listing.
type CompareChecksumsRequest struct {
	JSON1 *EntryList `json:"json1,omitempty"`
	JSON2 *EntryList `json:"json2,omitempty"`

	FirstChecksumBucket  string `json:"first_checksum_bucket,omitempty"`
	FirstChecksumFile    string `json:"first_checksum_file,omitempty"`
	SecondChecksumBucket string `json:"second_checksum_bucket,omitempty"`
	SecondChecksumFile   string `json:"second_checksum_file,omitempty"`

	FirstChecksumList  string `json:"first_checksum_list,omitempty"`
	SecondChecksumList string `json:"second_checksum_list,omitempty"`
}

func side(entries *EntryList, bucket, file, list string) checksums.ManifestSource {
	switch {
	case entries != nil:
		return checksums.FromEntries(*entries)
	case bucket != "" || file != "":
		return checksums.FromRef(bucket, file)
	case list != "":
		return checksums.FromChecksumList([]byte(list))
	default:
		return checksums.ManifestSource{}
	}
}

// GetChecksumsRequest is the body of POST /get-checksums.
type GetChecksumsRequest struct {
	ChecksumBucket string `json:"checksum_bucket"`
	ChecksumFile   string `json:"checksum_file"`
}

// EntryList decodes either a bare array of {"filename","checksum"} objects
// or the {"checksums": [...]} document returned by /get-checksums.
type EntryList []manifest.Entry

func (l *EntryList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var doc struct {
			Checksums []manifest.Entry `json:"checksums"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}
		*l = doc.Checksums
		return nil
	}
	var entries []manifest.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("checksum list must be an array or a checksums document: %w", err)
	}
	*l = entries
	return nil
}
