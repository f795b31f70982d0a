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

package manifest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/sampras343/transfer-checksums/pkg/utils"
)

// Delimiter separates the filename and checksum fields of a manifest record.
const Delimiter = ','

// Write encodes m as delimited text: one "filename,checksum" record per
// line, no header.
//
// Filenames containing the delimiter, quotes or line breaks are quoted
// RFC 4180 style so they survive a round trip; other filenames are written
// as-is. A carriage return cannot survive quoting (readers fold "\r\n" to
// "\n"), so a filename containing one fails with ErrTypeMalformedManifest
// before anything is written.
func Write(w io.Writer, m *Manifest) error {
	for _, e := range m.entries {
		if strings.ContainsRune(e.Filename, '\r') {
			return utils.NewChecksumErrorWithPath(utils.ErrTypeMalformedManifest,
				e.Filename, "filename contains a carriage return", nil)
		}
	}
	cw := csv.NewWriter(w)
	cw.Comma = Delimiter
	for _, e := range m.entries {
		if err := cw.Write([]string{e.Filename, e.Checksum}); err != nil {
			return fmt.Errorf("writing manifest record %q: %w", e.Filename, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing manifest: %w", err)
	}
	return nil
}

// Marshal returns the delimited text encoding of m.
func Marshal(m *Manifest) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
