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
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sampras343/transfer-checksums/pkg/utils"
)

// InputKind tags the representation held by an Input.
type InputKind int

const (
	// KindDelimited is raw "filename,checksum" text.
	KindDelimited InputKind = iota
	// KindStructured is a list of entries the caller already holds.
	KindStructured
	// KindChecksumList is md5sum-style "checksum  filename" text.
	KindChecksumList
)

// String returns a human-readable name for the kind.
func (k InputKind) String() string {
	switch k {
	case KindDelimited:
		return "delimited"
	case KindStructured:
		return "structured"
	case KindChecksumList:
		return "checksum-list"
	default:
		return "unknown"
	}
}

// Input is a manifest in one of several representations. Build one with
// DelimitedText, StructuredEntries or ChecksumListText.
type Input struct {
	kind    InputKind
	raw     []byte
	entries []Entry
}

// DelimitedText wraps raw manifest bytes as written by Write.
func DelimitedText(raw []byte) Input {
	return Input{kind: KindDelimited, raw: raw}
}

// StructuredEntries wraps checksum pairs that need no further decoding.
func StructuredEntries(entries []Entry) Input {
	return Input{kind: KindStructured, entries: entries}
}

// ChecksumListText wraps the output of md5sum and similar tools: one
// "checksum<whitespace>filename" pair per line.
func ChecksumListText(raw []byte) Input {
	return Input{kind: KindChecksumList, raw: raw}
}

// Kind returns the representation tag.
func (in Input) Kind() InputKind {
	return in.kind
}

// Parse decodes in into a manifest, dispatching on its kind.
//
// Any malformed record fails the whole parse with ErrTypeMalformedManifest.
func Parse(in Input) (*Manifest, error) {
	switch in.kind {
	case KindDelimited:
		return parseDelimited(in.raw)
	case KindStructured:
		return parseStructured(in.entries)
	case KindChecksumList:
		return parseChecksumList(in.raw)
	default:
		return nil, fmt.Errorf("unknown manifest input kind %d", in.kind)
	}
}

func parseDelimited(raw []byte) (*Manifest, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.Comma = Delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = true

	var entries []Entry
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			line := 0
			if errors.As(err, &perr) {
				line = perr.StartLine
			}
			return nil, utils.NewChecksumErrorWithPath(utils.ErrTypeMalformedManifest,
				lineContent(raw, line), fmt.Sprintf("line %d is not a valid record", line), err)
		}
		if len(record) != 2 {
			line, _ := r.FieldPos(0)
			return nil, utils.NewChecksumErrorWithPath(utils.ErrTypeMalformedManifest,
				lineContent(raw, line), fmt.Sprintf("line %d has %d fields, want 2", line, len(record)), nil)
		}
		if record[0] == "" {
			line, _ := r.FieldPos(0)
			return nil, utils.NewChecksumErrorWithPath(utils.ErrTypeMalformedManifest,
				lineContent(raw, line), fmt.Sprintf("line %d has an empty filename", line), nil)
		}
		entries = append(entries, Entry{Filename: record[0], Checksum: record[1]})
	}
	return NewManifest(entries), nil
}

func parseStructured(in []Entry) (*Manifest, error) {
	for i, e := range in {
		if e.Filename == "" {
			return nil, utils.NewChecksumErrorWithPath(utils.ErrTypeMalformedManifest,
				fmt.Sprintf("entry %d", i), "entry has an empty filename", nil)
		}
	}
	return NewManifest(in), nil
}

func parseChecksumList(raw []byte) (*Manifest, error) {
	var entries []Entry
	sc := bufio.NewScanner(bytes.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		trimmed := strings.TrimLeft(text, " \t")
		var checksum, filename string
		if i := strings.IndexAny(trimmed, " \t"); i > 0 {
			checksum = trimmed[:i]
			filename = strings.TrimPrefix(strings.TrimLeft(trimmed[i:], " \t"), "*")
		}
		if checksum == "" || filename == "" {
			return nil, utils.NewChecksumErrorWithPath(utils.ErrTypeMalformedManifest,
				text, fmt.Sprintf("line %d is not a checksum and filename pair", line), nil)
		}
		entries = append(entries, Entry{Filename: filename, Checksum: strings.ToLower(checksum)})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading checksum list: %w", err)
	}
	return NewManifest(entries), nil
}

// lineContent returns line n (1-based) of raw for error reports.
func lineContent(raw []byte, n int) string {
	if n <= 0 {
		return ""
	}
	lines := bytes.Split(raw, []byte("\n"))
	if n > len(lines) {
		return ""
	}
	return strings.TrimRight(string(lines[n-1]), "\r")
}
