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

package checksums

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/sampras343/transfer-checksums/pkg/config"
	"github.com/sampras343/transfer-checksums/pkg/logging"
	"github.com/sampras343/transfer-checksums/pkg/manifest"
	"github.com/sampras343/transfer-checksums/pkg/storage"
	"github.com/sampras343/transfer-checksums/pkg/utils"
)

const (
	fox      = "The quick brown fox jumps over the lazy dog"
	foxHex   = "9e107d9d372bb6826bd81d3542a419d6"
	emptyHex = "d41d8cd98f00b204e9800998ecf8427e"
)

func newTestService(t *testing.T, opts Options) (*Service, *storage.MemoryStore) {
	t.Helper()
	mem := storage.NewMemoryStore()
	r := storage.NewRegistry("mem", nil)
	r.Register("mem", mem)
	if opts.Logger == nil {
		opts.Logger = logging.NewLoggerWithOptions(logging.LoggerOptions{Level: logging.LevelSilent})
	}
	if opts.DigestSize == 0 {
		opts.DigestSize = utils.MD5Size
	}
	return NewService(r, opts), mem
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService(t, Options{})
	mem.Put("src", "data/a.txt", []byte(fox))
	mem.Put("src", "data/sub/b.txt", nil)
	mem.Put("src", "elsewhere.txt", []byte("x"))

	resp, err := svc.Generate(ctx, GenerateRequest{
		SourceURI:            "mem://src/data/",
		DestinationContainer: "dest",
		OutputFileName:       "checksums.csv",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Message != GeneratedMessage || resp.Entries != 2 || resp.Location != "mem://dest/checksums.csv" {
		t.Errorf("Generate() = %+v", resp)
	}

	data, err := mem.Read(ctx, "dest", "checksums.csv")
	if err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	want := "a.txt," + foxHex + "\nsub/b.txt," + emptyHex + "\n"
	if string(data) != want {
		t.Errorf("manifest = %q, want %q", data, want)
	}
}

func TestGenerateDestinationPrefix(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService(t, Options{})
	mem.Put("src", "a.txt", []byte(fox))

	resp, err := svc.Generate(ctx, GenerateRequest{
		SourceURI:            "mem://src",
		DestinationContainer: "mem://dest/reports/2024",
		OutputFileName:       "out.csv",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Location != "mem://dest/reports/2024/out.csv" {
		t.Errorf("Location = %q", resp.Location)
	}
	if ok, _ := mem.Exists(ctx, "dest", "reports/2024/out.csv"); !ok {
		t.Error("manifest not written under the destination prefix")
	}
}

func TestGenerateFailsClosed(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(*storage.MemoryStore)
		req      GenerateRequest
		wantType utils.ErrorType
	}{
		{
			name: "missing digest",
			setup: func(m *storage.MemoryStore) {
				m.Put("src", "a.txt", []byte(fox))
				m.PutObject("src", "composite.bin", []byte("x"), "")
			},
			req:      GenerateRequest{SourceURI: "mem://src", DestinationContainer: "dest", OutputFileName: "c.csv"},
			wantType: utils.ErrTypeMissingDigest,
		},
		{
			name: "undecodable digest",
			setup: func(m *storage.MemoryStore) {
				m.PutObject("src", "a.txt", []byte("x"), "not base64!")
			},
			req:      GenerateRequest{SourceURI: "mem://src", DestinationContainer: "dest", OutputFileName: "c.csv"},
			wantType: utils.ErrTypeDecoding,
		},
		{
			name: "duplicate filename",
			setup: func(m *storage.MemoryStore) {
				m.Put("src", "data/a.txt", []byte("1"))
				m.Put("src", "dataa.txt", []byte("2"))
			},
			req:      GenerateRequest{SourceURI: "mem://src/data", DestinationContainer: "dest", OutputFileName: "c.csv"},
			wantType: utils.ErrTypeDuplicateEntry,
		},
		{
			name: "listing failure",
			setup: func(m *storage.MemoryStore) {
				m.Put("src", "a.txt", []byte("1"))
				m.Put("src", "b.txt", []byte("2"))
				m.FailList("src", errors.New("connection reset"))
			},
			req:      GenerateRequest{SourceURI: "mem://src", DestinationContainer: "dest", OutputFileName: "c.csv"},
			wantType: utils.ErrTypeIO,
		},
		{
			name:     "invalid source",
			setup:    func(*storage.MemoryStore) {},
			req:      GenerateRequest{SourceURI: "ftp://src", DestinationContainer: "dest", OutputFileName: "c.csv"},
			wantType: utils.ErrTypeInvalidLocation,
		},
		{
			name:     "empty output name",
			setup:    func(*storage.MemoryStore) {},
			req:      GenerateRequest{SourceURI: "mem://src", DestinationContainer: "dest"},
			wantType: utils.ErrTypeInvalidLocation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mem := newTestService(t, Options{})
			tt.setup(mem)

			resp, err := svc.Generate(context.Background(), tt.req)
			if err == nil {
				t.Fatalf("Generate() = %+v, want error", resp)
			}
			if !utils.IsType(err, tt.wantType) {
				t.Errorf("error = %v, want %v", err, tt.wantType)
			}
			if ok, _ := mem.Exists(context.Background(), "dest", "c.csv"); ok {
				t.Error("manifest written despite failure")
			}
		})
	}
}

func TestGenerateDuplicateWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLoggerWithOptions(logging.LoggerOptions{Level: logging.LevelWarn, Output: &buf, ShowLevel: true})
	svc, mem := newTestService(t, Options{Duplicates: manifest.DuplicateWarn, Logger: logger})
	mem.Put("src", "data/a.txt", []byte("1"))
	mem.Put("src", "dataa.txt", []byte("2"))

	resp, err := svc.Generate(context.Background(), GenerateRequest{
		SourceURI: "mem://src/data", DestinationContainer: "dest", OutputFileName: "c.csv",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Entries != 2 {
		t.Errorf("Entries = %d, want both rows kept", resp.Entries)
	}
	if !strings.Contains(buf.String(), "[WARN]") {
		t.Errorf("expected a duplicate warning, got %q", buf.String())
	}
}

func TestCompareScenario(t *testing.T) {
	svc, _ := newTestService(t, Options{})

	resp, err := svc.Compare(context.Background(), CompareRequest{
		First:  FromEntries([]manifest.Entry{{Filename: "a.txt", Checksum: "11"}, {Filename: "b.txt", Checksum: "22"}}),
		Second: FromEntries([]manifest.Entry{{Filename: "a.txt", Checksum: "11"}, {Filename: "b.txt", Checksum: "99"}, {Filename: "c.txt", Checksum: "33"}}),
	})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if !reflect.DeepEqual(resp.Matching, []string{"a.txt"}) ||
		!reflect.DeepEqual(resp.Mismatching, []string{"b.txt"}) ||
		len(resp.OnlyInFirst) != 0 ||
		!reflect.DeepEqual(resp.OnlyInSecond, []string{"c.txt"}) {
		t.Errorf("Compare() = %+v", resp.Result)
	}
	if resp.Consistent() {
		t.Error("Consistent() = true")
	}
}

func TestCompareSources(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService(t, Options{})
	mem.Put("src", "a.txt", []byte(fox))
	mem.Put("src", "b.txt", nil)

	if _, err := svc.Generate(ctx, GenerateRequest{SourceURI: "mem://src", DestinationContainer: "dest", OutputFileName: "source.csv"}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		second ManifestSource
	}{
		{"ref", FromRef("dest", "source.csv")},
		{"ref uri", FromRef("mem://dest", "source.csv")},
		{"text", FromText([]byte("b.txt," + emptyHex + "\na.txt," + foxHex + "\n"))},
		{"checksum list", FromChecksumList([]byte(strings.ToUpper(foxHex) + "  a.txt\n" + emptyHex + " *b.txt\n"))},
		{"entries", FromEntries([]manifest.Entry{{Filename: "a.txt", Checksum: foxHex}, {Filename: "b.txt", Checksum: emptyHex}})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Compare(ctx, CompareRequest{First: FromRef("dest", "source.csv"), Second: tt.second})
			if err != nil {
				t.Fatalf("Compare() error = %v", err)
			}
			if !resp.Consistent() || resp.Total() != 2 {
				t.Errorf("Compare() = %+v, want two matching files", resp.Result)
			}
		})
	}
}

func TestCompareErrors(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ok := FromEntries(nil)

	tests := []struct {
		name     string
		req      CompareRequest
		wantType utils.ErrorType
	}{
		{"missing stored manifest", CompareRequest{First: FromRef("dest", "missing.csv"), Second: ok}, utils.ErrTypeNotFound},
		{"malformed text", CompareRequest{First: ok, Second: FromText([]byte("a.txt,11,extra\n"))}, utils.ErrTypeMalformedManifest},
		{"malformed checksum list", CompareRequest{First: FromChecksumList([]byte("lonely\n")), Second: ok}, utils.ErrTypeMalformedManifest},
		{"empty source", CompareRequest{First: ok}, utils.ErrTypeMalformedManifest},
		{"empty ref name", CompareRequest{First: FromRef("dest", ""), Second: ok}, utils.ErrTypeInvalidLocation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Compare(context.Background(), tt.req)
			if !utils.IsType(err, tt.wantType) {
				t.Errorf("Compare() error = %v, want %v", err, tt.wantType)
			}
		})
	}
}

func TestCompareReportsDuplicates(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLoggerWithOptions(logging.LoggerOptions{Level: logging.LevelWarn, Output: &buf})
	svc, _ := newTestService(t, Options{Logger: logger})

	resp, err := svc.Compare(context.Background(), CompareRequest{
		First:  FromText([]byte("a.txt,11\na.txt,22\n")),
		Second: FromEntries([]manifest.Entry{{Filename: "a.txt", Checksum: "22"}}),
	})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if !resp.Consistent() {
		t.Errorf("last duplicate should be compared, got %+v", resp.Result)
	}
	if !reflect.DeepEqual(resp.FirstDuplicates, []string{"a.txt"}) || len(resp.SecondDuplicates) != 0 {
		t.Errorf("duplicates = %v / %v", resp.FirstDuplicates, resp.SecondDuplicates)
	}
	if !strings.Contains(buf.String(), "duplicate filenames") {
		t.Errorf("expected a warning, got %q", buf.String())
	}
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService(t, Options{})
	mem.Put("dest", "checksums.csv", []byte("a.txt,11\n\"b,c.txt\",22\n"))

	resp, err := svc.Get(ctx, GetRequest{Container: "dest", FileName: "checksums.csv"})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	want := []manifest.Entry{{Filename: "a.txt", Checksum: "11"}, {Filename: "b,c.txt", Checksum: "22"}}
	if !reflect.DeepEqual(resp.Checksums, want) {
		t.Errorf("Get() = %v, want %v", resp.Checksums, want)
	}

	if _, err := svc.Get(ctx, GetRequest{Container: "dest", FileName: "nope.csv"}); !utils.IsType(err, utils.ErrTypeNotFound) {
		t.Errorf("Get(missing) error = %v, want NotFound", err)
	}
}

func TestSourceKindString(t *testing.T) {
	if FromChecksumList(nil).Kind().String() != "checksum-list" || (ManifestSource{}).Kind() != SourceNone {
		t.Error("unexpected source kind")
	}
	if FromRef("b", "f.csv").String() != "b/f.csv" {
		t.Errorf("String() = %q", FromRef("b", "f.csv").String())
	}
}

func TestGenerateFileStoreAlgorithm(t *testing.T) {
	const (
		foxSHA256   = "d7a8fbb307d7809469ca9abcb0082e4f8d5651e46d3cdb762d02d0bf37c9e592"
		emptySHA256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	)
	ctx := context.Background()
	fs, err := storage.NewFileStoreFromConfig(config.FileConfig{Root: t.TempDir(), Algorithm: "sha256"})
	if err != nil {
		t.Fatalf("NewFileStoreFromConfig() error = %v", err)
	}
	if err := fs.Write(ctx, "src", "a.txt", []byte(fox)); err != nil {
		t.Fatal(err)
	}
	if err := fs.Write(ctx, "src", "b.txt", nil); err != nil {
		t.Fatal(err)
	}

	r := storage.NewRegistry("file", nil)
	r.Register("file", fs)
	svc := NewService(r, Options{
		Logger:     logging.NewLoggerWithOptions(logging.LoggerOptions{Level: logging.LevelSilent}),
		DigestSize: utils.MD5Size,
	})

	resp, err := svc.Generate(ctx, GenerateRequest{
		SourceURI:            "file://src",
		DestinationContainer: "file://out",
		OutputFileName:       "checksums.csv",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Entries != 2 {
		t.Errorf("Generate() entries = %d, want 2", resp.Entries)
	}
	data, err := fs.Read(ctx, "out", "checksums.csv")
	if err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	want := "a.txt," + foxSHA256 + "\nb.txt," + emptySHA256 + "\n"
	if string(data) != want {
		t.Errorf("manifest = %q, want %q", data, want)
	}
}

func TestGenerateRejectsCarriageReturnName(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService(t, Options{})
	mem.Put("src", "a\r\nb.txt", []byte(fox))
	mem.Put("src", "a\nb.txt", nil)

	_, err := svc.Generate(ctx, GenerateRequest{
		SourceURI:            "mem://src",
		DestinationContainer: "dest",
		OutputFileName:       "checksums.csv",
	})
	if !utils.IsType(err, utils.ErrTypeMalformedManifest) {
		t.Fatalf("Generate() error = %v, want MalformedManifest", err)
	}
	if ok, _ := mem.Exists(ctx, "dest", "checksums.csv"); ok {
		t.Error("manifest written despite unencodable filename")
	}
}

// statFailStore fails every existence check.
type statFailStore struct {
	*storage.MemoryStore
}

func (statFailStore) Exists(context.Context, string, string) (bool, error) {
	return false, utils.NewChecksumError(utils.ErrTypeIO, "stat object", errors.New("permission denied"))
}

func TestGetChecksExistence(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	mem.Put("dest", "checksums.csv", []byte("a.txt,11\n"))
	r := storage.NewRegistry("mem", nil)
	r.Register("mem", statFailStore{mem})
	svc := NewService(r, Options{Logger: logging.NewLoggerWithOptions(logging.LoggerOptions{Level: logging.LevelSilent})})

	if _, err := svc.Get(ctx, GetRequest{Container: "dest", FileName: "checksums.csv"}); !utils.IsType(err, utils.ErrTypeIO) {
		t.Errorf("Get() error = %v, want IOError from the existence check", err)
	}
}
