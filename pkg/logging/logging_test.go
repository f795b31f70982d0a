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

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
)

func bufferLogger(level LogLevel, format LogFormat) (*DefaultLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewLoggerWithOptions(LoggerOptions{Level: level, Format: format, Output: &buf, ShowLevel: true}), &buf
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name          string
		verbose       bool
		wantSilent    bool
		expectedLevel LogLevel
	}{
		{name: "verbose", verbose: true, wantSilent: false, expectedLevel: LevelDebug},
		{name: "quiet", verbose: false, wantSilent: true, expectedLevel: LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogger(tt.verbose)
			if logger.Silent() != tt.wantSilent {
				t.Errorf("Silent() = %v, want %v", logger.Silent(), tt.wantSilent)
			}
			if logger.GetLevel() != tt.expectedLevel {
				t.Errorf("GetLevel() = %v, want %v", logger.GetLevel(), tt.expectedLevel)
			}
			if logger.out != os.Stderr {
				t.Error("NewLogger() should write to os.Stderr")
			}
		})
	}
}

func TestNewLoggerWithCustomFormatter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOptions(LoggerOptions{
		Level:     LevelDebug,
		Format:    FormatJSON,
		Formatter: &TextFormatter{ShowLevel: true},
		Output:    &buf,
	})
	logger.Info("test")

	if got := buf.String(); got != "[INFO] test\n" {
		t.Errorf("output = %q, want custom text formatter", got)
	}
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  []string
	}{
		{LevelDebug, []string{"[DEBUG] d", "[INFO] i", "[WARN] w", "[ERROR] e"}},
		{LevelInfo, []string{"[INFO] i", "[WARN] w", "[ERROR] e"}},
		{LevelWarn, []string{"[WARN] w", "[ERROR] e"}},
		{LevelError, []string{"[ERROR] e"}},
		{LevelSilent, nil},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			logger, buf := bufferLogger(tt.level, FormatText)
			logger.Debug("%s", "d")
			logger.Infoln("i")
			logger.Warn("w")
			logger.Errorln("e")

			got := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
			if len(tt.want) == 0 {
				if buf.Len() != 0 {
					t.Errorf("expected no output, got %q", buf.String())
				}
				return
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("output = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsLevelEnabled(t *testing.T) {
	logger, _ := bufferLogger(LevelWarn, FormatText)
	if logger.IsLevelEnabled(LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !logger.IsLevelEnabled(LevelError) {
		t.Error("error should be enabled at warn level")
	}
	logger.SetLevel(LevelDebug)
	if !logger.IsLevelEnabled(LevelDebug) {
		t.Error("SetLevel(debug) did not take effect")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LevelDebug,
		" INFO ":  LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"off":     LevelSilent,
		"bogus":   LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := LookupLogLevel("bogus"); err == nil {
		t.Error("LookupLogLevel(bogus) should fail")
	}
}

func TestParseLogFormat(t *testing.T) {
	if ParseLogFormat("JSON") != FormatJSON {
		t.Error("ParseLogFormat(JSON) should be FormatJSON")
	}
	if ParseLogFormat("xml") != FormatText {
		t.Error("unknown formats should fall back to text")
	}
	if _, err := LookupLogFormat("xml"); err == nil {
		t.Error("LookupLogFormat(xml) should fail")
	}
	if FormatJSON.String() != "json" || LogFormat(9).String() != "unknown" {
		t.Error("unexpected LogFormat.String()")
	}
}

func TestTextFormatterFields(t *testing.T) {
	logger, buf := bufferLogger(LevelInfo, FormatText)
	logger.WithFields(map[string]interface{}{
		"uri":   "gs://bucket/prefix",
		"count": 3,
		"note":  "two words",
	}).Info("listed")

	want := `[INFO] listed count=3 note="two words" uri=gs://bucket/prefix` + "\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestJSONFormatter(t *testing.T) {
	logger, buf := bufferLogger(LevelDebug, FormatJSON)
	logger.WithField("error", errors.New("boom")).WithField("count", 42).Warn("compare %s", "done")

	var entry jsonEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}
	if entry.Level != "warn" || entry.Message != "compare done" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Timestamp == "" {
		t.Error("timestamp should be set")
	}
	if entry.Fields["error"] != "boom" {
		t.Errorf("error field = %v, want boom", entry.Fields["error"])
	}
	if entry.Fields["count"] != float64(42) {
		t.Errorf("count field = %v, want 42", entry.Fields["count"])
	}
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	parent, buf := bufferLogger(LevelInfo, FormatText)
	child := parent.WithField("request_id", "abc")

	parent.Info("parent")
	child.Info("child")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	if strings.Contains(lines[0], "request_id") {
		t.Errorf("parent line carries child field: %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "request_id=abc") {
		t.Errorf("child line = %q", lines[1])
	}
}

func TestNewFromStrings(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewFromStrings("debug", "json", &buf)
	if err != nil {
		t.Fatalf("NewFromStrings() error = %v", err)
	}
	if logger.GetLevel() != LevelDebug {
		t.Errorf("GetLevel() = %v", logger.GetLevel())
	}
	if _, ok := logger.formatter.(*JSONFormatter); !ok {
		t.Errorf("formatter = %T, want *JSONFormatter", logger.formatter)
	}

	if _, err := NewFromStrings("loud", "text", &buf); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := NewFromStrings("info", "yaml", &buf); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestContextLogger(t *testing.T) {
	fallback, _ := bufferLogger(LevelInfo, FormatText)
	scoped := fallback.WithField("request_id", "r-1")

	if got := FromContext(context.Background(), fallback); got != Logger(fallback) {
		t.Error("FromContext without a stored logger should return the fallback")
	}
	ctx := NewContext(context.Background(), scoped)
	if got := FromContext(ctx, fallback); got != scoped {
		t.Error("FromContext should return the stored logger")
	}
	if FromContext(context.Background(), nil) == nil {
		t.Error("FromContext should never return nil")
	}
}

func TestEnsureLogger(t *testing.T) {
	if EnsureLogger(nil) == nil {
		t.Error("EnsureLogger(nil) returned nil")
	}
	l := NewLogger(true)
	if EnsureLogger(l) != Logger(l) {
		t.Error("EnsureLogger should return a non-nil logger unchanged")
	}
}
