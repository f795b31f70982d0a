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

package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "manifest.csv")
	if err := os.WriteFile(file, []byte("a.txt,11\n"), 0o644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	tests := []struct {
		name     string
		path     string
		wantErr  bool
		wantType ErrorType
	}{
		{name: "valid file", path: file},
		{name: "empty path", path: "", wantErr: true, wantType: ErrTypeInvalidLocation},
		{name: "non-existent file", path: filepath.Join(tmpDir, "missing.csv"), wantErr: true, wantType: ErrTypeNotFound},
		{name: "directory instead of file", path: tmpDir, wantErr: true, wantType: ErrTypeInvalidLocation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileExists("manifest", tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateFileExists() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !IsType(err, tt.wantType) {
				t.Errorf("ValidateFileExists() error type = %v, want %v", TypeOf(err), tt.wantType)
			}
		})
	}
}

func TestValidateFolderExists(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "a.txt")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ValidateFolderExists("root", tmpDir); err != nil {
		t.Errorf("ValidateFolderExists(dir) error = %v", err)
	}
	if err := ValidateFolderExists("root", file); !IsType(err, ErrTypeInvalidLocation) {
		t.Errorf("ValidateFolderExists(file) error = %v, want InvalidLocation", err)
	}
}

func TestValidateOptionalFile(t *testing.T) {
	if err := ValidateOptionalFile("config", ""); err != nil {
		t.Errorf("ValidateOptionalFile(\"\") error = %v", err)
	}
	if err := ValidateOptionalFile("config", "/nonexistent/config.yaml"); !IsType(err, ErrTypeNotFound) {
		t.Errorf("ValidateOptionalFile(missing) error = %v, want NotFound", err)
	}
}
