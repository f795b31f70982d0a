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
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// PathType represents the type of path to validate.
type PathType int

const (
	// PathTypeFile expects a regular file.
	PathTypeFile PathType = iota
	// PathTypeFolder expects a directory.
	PathTypeFolder
	// PathTypeAny accepts either file or directory.
	PathTypeAny
)

// PathValidator checks local paths given on the command line, such as
// manifest files to compare or the root of the file backend.
type PathValidator struct {
	fieldName string
	path      string
	pathType  PathType
}

func NewPathValidator(fieldName, path string, pathType PathType) *PathValidator {
	return &PathValidator{
		fieldName: fieldName,
		path:      path,
		pathType:  pathType,
	}
}

// Validate checks that the path is set, exists and has the expected type.
// A missing path is ErrTypeNotFound; an empty or mistyped one is
// ErrTypeInvalidLocation.
func (v *PathValidator) Validate() error {
	if v.path == "" {
		return NewChecksumError(ErrTypeInvalidLocation, fmt.Sprintf("%s is required", v.fieldName), nil)
	}

	info, err := os.Stat(v.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewChecksumErrorWithPath(ErrTypeNotFound, v.path, fmt.Sprintf("%s does not exist", v.fieldName), nil)
		}
		return NewChecksumErrorWithPath(ErrTypeIO, v.path, fmt.Sprintf("checking %s", v.fieldName), err)
	}

	switch v.pathType {
	case PathTypeFile:
		if info.IsDir() {
			return NewChecksumErrorWithPath(ErrTypeInvalidLocation, v.path,
				fmt.Sprintf("%s is a directory, expected file", v.fieldName), nil)
		}
	case PathTypeFolder:
		if !info.IsDir() {
			return NewChecksumErrorWithPath(ErrTypeInvalidLocation, v.path,
				fmt.Sprintf("%s is a file, expected directory", v.fieldName), nil)
		}
	}

	return nil
}

// ValidateFileExists validates that a path exists and is a file.
func ValidateFileExists(fieldName, path string) error {
	return NewPathValidator(fieldName, path, PathTypeFile).Validate()
}

// ValidateFolderExists validates that a path exists and is a directory.
func ValidateFolderExists(fieldName, path string) error {
	return NewPathValidator(fieldName, path, PathTypeFolder).Validate()
}

// ValidateOptionalFile validates a file path only if it's not empty.
func ValidateOptionalFile(fieldName, path string) error {
	if path == "" {
		return nil
	}
	return ValidateFileExists(fieldName, path)
}
