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
)

// ErrorType represents the category of a checksum error.
type ErrorType int

const (
	// ErrTypeUnknown indicates an unclassified error.
	ErrTypeUnknown ErrorType = iota

	// ErrTypeInvalidLocation indicates a malformed storage location reference.
	ErrTypeInvalidLocation

	// ErrTypeMissingDigest indicates an object has no digest, so integrity
	// cannot be asserted for it.
	ErrTypeMissingDigest

	// ErrTypeDecoding indicates a transport digest is not valid base64.
	ErrTypeDecoding

	// ErrTypeMalformedManifest indicates a manifest record does not split into
	// exactly two fields.
	ErrTypeMalformedManifest

	// ErrTypeNotFound indicates a referenced manifest object does not exist.
	ErrTypeNotFound

	// ErrTypeDuplicateEntry indicates two listed objects map to the same
	// manifest filename.
	ErrTypeDuplicateEntry

	// ErrTypeConfiguration indicates a configuration error.
	ErrTypeConfiguration

	// ErrTypeIO indicates an I/O error talking to the object store.
	ErrTypeIO
)

// String returns a human-readable name for the error type.
func (e ErrorType) String() string {
	switch e {
	case ErrTypeInvalidLocation:
		return "InvalidLocation"
	case ErrTypeMissingDigest:
		return "MissingDigest"
	case ErrTypeDecoding:
		return "DecodingError"
	case ErrTypeMalformedManifest:
		return "MalformedManifest"
	case ErrTypeNotFound:
		return "NotFound"
	case ErrTypeDuplicateEntry:
		return "DuplicateEntry"
	case ErrTypeConfiguration:
		return "ConfigurationError"
	case ErrTypeIO:
		return "IOError"
	default:
		return "UnknownError"
	}
}

// ChecksumError is a structured error type for manifest and reconciliation
// failures.
//
// Path carries the object name, manifest line or location the error is about.
// Callers classify errors with IsType or errors.As:
//
//	var cerr *ChecksumError
//	if errors.As(err, &cerr) && cerr.Type == ErrTypeMissingDigest {
//	    log.Printf("object %s has no digest", cerr.Path)
//	}
type ChecksumError struct {
	// Type categorizes the error for programmatic handling.
	Type ErrorType

	// Path is the object name, location or manifest line involved (optional).
	Path string

	// Message is a human-readable description of what went wrong.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *ChecksumError) Error() string {
	if e.Path != "" && e.Cause != nil {
		return fmt.Sprintf("%s: %s (path: %s): %v", e.Type, e.Message, e.Path, e.Cause)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (path: %s)", e.Type, e.Message, e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for error chain unwrapping.
func (e *ChecksumError) Unwrap() error {
	return e.Cause
}

// NewChecksumError creates a new checksum error.
func NewChecksumError(errType ErrorType, message string, cause error) *ChecksumError {
	return &ChecksumError{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// NewChecksumErrorWithPath creates a new checksum error about a specific path.
func NewChecksumErrorWithPath(errType ErrorType, path, message string, cause error) *ChecksumError {
	return &ChecksumError{
		Type:    errType,
		Path:    path,
		Message: message,
		Cause:   cause,
	}
}

// IsType reports whether err, or any error it wraps, is a ChecksumError of
// the given type.
func IsType(err error, errType ErrorType) bool {
	var cerr *ChecksumError
	return errors.As(err, &cerr) && cerr.Type == errType
}

// TypeOf returns the ErrorType of the first ChecksumError in err's chain,
// or ErrTypeUnknown when there is none.
func TypeOf(err error) ErrorType {
	var cerr *ChecksumError
	if errors.As(err, &cerr) {
		return cerr.Type
	}
	return ErrTypeUnknown
}
