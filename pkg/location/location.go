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

// Package location parses object store references of the form
// scheme://container/optional/prefix and derives manifest filenames from
// listed object names.
package location

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sampras343/transfer-checksums/pkg/utils"
)

const schemeSeparator = "://"

// Recognised schemes.
const (
	SchemeGCS    = "gs"
	SchemeS3     = "s3"
	SchemeFile   = "file"
	SchemeMemory = "mem"
)

var knownSchemes = map[string]bool{
	SchemeGCS:    true,
	SchemeS3:     true,
	SchemeFile:   true,
	SchemeMemory: true,
}

// Location identifies a set of objects: every object in Container whose name
// starts with Prefix. Prefix never has a leading slash.
type Location struct {
	Scheme    string
	Container string
	Prefix    string
}

// String renders the location back into its URI form.
func (l Location) String() string {
	if l.Prefix == "" {
		return l.Scheme + schemeSeparator + l.Container
	}
	return l.Scheme + schemeSeparator + l.Container + "/" + l.Prefix
}

// Relative returns the manifest filename of a listed object under this location.
func (l Location) Relative(fullName string) string {
	return RelativeName(fullName, l.Prefix)
}

// Schemes returns the recognised scheme names, sorted.
func Schemes() []string {
	out := make([]string, 0, len(knownSchemes))
	for s := range knownSchemes {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// IsKnownScheme reports whether scheme is one of the recognised schemes.
func IsKnownScheme(scheme string) bool {
	return knownSchemes[scheme]
}

// Parse splits a location URI into scheme, container and prefix.
//
// The remainder after the scheme marker is split at the first "/": the part
// before it is the container and must be non-empty, the part after it (if
// any) is the prefix. The prefix is taken literally; "." and ".." segments
// and repeated inner slashes are kept as they are.
func Parse(uri string) (Location, error) {
	scheme, rest, ok := strings.Cut(uri, schemeSeparator)
	if !ok {
		return Location{}, utils.NewChecksumErrorWithPath(utils.ErrTypeInvalidLocation, uri,
			"location must start with scheme://", nil)
	}
	if !IsKnownScheme(scheme) {
		return Location{}, utils.NewChecksumErrorWithPath(utils.ErrTypeInvalidLocation, uri,
			fmt.Sprintf("unsupported scheme %q (supported: %s)", scheme, strings.Join(Schemes(), ", ")), nil)
	}

	container, prefix, _ := strings.Cut(rest, "/")
	if container == "" {
		return Location{}, utils.NewChecksumErrorWithPath(utils.ErrTypeInvalidLocation, uri,
			"container name is empty", nil)
	}

	return Location{
		Scheme:    scheme,
		Container: container,
		Prefix:    strings.TrimLeft(prefix, "/"),
	}, nil
}

// ParseWithDefault parses ref as a location URI, or, when ref carries no
// scheme marker, as a bare container name bound to defaultScheme.
func ParseWithDefault(ref, defaultScheme string) (Location, error) {
	if strings.Contains(ref, schemeSeparator) {
		return Parse(ref)
	}
	if ref == "" {
		return Location{}, utils.NewChecksumError(utils.ErrTypeInvalidLocation,
			"container name is empty", nil)
	}
	return Parse(defaultScheme + schemeSeparator + ref)
}

// RelativeName strips prefix from fullName, along with any slash left at the
// front. Names that do not start with prefix are returned unchanged.
func RelativeName(fullName, prefix string) string {
	if !strings.HasPrefix(fullName, prefix) {
		return fullName
	}
	return strings.TrimLeft(fullName[len(prefix):], "/")
}
