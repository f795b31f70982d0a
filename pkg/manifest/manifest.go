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

// Package manifest provides the checksum manifest model: building manifests
// from object listings, encoding and parsing them, and reconciling two
// manifests against each other.
package manifest

import "sort"

// Entry pairs a filename with its canonical hexadecimal checksum.
type Entry struct {
	// Filename is the object name relative to the listed prefix.
	Filename string `json:"filename"`

	// Checksum is the lowercase hexadecimal digest.
	Checksum string `json:"checksum"`
}

// Manifest is an ordered, immutable collection of entries.
//
// Entry order is listing order. Lookups go through Mapping, where a later
// duplicate filename overwrites an earlier one; Duplicates reports which
// filenames that happened to.
type Manifest struct {
	entries    []Entry
	mapping    map[string]string
	duplicates []string
}

// NewManifest builds a manifest from entries, keeping their order.
//
// The entries slice is copied.
func NewManifest(entries []Entry) *Manifest {
	m := &Manifest{
		entries: make([]Entry, len(entries)),
		mapping: make(map[string]string, len(entries)),
	}
	copy(m.entries, entries)

	seen := make(map[string]int, len(entries))
	for _, e := range m.entries {
		m.mapping[e.Filename] = e.Checksum
		seen[e.Filename]++
		if seen[e.Filename] == 2 {
			m.duplicates = append(m.duplicates, e.Filename)
		}
	}
	sort.Strings(m.duplicates)
	return m
}

// Entries returns a copy of the manifest rows in listing order.
func (m *Manifest) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len returns the number of rows, duplicates included.
func (m *Manifest) Len() int {
	return len(m.entries)
}

// Lookup returns the checksum recorded for filename.
func (m *Manifest) Lookup(filename string) (string, bool) {
	c, ok := m.mapping[filename]
	return c, ok
}

// Mapping returns a filename to checksum map. Later duplicates win.
//
// The returned map is a copy.
func (m *Manifest) Mapping() map[string]string {
	out := make(map[string]string, len(m.mapping))
	for k, v := range m.mapping {
		out[k] = v
	}
	return out
}

// Filenames returns the distinct filenames, sorted.
func (m *Manifest) Filenames() []string {
	names := make([]string, 0, len(m.mapping))
	for name := range m.mapping {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Duplicates returns filenames that occur more than once, sorted.
func (m *Manifest) Duplicates() []string {
	out := make([]string, len(m.duplicates))
	copy(out, m.duplicates)
	return out
}

// Equal reports whether two manifests hold the same rows in the same order.
func (m *Manifest) Equal(other *Manifest) bool {
	if m == other {
		return true
	}
	if m == nil || other == nil {
		return false
	}
	if len(m.entries) != len(other.entries) {
		return false
	}
	for i := range m.entries {
		if m.entries[i] != other.entries[i] {
			return false
		}
	}
	return true
}

// ToMapping is the lookup view of a manifest.
func ToMapping(m *Manifest) map[string]string {
	return m.Mapping()
}
