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

import "sort"

// Result partitions the union of two manifests' filenames into four
// disjoint, sorted lists.
type Result struct {
	// Matching holds filenames present in both manifests with equal checksums.
	Matching []string `json:"matching"`

	// Mismatching holds filenames present in both with different checksums.
	Mismatching []string `json:"mismatching"`

	// OnlyInFirst holds filenames present only in the first manifest.
	OnlyInFirst []string `json:"only_in_first"`

	// OnlyInSecond holds filenames present only in the second manifest.
	OnlyInSecond []string `json:"only_in_second"`

	// Mismatches details each entry of Mismatching.
	Mismatches []HashMismatch `json:"-"`
}

// HashMismatch is a single filename with differing checksums.
type HashMismatch struct {
	// Identifier is the manifest filename.
	Identifier string

	// FirstChecksum is the checksum from the first manifest.
	FirstChecksum string

	// SecondChecksum is the checksum from the second manifest.
	SecondChecksum string
}

// Consistent returns true if every filename matched.
func (r *Result) Consistent() bool {
	return len(r.Mismatching) == 0 && len(r.OnlyInFirst) == 0 && len(r.OnlyInSecond) == 0
}

// Total returns the number of distinct filenames classified.
func (r *Result) Total() int {
	return len(r.Matching) + len(r.Mismatching) + len(r.OnlyInFirst) + len(r.OnlyInSecond)
}

// Compare reconciles two manifests.
//
// Checksums are compared as exact strings. Duplicate filenames within one
// manifest are resolved by its Mapping (later rows win) before comparing.
func Compare(first, second *Manifest) *Result {
	result := &Result{
		Matching:     []string{},
		Mismatching:  []string{},
		OnlyInFirst:  []string{},
		OnlyInSecond: []string{},
		Mismatches:   []HashMismatch{},
	}

	firstHashes := first.Mapping()
	secondHashes := second.Mapping()

	for name, firstSum := range firstHashes {
		secondSum, ok := secondHashes[name]
		switch {
		case !ok:
			result.OnlyInFirst = append(result.OnlyInFirst, name)
		case firstSum == secondSum:
			result.Matching = append(result.Matching, name)
		default:
			result.Mismatching = append(result.Mismatching, name)
		}
	}
	for name := range secondHashes {
		if _, ok := firstHashes[name]; !ok {
			result.OnlyInSecond = append(result.OnlyInSecond, name)
		}
	}

	sort.Strings(result.Matching)
	sort.Strings(result.Mismatching)
	sort.Strings(result.OnlyInFirst)
	sort.Strings(result.OnlyInSecond)

	for _, name := range result.Mismatching {
		result.Mismatches = append(result.Mismatches, HashMismatch{
			Identifier:     name,
			FirstChecksum:  firstHashes[name],
			SecondChecksum: secondHashes[name],
		})
	}

	return result
}
