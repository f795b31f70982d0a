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

package options

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sampras343/transfer-checksums/pkg/checksums"
	"github.com/sampras343/transfer-checksums/pkg/utils"
)

// ManifestSourceFlags select one side of a comparison. Exactly one of the
// three must be set.
type ManifestSourceFlags struct {
	// Ref is a stored manifest, CONTAINER/NAME or scheme://container/path/NAME.
	Ref string
	// File is a local delimited manifest.
	File string
	// ChecksumList is a local md5sum style listing.
	ChecksumList string

	side string
}

func (o *ManifestSourceFlags) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Ref, o.side+"-ref", "", fmt.Sprintf("Stored %s manifest, as CONTAINER/NAME or a location URI ending in the manifest name.", o.side))
	cmd.Flags().StringVar(&o.File, o.side+"-file", "", fmt.Sprintf("Local %s manifest file.", o.side))
	_ = cmd.MarkFlagFilename(o.side+"-file", "csv", "txt")
	cmd.Flags().StringVar(&o.ChecksumList, o.side+"-checksum-list", "", fmt.Sprintf("Local md5sum style listing used as the %s manifest.", o.side))
	cmd.MarkFlagsMutuallyExclusive(o.side+"-ref", o.side+"-file", o.side+"-checksum-list")
	cmd.MarkFlagsOneRequired(o.side+"-ref", o.side+"-file", o.side+"-checksum-list")
}

// Source turns the flags into a manifest source, reading local files.
func (o *ManifestSourceFlags) Source() (checksums.ManifestSource, error) {
	switch {
	case o.Ref != "":
		container, name, err := SplitRef(o.Ref)
		if err != nil {
			return checksums.ManifestSource{}, err
		}
		return checksums.FromRef(container, name), nil
	case o.File != "":
		data, err := readLocal(o.side+" manifest file", o.File)
		if err != nil {
			return checksums.ManifestSource{}, err
		}
		return checksums.FromText(data), nil
	case o.ChecksumList != "":
		data, err := readLocal(o.side+" checksum list", o.ChecksumList)
		if err != nil {
			return checksums.ManifestSource{}, err
		}
		return checksums.FromChecksumList(data), nil
	default:
		return checksums.ManifestSource{}, utils.NewChecksumError(utils.ErrTypeMalformedManifest,
			fmt.Sprintf("no %s manifest given", o.side), nil)
	}
}

func readLocal(field, path string) ([]byte, error) {
	if err := utils.ValidateFileExists(field, path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.NewChecksumErrorWithPath(utils.ErrTypeIO, path, "reading "+field, err)
	}
	return data, nil
}

// SplitRef splits a manifest reference at its last slash into the container
// part, which may be a location URI, and the object name.
func SplitRef(ref string) (container, name string, err error) {
	i := strings.LastIndex(ref, "/")
	if i <= 0 || i == len(ref)-1 || strings.HasSuffix(ref[:i+1], "://") {
		return "", "", utils.NewChecksumErrorWithPath(utils.ErrTypeInvalidLocation, ref,
			"manifest reference must be CONTAINER/NAME", nil)
	}
	return ref[:i], ref[i+1:], nil
}

// CompareOptions holds the flags of the compare command.
type CompareOptions struct {
	First  ManifestSourceFlags
	Second ManifestSourceFlags
}

// NewCompareOptions returns options with the first and second flag sets named.
func NewCompareOptions() *CompareOptions {
	return &CompareOptions{
		First:  ManifestSourceFlags{side: "first"},
		Second: ManifestSourceFlags{side: "second"},
	}
}

var _ FlagAdder = (*CompareOptions)(nil)

func (o *CompareOptions) AddFlags(cmd *cobra.Command) {
	AddAllFlags(cmd, &o.First, &o.Second)
}

// Request builds the comparison request from the flags.
func (o *CompareOptions) Request() (checksums.CompareRequest, error) {
	first, err := o.First.Source()
	if err != nil {
		return checksums.CompareRequest{}, err
	}
	second, err := o.Second.Source()
	if err != nil {
		return checksums.CompareRequest{}, err
	}
	return checksums.CompareRequest{First: first, Second: second}, nil
}
