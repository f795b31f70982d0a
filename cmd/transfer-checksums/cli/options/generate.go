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
	"github.com/spf13/cobra"
)

// GenerateOptions holds the flags of the generate command.
type GenerateOptions struct {
	// Destination is the container (or location URI) that receives the manifest.
	Destination string
	// Output is the manifest object name inside Destination.
	Output string

	FileBackendFlags
	ManifestFlags
}

var _ FlagAdder = (*GenerateOptions)(nil)

func (o *GenerateOptions) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.Destination, "destination", "d", "", "Container or location URI to write the manifest to. [required]")
	_ = cmd.MarkFlagRequired("destination")
	cmd.Flags().StringVarP(&o.Output, "output", "o", "", "Name of the manifest object to write. [required]")
	_ = cmd.MarkFlagRequired("output")

	AddAllFlags(cmd, &o.FileBackendFlags, &o.ManifestFlags)
}

// ServeOptions holds the flags of the serve command.
type ServeOptions struct {
	Addr string

	FileBackendFlags
}

var _ FlagAdder = (*ServeOptions)(nil)

func (o *ServeOptions) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Addr, "addr", "", "Address to listen on (default from configuration, :8080).")
	o.FileBackendFlags.AddFlags(cmd)
}
