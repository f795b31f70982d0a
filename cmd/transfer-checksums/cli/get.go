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

package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sampras343/transfer-checksums/pkg/checksums"
)

// Get creates the get command.
func Get() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get CONTAINER FILE",
		Short: "Print a stored checksum manifest as JSON.",
		Long: `Read the manifest FILE from CONTAINER and print its entries as
{"checksums": [{"filename": ..., "checksum": ...}]}. CONTAINER may be a bare
name or a location URI whose prefix is prepended to FILE.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, registry, err := newService(ro.Config)
			if err != nil {
				return err
			}
			defer registry.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), ro.Timeout)
			defer cancel()

			resp, err := svc.Get(ctx, checksums.GetRequest{Container: args[0], FileName: args[1]})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	return cmd
}
