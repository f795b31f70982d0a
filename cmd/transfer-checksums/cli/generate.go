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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sampras343/transfer-checksums/cmd/transfer-checksums/cli/options"
	"github.com/sampras343/transfer-checksums/pkg/checksums"
	"github.com/sampras343/transfer-checksums/pkg/logging"
)

// Generate creates the generate command.
func Generate() *cobra.Command {
	o := &options.GenerateOptions{}

	long := `Generate a checksum manifest for every object under SOURCE_URI.

Each object's stored digest becomes one "filename,checksum" row, with the
filename relative to the source prefix and the checksum in lowercase hex.
The manifest is written to OUTPUT in DESTINATION only once every object has
been listed; an object without a usable digest aborts the run.

Examples:
  transfer-checksums generate gs://raw-data/run1 -d reports -o run1.csv
  transfer-checksums generate file://exports/2024 -d file://reports -o 2024.csv --file-root /srv`

	cmd := &cobra.Command{
		Use:   "generate [OPTIONS] SOURCE_URI",
		Short: "Generate and store a checksum manifest.",
		Long:  long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ro.Config
			o.FileBackendFlags.Apply(cmd, &cfg.Storage.File)
			o.ManifestFlags.Apply(cmd, &cfg.Manifest)

			svc, registry, err := newService(cfg)
			if err != nil {
				return err
			}
			defer registry.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), ro.Timeout)
			defer cancel()

			resp, err := svc.Generate(ctx, checksums.GenerateRequest{
				SourceURI:            args[0],
				DestinationContainer: o.Destination,
				OutputFileName:       o.Output,
			})
			if err != nil {
				return err
			}
			if ro.GetLogLevel() < logging.LevelSilent {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d entries, %s)\n", resp.Message, resp.Entries, resp.Location)
			}
			return nil
		},
	}

	o.AddFlags(cmd)
	return cmd
}
