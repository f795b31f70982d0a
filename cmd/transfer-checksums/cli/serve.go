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
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sampras343/transfer-checksums/cmd/transfer-checksums/cli/options"
	"github.com/sampras343/transfer-checksums/pkg/server"
)

// Serve creates the serve command.
func Serve() *cobra.Command {
	o := &options.ServeOptions{}

	long := `Serve the checksum operations over HTTP.

  POST /generate-checksums  {"source_uri", "destination_bucket", "output_file_name"}
  POST /compare-checksums   {"json1"|"first_checksum_bucket"+"first_checksum_file", ...}
  POST /get-checksums       {"checksum_bucket", "checksum_file"}
  GET  /healthz

Errors are returned as application/problem+json. The server stops gracefully
on SIGINT or SIGTERM.`

	cmd := &cobra.Command{
		Use:   "serve [OPTIONS]",
		Short: "Run the HTTP API.",
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := ro.Config
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = o.Addr
			}
			o.FileBackendFlags.Apply(cmd, &cfg.Storage.File)

			svc, registry, err := newService(cfg)
			if err != nil {
				return err
			}
			defer registry.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(svc, cfg.Server, ro.Logger).ListenAndServe(ctx)
		},
	}

	o.AddFlags(cmd)
	return cmd
}
