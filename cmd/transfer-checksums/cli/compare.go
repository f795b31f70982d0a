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
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sampras343/transfer-checksums/cmd/transfer-checksums/cli/options"
	"github.com/sampras343/transfer-checksums/pkg/checksums"
)

// DifferencesError reports a comparison that found differences. The report
// has already been printed; the process exits with status 1.
type DifferencesError struct {
	Response *checksums.CompareResponse
}

func (e *DifferencesError) Error() string {
	r := e.Response
	return fmt.Sprintf("manifests differ: %d mismatching, %d only in first, %d only in second",
		len(r.Mismatching), len(r.OnlyInFirst), len(r.OnlyInSecond))
}

func (e *DifferencesError) ExitCode() int { return 1 }

// Compare creates the compare command.
func Compare() *cobra.Command {
	o := options.NewCompareOptions()

	long := `Compare two checksum manifests by filename.

Each side is a stored manifest (--first-ref / --second-ref), a local manifest
file (--first-file / --second-file) or a local md5sum style listing
(--first-checksum-list / --second-checksum-list). The report lists matching,
mismatching and one-sided filenames as JSON. The command exits with status 1
when the manifests differ.

Examples:
  transfer-checksums compare --first-ref reports/source.csv --second-ref gs://dest-reports/copy.csv
  transfer-checksums compare --first-ref reports/run1.csv --second-checksum-list ./MD5SUMS`

	cmd := &cobra.Command{
		Use:   "compare [OPTIONS]",
		Short: "Compare two checksum manifests.",
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := o.Request()
			if err != nil {
				return err
			}

			svc, registry, err := newService(ro.Config)
			if err != nil {
				return err
			}
			defer registry.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), ro.Timeout)
			defer cancel()

			resp, err := svc.Compare(ctx, req)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			if !resp.Consistent() {
				return &DifferencesError{Response: resp}
			}
			return nil
		},
	}

	o.AddFlags(cmd)
	return cmd
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
