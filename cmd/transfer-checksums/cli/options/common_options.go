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

	"github.com/sampras343/transfer-checksums/pkg/config"
)

// FlagAdder is implemented by any flag group that can register itself to a cobra command.
type FlagAdder interface {
	AddFlags(cmd *cobra.Command)
}

// FileBackendFlags control how file:// locations are listed and hashed.
// They only override the configuration when given.
type FileBackendFlags struct {
	// Root is the directory that file:// containers live under.
	Root string
	// Algorithm hashes local files.
	Algorithm string
	// IgnorePaths lists object names or directories to leave out.
	IgnorePaths []string
	// IgnoreGitPaths skips .git directories and git metadata files.
	IgnoreGitPaths bool
	// AllowSymlinks follows symbolic links to regular files.
	AllowSymlinks bool
}

func (o *FileBackendFlags) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Root, "file-root", "", "Directory that file:// containers live under.")
	_ = cmd.MarkFlagDirname("file-root")
	cmd.Flags().StringVar(&o.Algorithm, "file-algorithm", "", "Hash algorithm for file:// objects (md5, sha256, blake2b).")
	cmd.Flags().StringSliceVar(&o.IgnorePaths, "ignore-paths", nil, "Object names to ignore when listing file:// locations.")
	cmd.Flags().BoolVar(&o.IgnoreGitPaths, "ignore-git-paths", false, "Ignore git-related files when listing file:// locations.")
	cmd.Flags().BoolVar(&o.AllowSymlinks, "allow-symlinks", false, "Follow symlinks when listing file:// locations.")
}

// Apply copies the flags that were set onto cfg.
func (o *FileBackendFlags) Apply(cmd *cobra.Command, cfg *config.FileConfig) {
	flags := cmd.Flags()
	if flags.Changed("file-root") {
		cfg.Root = o.Root
	}
	if flags.Changed("file-algorithm") {
		cfg.Algorithm = o.Algorithm
	}
	if flags.Changed("ignore-paths") {
		cfg.IgnoredPaths = o.IgnorePaths
	}
	if flags.Changed("ignore-git-paths") {
		cfg.IgnoreGitPaths = o.IgnoreGitPaths
	}
	if flags.Changed("allow-symlinks") {
		cfg.AllowSymlinks = o.AllowSymlinks
	}
}

// ManifestFlags override manifest building settings.
type ManifestFlags struct {
	// Duplicates is reject or warn.
	Duplicates string
	// DigestSize is the expected decoded digest length; 0 skips the check.
	DigestSize int
}

func (o *ManifestFlags) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Duplicates, "duplicates", "", "What to do when two objects map to the same filename (reject, warn).")
	cmd.Flags().IntVar(&o.DigestSize, "digest-size", 0, "Expected digest length in bytes; 0 disables the check.")
}

func (o *ManifestFlags) Apply(cmd *cobra.Command, cfg *config.ManifestConfig) {
	if cmd.Flags().Changed("duplicates") {
		cfg.Duplicates = o.Duplicates
	}
	if cmd.Flags().Changed("digest-size") {
		cfg.DigestSize = o.DigestSize
	}
}

// AddAllFlags is a helper function to register multiple flag groups at once.
func AddAllFlags(cmd *cobra.Command, flagGroups ...FlagAdder) {
	for _, fg := range flagGroups {
		fg.AddFlags(cmd)
	}
}
