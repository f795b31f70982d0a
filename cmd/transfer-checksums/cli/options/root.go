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

// Package options defines the command-line options and flags for the
// transfer-checksums CLI.
package options

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sampras343/transfer-checksums/pkg/config"
	"github.com/sampras343/transfer-checksums/pkg/logging"
	"github.com/sampras343/transfer-checksums/pkg/utils"
)

// RootOptions defines flags and options for the root CLI command.
// These options are available globally across all subcommands.
type RootOptions struct {
	// OutputFile redirects command output (manifests, reports) from stdout.
	OutputFile string
	// LogLevel sets the minimum log level (debug, info, warn, error, silent).
	LogLevel string
	// LogFormat sets the log output format (text, json).
	LogFormat string
	// Timeout bounds each command except serve.
	Timeout time.Duration
	// ConfigFile is a YAML configuration file.
	ConfigFile string

	// Config is loaded by Load before any subcommand runs.
	Config *config.Config
	// Logger is built from the effective log settings by Load.
	Logger logging.Logger
}

// DefaultTimeout specifies the default timeout duration for commands.
const DefaultTimeout = 10 * time.Minute

var outputExts = []string{"json", "csv", "txt"}

var _ FlagAdder = (*RootOptions)(nil)

// AddFlags adds root-level flags to the cobra command.
func (o *RootOptions) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&o.OutputFile, "output-file", "",
		"write command output to a file instead of stdout")
	_ = cmd.MarkPersistentFlagFilename("output-file", outputExts...)

	cmd.PersistentFlags().StringVar(&o.LogLevel, "log-level", "info",
		"set the minimum log level (debug, info, warn, error, silent)")

	cmd.PersistentFlags().StringVar(&o.LogFormat, "log-format", "text",
		"set the log output format (text, json)")

	cmd.PersistentFlags().DurationVarP(&o.Timeout, "timeout", "t", DefaultTimeout,
		"timeout for commands")

	cmd.PersistentFlags().StringVar(&o.ConfigFile, "config", "",
		"YAML configuration file (default $"+config.EnvConfigFile+")")
	_ = cmd.MarkPersistentFlagFilename("config", "yaml", "yml")
}

// Load reads the configuration, lets explicitly set log flags win over it
// and builds the logger. Logs go to stderr.
func (o *RootOptions) Load(cmd *cobra.Command) error {
	if err := utils.ValidateOptionalFile("config file", o.ConfigFile); err != nil {
		return err
	}
	cfg, err := config.Load(o.ConfigFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = o.LogLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = o.LogFormat
	}

	logger, err := logging.NewFromStrings(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return utils.NewChecksumError(utils.ErrTypeConfiguration, "invalid log settings", err)
	}

	o.Config = cfg
	o.Logger = logger
	return nil
}

// GetLogLevel returns the effective log level.
func (o *RootOptions) GetLogLevel() logging.LogLevel {
	if o.Config != nil {
		return logging.ParseLogLevel(o.Config.Log.Level)
	}
	return logging.ParseLogLevel(o.LogLevel)
}
