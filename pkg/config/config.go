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

// Package config loads transfer-checksums configuration.
//
// Values come from, in increasing precedence: built-in defaults, a YAML file
// named by --config or TRANSFER_CHECKSUMS_CONFIG, TRANSFER_CHECKSUMS_*
// environment variables, and command-line flags applied by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	hashengines "github.com/sampras343/transfer-checksums/pkg/hashing/engines"
	_ "github.com/sampras343/transfer-checksums/pkg/hashing/engines/memory" // registers md5, sha256, blake2b
	"github.com/sampras343/transfer-checksums/pkg/location"
	"github.com/sampras343/transfer-checksums/pkg/logging"
	"github.com/sampras343/transfer-checksums/pkg/manifest"
	"github.com/sampras343/transfer-checksums/pkg/utils"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TRANSFER_CHECKSUMS_"

// EnvConfigFile names the config file when --config is not given.
const EnvConfigFile = EnvPrefix + "CONFIG"

// Config is the full configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Manifest ManifestConfig `yaml:"manifest"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error, silent.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// ServerConfig configures "serve".
type ServerConfig struct {
	Addr string `yaml:"addr"`

	// RequestTimeout bounds each request, including listing and writing.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// RateLimit is requests per second across all clients; 0 disables it.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type StorageConfig struct {
	// DefaultScheme is used for bare container names.
	DefaultScheme string `yaml:"default_scheme"`

	GCS  GCSConfig  `yaml:"gcs"`
	S3   S3Config   `yaml:"s3"`
	File FileConfig `yaml:"file"`
}

type GCSConfig struct {
	// Endpoint overrides the API endpoint, e.g. for an emulator.
	Endpoint string `yaml:"endpoint"`
	// Anonymous disables credentials lookup.
	Anonymous bool `yaml:"anonymous"`
}

type S3Config struct {
	Region string `yaml:"region"`
	// Endpoint targets S3-compatible stores such as MinIO.
	Endpoint     string `yaml:"endpoint"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// FileConfig configures the local directory backend.
type FileConfig struct {
	// Root is the directory containers live under.
	Root           string   `yaml:"root"`
	Algorithm      string   `yaml:"algorithm"`
	ChunkSize      int      `yaml:"chunk_size"`
	AllowSymlinks  bool     `yaml:"allow_symlinks"`
	IgnoreGitPaths bool     `yaml:"ignore_git_paths"`
	IgnoredPaths   []string `yaml:"ignored_paths"`
}

type ManifestConfig struct {
	// Duplicates is reject or warn.
	Duplicates string `yaml:"duplicates"`
	// DigestSize is the expected decoded length of backend (md5) digests;
	// 0 skips the check. The file backend checks against its own algorithm.
	DigestSize int `yaml:"digest_size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Server: ServerConfig{
			Addr:            ":8080",
			RequestTimeout:  5 * time.Minute,
			RateLimit:       10,
			RateBurst:       20,
			MaxBodyBytes:    32 << 20,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			DefaultScheme: location.SchemeGCS,
			File: FileConfig{
				Root:      ".",
				Algorithm: utils.DefaultDigestAlgorithm,
				ChunkSize: 8192,
			},
		},
		Manifest: ManifestConfig{
			Duplicates: manifest.DuplicateReject.String(),
			DigestSize: utils.MD5Size,
		},
	}
}

// Load reads path (or the file named by TRANSFER_CHECKSUMS_CONFIG when path
// is empty) over the defaults, applies environment overrides and validates.
// No file at all is fine; a named file that does not exist is not.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, utils.NewChecksumErrorWithPath(utils.ErrTypeConfiguration, path, "reading config file", err)
		}
		if err := cfg.decode(bytes.NewReader(data)); err != nil {
			return nil, utils.NewChecksumErrorWithPath(utils.ErrTypeConfiguration, path, "parsing config file", err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates, without consulting
// the environment.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(bytes.NewReader(data)); err != nil {
		return nil, utils.NewChecksumError(utils.ErrTypeConfiguration, "parsing config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides fields from TRANSFER_CHECKSUMS_* variables. AWS_REGION
// fills the S3 region when nothing else set it.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	var errs []error
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(EnvPrefix + key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(EnvPrefix + key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}

	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("ADDR", &c.Server.Addr)
	duration("REQUEST_TIMEOUT", &c.Server.RequestTimeout)
	if v, ok := lookup(EnvPrefix + "RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sRATE_LIMIT: %w", EnvPrefix, err))
		} else {
			c.Server.RateLimit = f
		}
	}
	integer("RATE_BURST", &c.Server.RateBurst)
	str("DEFAULT_SCHEME", &c.Storage.DefaultScheme)
	str("GCS_ENDPOINT", &c.Storage.GCS.Endpoint)
	boolean("GCS_ANONYMOUS", &c.Storage.GCS.Anonymous)
	str("S3_REGION", &c.Storage.S3.Region)
	str("S3_ENDPOINT", &c.Storage.S3.Endpoint)
	boolean("S3_USE_PATH_STYLE", &c.Storage.S3.UsePathStyle)
	str("FILE_ROOT", &c.Storage.File.Root)
	str("FILE_ALGORITHM", &c.Storage.File.Algorithm)
	str("DUPLICATES", &c.Manifest.Duplicates)
	integer("DIGEST_SIZE", &c.Manifest.DigestSize)

	if c.Storage.S3.Region == "" {
		if v, ok := lookup("AWS_REGION"); ok {
			c.Storage.S3.Region = v
		}
	}

	if len(errs) > 0 {
		return utils.NewChecksumError(utils.ErrTypeConfiguration, "invalid environment override", errors.Join(errs...))
	}
	return nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var problems []string

	if _, err := logging.LookupLogLevel(c.Log.Level); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := logging.LookupLogFormat(c.Log.Format); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Server.RequestTimeout < 0 {
		problems = append(problems, "server.request_timeout must not be negative")
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		problems = append(problems, "server rate limit settings must not be negative")
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst == 0 {
		problems = append(problems, "server.rate_burst must be positive when rate_limit is set")
	}
	if c.Server.MaxBodyBytes <= 0 {
		problems = append(problems, "server.max_body_bytes must be positive")
	}
	if !location.IsKnownScheme(c.Storage.DefaultScheme) {
		problems = append(problems, fmt.Sprintf("storage.default_scheme %q is not one of %v", c.Storage.DefaultScheme, location.Schemes()))
	}
	if !hashengines.IsSupported(c.Storage.File.Algorithm) {
		problems = append(problems, fmt.Sprintf("storage.file.algorithm %q is not one of %v", c.Storage.File.Algorithm, hashengines.SupportedAlgorithms()))
	}
	if c.Storage.File.ChunkSize < 0 {
		problems = append(problems, "storage.file.chunk_size must not be negative")
	}
	if _, err := manifest.ParseDuplicatePolicy(c.Manifest.Duplicates); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Manifest.DigestSize < 0 {
		problems = append(problems, "manifest.digest_size must not be negative")
	}

	if len(problems) > 0 {
		return utils.NewChecksumError(utils.ErrTypeConfiguration, "invalid configuration: "+strings.Join(problems, "; "), nil)
	}
	return nil
}

// DuplicatePolicy returns the validated manifest duplicate policy.
func (c *Config) DuplicatePolicy() manifest.DuplicatePolicy {
	p, _ := manifest.ParseDuplicatePolicy(c.Manifest.Duplicates)
	return p
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
