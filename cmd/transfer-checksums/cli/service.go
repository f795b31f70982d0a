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
	"github.com/sampras343/transfer-checksums/pkg/checksums"
	"github.com/sampras343/transfer-checksums/pkg/config"
	"github.com/sampras343/transfer-checksums/pkg/storage"
)

// newService validates cfg and wires the store registry and service for one
// command. The caller closes the registry.
func newService(cfg *config.Config) (*checksums.Service, *storage.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	registry := storage.NewRegistryFromConfig(cfg, ro.Logger)
	svc := checksums.NewService(registry, checksums.Options{
		Logger:     ro.Logger,
		Duplicates: cfg.DuplicatePolicy(),
		DigestSize: cfg.Manifest.DigestSize,
	})
	return svc, registry, nil
}
