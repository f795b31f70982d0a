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

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/sampras343/transfer-checksums/pkg/config"
	"github.com/sampras343/transfer-checksums/pkg/interfaces"
	"github.com/sampras343/transfer-checksums/pkg/location"
	"github.com/sampras343/transfer-checksums/pkg/logging"
	"github.com/sampras343/transfer-checksums/pkg/utils"
)

// Factory creates a store on first use.
type Factory func(ctx context.Context) (interfaces.ObjectStore, error)

type lazyStore struct {
	once    sync.Once
	factory Factory
	store   interfaces.ObjectStore
	err     error
}

func (l *lazyStore) get(ctx context.Context) (interfaces.ObjectStore, error) {
	l.once.Do(func() {
		// clients outlive the request that first needed them
		l.store, l.err = l.factory(context.WithoutCancel(ctx))
	})
	return l.store, l.err
}

// Registry maps location schemes to stores. Cloud clients are created at most
// once, the first time a location with their scheme is used.
type Registry struct {
	mu            sync.RWMutex
	stores        map[string]*lazyStore
	defaultScheme string
	logger        logging.Logger
}

// NewRegistry returns an empty registry. Bare container names resolve to
// defaultScheme.
func NewRegistry(defaultScheme string, logger logging.Logger) *Registry {
	return &Registry{
		stores:        make(map[string]*lazyStore),
		defaultScheme: defaultScheme,
		logger:        logging.EnsureLogger(logger),
	}
}

// NewRegistryFromConfig registers the GCS, S3, file and memory backends
// described by cfg. Nothing is dialled until a store is first used.
func NewRegistryFromConfig(cfg *config.Config, logger logging.Logger) *Registry {
	r := NewRegistry(cfg.Storage.DefaultScheme, logger)

	gcsCfg, s3Cfg, fileCfg := cfg.Storage.GCS, cfg.Storage.S3, cfg.Storage.File
	r.RegisterFactory(location.SchemeGCS, func(ctx context.Context) (interfaces.ObjectStore, error) {
		return NewGCSStore(ctx, gcsCfg)
	})
	r.RegisterFactory(location.SchemeS3, func(ctx context.Context) (interfaces.ObjectStore, error) {
		return NewS3Store(ctx, s3Cfg)
	})
	r.RegisterFactory(location.SchemeFile, func(context.Context) (interfaces.ObjectStore, error) {
		return NewFileStoreFromConfig(fileCfg)
	})
	r.Register(location.SchemeMemory, NewMemoryStore())
	return r
}

// Register binds an already constructed store to scheme, replacing any
// previous binding.
func (r *Registry) Register(scheme string, store interfaces.ObjectStore) {
	l := &lazyStore{store: store}
	l.once.Do(func() {})
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[scheme] = l
}

// RegisterFactory binds a lazily constructed store to scheme.
func (r *Registry) RegisterFactory(scheme string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[scheme] = &lazyStore{factory: factory}
}

// DefaultScheme is the scheme bare container names resolve to.
func (r *Registry) DefaultScheme() string {
	return r.defaultScheme
}

// Schemes returns the registered schemes, sorted.
func (r *Registry) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.stores))
	for s := range r.stores {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Store returns the store for scheme, constructing it if needed.
func (r *Registry) Store(ctx context.Context, scheme string) (interfaces.ObjectStore, error) {
	r.mu.RLock()
	l, ok := r.stores[scheme]
	r.mu.RUnlock()
	if !ok {
		return nil, utils.NewChecksumError(utils.ErrTypeConfiguration,
			fmt.Sprintf("no object store configured for scheme %q", scheme), nil)
	}

	store, err := l.get(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialising %s store: %w", scheme, err)
	}
	r.logger.WithField("scheme", scheme).Debugln("using object store")
	return store, nil
}

// Resolve parses ref (a location URI or a bare container name) and returns
// it with its store.
func (r *Registry) Resolve(ctx context.Context, ref string) (location.Location, interfaces.ObjectStore, error) {
	loc, err := location.ParseWithDefault(ref, r.defaultScheme)
	if err != nil {
		return location.Location{}, nil, err
	}
	store, err := r.Store(ctx, loc.Scheme)
	if err != nil {
		return location.Location{}, nil, err
	}
	return loc, store, nil
}

// Close closes every constructed store that holds resources.
func (r *Registry) Close() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs []error
	for _, l := range r.stores {
		if l.store == nil {
			continue
		}
		if c, ok := l.store.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
