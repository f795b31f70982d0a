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

package tracing

import (
	"context"
	"errors"
	"testing"
)

type recordingSpan struct {
	attrs map[string]interface{}
	err   error
	ended bool
}

func (s *recordingSpan) SetAttribute(k string, v interface{}) { s.attrs[k] = v }
func (s *recordingSpan) RecordError(err error)                { s.err = err }
func (s *recordingSpan) End()                                 { s.ended = true }

type recordingTracer struct {
	names []string
	spans []*recordingSpan
}

func (r *recordingTracer) Start(ctx context.Context, name string) (context.Context, Span) {
	s := &recordingSpan{attrs: map[string]interface{}{}}
	r.names = append(r.names, name)
	r.spans = append(r.spans, s)
	return ctx, s
}

func TestRunNoop(t *testing.T) {
	SetTracer(nil)
	if Enabled() {
		t.Fatal("Enabled() = true with the no-op tracer")
	}

	called := false
	err := Run(context.Background(), SpanGenerate, nil, func(context.Context) error {
		called = true
		return nil
	})
	if err != nil || !called {
		t.Errorf("Run() = %v, called = %v", err, called)
	}
}

func TestRunRecordsSpan(t *testing.T) {
	rec := &recordingTracer{}
	SetTracer(rec)
	defer SetTracer(nil)

	boom := errors.New("boom")
	err := Run(context.Background(), SpanCompare, map[string]interface{}{"first": "gs://a"}, func(context.Context) error {
		return boom
	})

	if !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want boom", err)
	}
	if len(rec.spans) != 1 || rec.names[0] != SpanCompare {
		t.Fatalf("spans = %v", rec.names)
	}
	span := rec.spans[0]
	if !span.ended {
		t.Error("span not ended")
	}
	if span.attrs["first"] != "gs://a" {
		t.Errorf("attrs = %v", span.attrs)
	}
	if !errors.Is(span.err, boom) {
		t.Errorf("recorded error = %v", span.err)
	}
}

func TestGetTracerNeverNil(t *testing.T) {
	SetTracer(nil)
	if GetTracer() == nil {
		t.Error("GetTracer() returned nil")
	}
	ctx, span := Start(context.Background(), SpanGet)
	if ctx == nil || span == nil {
		t.Error("Start() returned nil")
	}
	span.End()
}
