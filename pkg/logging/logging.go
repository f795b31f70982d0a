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

// Package logging is the leveled, structured logger used across
// transfer-checksums. Commands and the HTTP server build one DefaultLogger at
// startup and hand it down; request handlers derive child loggers carrying
// request-scoped fields and stash them on the context.
package logging

import (
	"context"
	"fmt"
	"strings"
)

// LogLevel is the severity of a log message.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	// LevelSilent disables all output.
	LevelSilent
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelSilent:
		return "silent"
	default:
		return "unknown"
	}
}

// ParseLogLevel parses a level name. Unknown names map to LevelInfo.
func ParseLogLevel(s string) LogLevel {
	l, err := LookupLogLevel(s)
	if err != nil {
		return LevelInfo
	}
	return l
}

// LookupLogLevel is the strict form of ParseLogLevel used when validating
// configuration.
func LookupLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "silent", "none", "off":
		return LevelSilent, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// LogFormat selects how entries are rendered.
type LogFormat int

const (
	FormatText LogFormat = iota
	FormatJSON
)

func (f LogFormat) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// ParseLogFormat parses a format name. Unknown names map to FormatText.
func ParseLogFormat(s string) LogFormat {
	f, err := LookupLogFormat(s)
	if err != nil {
		return FormatText
	}
	return f
}

// LookupLogFormat is the strict form of ParseLogFormat.
func LookupLogFormat(s string) (LogFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "", "text", "plain":
		return FormatText, nil
	default:
		return FormatText, fmt.Errorf("unknown log format %q", s)
	}
}

// Logger is the logging surface the rest of the module depends on.
type Logger interface {
	Debug(format string, args ...interface{})
	Debugln(msg string)
	Info(format string, args ...interface{})
	Infoln(msg string)
	Warn(format string, args ...interface{})
	Warnln(msg string)
	Error(format string, args ...interface{})
	Errorln(msg string)

	GetLevel() LogLevel
	// Silent reports whether debug output is suppressed.
	Silent() bool

	// WithField returns a child logger with key=value attached to every entry.
	WithField(key string, value interface{}) Logger
	// WithFields is WithField for several pairs at once.
	WithFields(fields map[string]interface{}) Logger
}

// Default returns an info-level text logger on stderr.
func Default() Logger {
	return NewLogger(false)
}

// EnsureLogger returns l, or Default when l is nil.
func EnsureLogger(l Logger) Logger {
	if l == nil {
		return Default()
	}
	return l
}

type ctxKey struct{}

// NewContext returns a context carrying l.
func NewContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored by NewContext, falling back to
// fallback and then to Default.
func FromContext(ctx context.Context, fallback Logger) Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(Logger); ok && l != nil {
			return l
		}
	}
	return EnsureLogger(fallback)
}
