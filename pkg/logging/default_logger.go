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

package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var _ Logger = (*DefaultLogger)(nil)

// LoggerOptions configures a DefaultLogger.
type LoggerOptions struct {
	Level LogLevel
	// Format is ignored when Formatter is set.
	Format    LogFormat
	Formatter Formatter
	// Output defaults to os.Stderr so stdout stays free for manifests and
	// reconciliation reports.
	Output io.Writer
	// TimeFormat and ShowLevel only apply to the derived text formatter.
	TimeFormat string
	ShowLevel  bool
}

// DefaultLoggerOptions returns the options used by NewLogger(false).
func DefaultLoggerOptions() LoggerOptions {
	return LoggerOptions{
		Level:  LevelInfo,
		Format: FormatText,
		Output: os.Stderr,
	}
}

// DefaultLogger writes leveled entries through a Formatter. Child loggers
// created with WithField share the parent's writer lock.
type DefaultLogger struct {
	mu        *sync.Mutex
	level     LogLevel
	formatter Formatter
	out       io.Writer
	fields    map[string]interface{}
}

// NewLogger returns a text logger on stderr at debug level when verbose is
// set and info level otherwise.
func NewLogger(verbose bool) *DefaultLogger {
	opts := DefaultLoggerOptions()
	if verbose {
		opts.Level = LevelDebug
	}
	return NewLoggerWithOptions(opts)
}

// NewLoggerWithOptions builds a DefaultLogger from opts.
func NewLoggerWithOptions(opts LoggerOptions) *DefaultLogger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	formatter := opts.Formatter
	if formatter == nil {
		switch opts.Format {
		case FormatJSON:
			formatter = &JSONFormatter{TimeFormat: opts.TimeFormat}
		default:
			formatter = &TextFormatter{TimeFormat: opts.TimeFormat, ShowLevel: opts.ShowLevel}
		}
	}

	return &DefaultLogger{
		mu:        &sync.Mutex{},
		level:     opts.Level,
		formatter: formatter,
		out:       out,
	}
}

// NewFromStrings builds a logger from level and format names as they appear
// in flags and config files. Level and format names are validated strictly.
func NewFromStrings(level, format string, out io.Writer) (*DefaultLogger, error) {
	lvl, err := LookupLogLevel(level)
	if err != nil {
		return nil, err
	}
	fmtt, err := LookupLogFormat(format)
	if err != nil {
		return nil, err
	}
	return NewLoggerWithOptions(LoggerOptions{
		Level:      lvl,
		Format:     fmtt,
		Output:     out,
		ShowLevel:  true,
		TimeFormat: time.RFC3339,
	}), nil
}

func (l *DefaultLogger) WithFields(fields map[string]interface{}) Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	return &DefaultLogger{
		mu:        l.mu,
		level:     l.level,
		formatter: l.formatter,
		out:       l.out,
		fields:    merged,
	}
}

func (l *DefaultLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// SetLevel changes the minimum level of this logger only.
func (l *DefaultLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *DefaultLogger) GetLevel() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetOutput redirects this logger.
func (l *DefaultLogger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

func (l *DefaultLogger) log(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level || level >= LevelSilent {
		return
	}

	data, err := l.formatter.Format(LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   fmt.Sprintf(format, args...),
		Fields:    l.fields,
	})
	if err != nil {
		fmt.Fprintf(l.out, "logging error: %v\n", err)
		return
	}
	_, _ = l.out.Write(data)
}

func (l *DefaultLogger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

func (l *DefaultLogger) Debugln(msg string) { l.log(LevelDebug, "%s", msg) }

func (l *DefaultLogger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

func (l *DefaultLogger) Infoln(msg string) { l.log(LevelInfo, "%s", msg) }

func (l *DefaultLogger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

func (l *DefaultLogger) Warnln(msg string) { l.log(LevelWarn, "%s", msg) }

func (l *DefaultLogger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

func (l *DefaultLogger) Errorln(msg string) { l.log(LevelError, "%s", msg) }

func (l *DefaultLogger) Silent() bool {
	return l.GetLevel() > LevelDebug
}

// IsLevelEnabled reports whether level would produce output.
func (l *DefaultLogger) IsLevelEnabled(level LogLevel) bool {
	lvl := l.GetLevel()
	return level >= lvl && level < LevelSilent
}
