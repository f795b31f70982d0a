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

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/sampras343/transfer-checksums/pkg/logging"
	"github.com/sampras343/transfer-checksums/pkg/utils"
)

const problemContentType = "application/problem+json"

// Problem is an RFC 7807 problem details body.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	// RequestID echoes the X-Request-ID response header.
	RequestID string `json:"request_id,omitempty"`
}

func (p *Problem) Error() string {
	return p.Title + ": " + p.Detail
}

// StatusFor maps an error to the HTTP status the service answers with.
func StatusFor(err error) int {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	switch utils.TypeOf(err) {
	case utils.ErrTypeInvalidLocation, utils.ErrTypeDuplicateEntry:
		return http.StatusBadRequest
	case utils.ErrTypeMalformedManifest, utils.ErrTypeDecoding:
		return http.StatusUnprocessableEntity
	case utils.ErrTypeMissingDigest:
		return http.StatusConflict
	case utils.ErrTypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func problemType(status int, err error) string {
	if status == http.StatusGatewayTimeout {
		return "urn:transfer-checksums:http:" + strconv.Itoa(status)
	}
	if t := utils.TypeOf(err); t != utils.ErrTypeUnknown {
		return "urn:transfer-checksums:error:" + strings.ToLower(t.String())
	}
	return "urn:transfer-checksums:http:" + strconv.Itoa(status)
}

// writeProblem writes a problem response for the request.
func writeProblem(w http.ResponseWriter, r *http.Request, status int, typ, detail string) {
	p := &Problem{
		Type:      typ,
		Title:     http.StatusText(status),
		Status:    status,
		Detail:    detail,
		Instance:  r.URL.Path,
		RequestID: w.Header().Get(RequestIDHeader),
	}
	w.Header().Set("Content-Type", problemContentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(p)
}

// writeError classifies err and writes it. Server errors are logged in full
// but the client only sees a generic detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	logger := logging.FromContext(r.Context(), nil).WithField("status", status)

	detail := err.Error()
	if status == http.StatusGatewayTimeout {
		logger.WithField("error", err).Error("request timed out")
		detail = "request timed out"
	} else if status >= http.StatusInternalServerError {
		logger.WithField("error", err).Error("request failed")
		detail = "an unexpected error occurred"
	} else {
		logger.WithField("error", err).Warn("request rejected")
	}
	writeProblem(w, r, status, problemType(status, err), detail)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
