// Copyright 2023 The duners Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package duners

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized reports an invalid or missing API key. Upstream
	// errors carrying a 401 status match it via errors.Is.
	ErrUnauthorized = errors.New("duners: invalid or missing API key")

	// ErrWaitTimeout reports that an execution did not reach a terminal
	// state before the client's maximum wait elapsed.
	ErrWaitTimeout = errors.New("duners: timed out waiting for execution to finish")

	// ErrNotReady reports that results were requested while the execution
	// was still pending or executing.
	ErrNotReady = errors.New("duners: execution results are not ready")
)

// An Error is an error response from the Dune API. Known messages include
// "invalid API Key", "Query not found" and "The requested execution ID
// (ID: ...) is invalid.".
type Error struct {
	// Code is the HTTP status code of the response.
	Code int
	// Message is the error field of the response body, or the raw body if
	// it was not the usual JSON shape.
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("duners: upstream error (HTTP %d): %s", e.Code, e.Message)
}

// Is lets errors.Is match 401 responses against ErrUnauthorized.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Code == http.StatusUnauthorized
}

// An ExecutionError reports an execution that reached a terminal state
// other than Completed. Results are never available for such runs.
type ExecutionError struct {
	ExecutionID string
	QueryID     int64
	State       State
}

func (e *ExecutionError) Error() string {
	if e.QueryID == 0 {
		return fmt.Sprintf("duners: execution %s ended in state %s", e.ExecutionID, e.State)
	}
	return fmt.Sprintf("duners: execution %s of query %d ended in state %s", e.ExecutionID, e.QueryID, e.State)
}

// A DecodeError reports a row that could not be converted into the
// caller's type. Row is the zero-based index of the offending row within
// the result set.
type DecodeError struct {
	Row int
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("duners: decoding row %d: %v", e.Row, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
