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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bh2smith/duners/internal/trace"
)

// service provides an internal abstraction to isolate the upstream HTTP
// API; the rest of this package uses this interface instead. The single
// real implementation, *restService, contains all the knowledge of the
// wire contract. Tests substitute fakes.
type service interface {
	executeQuery(ctx context.Context, q *Query) (*executionInfo, error)
	executionStatus(ctx context.Context, executionID string) (*Status, error)
	executionResults(ctx context.Context, executionID string, limit, offset int64) (*resultsPage, error)
	cancelExecution(ctx context.Context, executionID string) (bool, error)
}

// executionInfo is the upstream acknowledgement of a freshly started run.
type executionInfo struct {
	ExecutionID string `json:"execution_id"`
	State       string `json:"state"`
}

// Wire shapes below mirror the upstream JSON contract exactly.

type executeRequest struct {
	QueryParameters map[string]string `json:"query_parameters"`
	Performance     string            `json:"performance,omitempty"`
}

type statusResponse struct {
	ExecutionID   string          `json:"execution_id"`
	QueryID       int64           `json:"query_id"`
	State         string          `json:"state"`
	SubmittedAt   Time            `json:"submitted_at"`
	ExpiresAt     Time            `json:"expires_at"`
	StartedAt     Time            `json:"execution_started_at"`
	EndedAt       Time            `json:"execution_ended_at"`
	QueuePosition int64           `json:"queue_position"`
	Metadata      *resultMetadata `json:"result_metadata"`
}

type resultMetadata struct {
	ColumnNames         []string `json:"column_names"`
	ColumnTypes         []string `json:"column_types"`
	ResultSetBytes      int64    `json:"result_set_bytes"`
	TotalRowCount       int64    `json:"total_row_count"`
	DatapointCount      int64    `json:"datapoint_count"`
	PendingTimeMillis   int64    `json:"pending_time_millis"`
	ExecutionTimeMillis int64    `json:"execution_time_millis"`
}

type resultsResponse struct {
	ExecutionID string `json:"execution_id"`
	QueryID     int64  `json:"query_id"`
	State       string `json:"state"`
	NextOffset  *int64 `json:"next_offset"`
	NextURI     string `json:"next_uri"`
	Result      *struct {
		Rows     []json.RawMessage `json:"rows"`
		Metadata *resultMetadata   `json:"metadata"`
	} `json:"result"`
}

type cancelResponse struct {
	Success bool `json:"success"`
}

// errorResponse is the body the API returns for non-2xx statuses.
type errorResponse struct {
	Error string `json:"error"`
}

// resultsPage is one fetched page of rows plus enough context for the
// iterator to validate state and continue paging.
type resultsPage struct {
	state      State
	rows       []json.RawMessage
	metadata   *ResultMetadata
	nextOffset int64 // -1 when there are no more pages
}

type restService struct {
	hc       *http.Client
	endpoint string
	apiKey   string
	log      *slog.Logger
}

func newRESTService(hc *http.Client, endpoint, apiKey string, log *slog.Logger) *restService {
	return &restService{
		hc:       hc,
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		log:      log,
	}
}

// do sends one authenticated request and decodes a 2xx body into out.
// Non-2xx responses become *Error. Transport failures surface immediately;
// nothing at this layer retries.
func (s *restService) do(ctx context.Context, method, route string, query url.Values, body, out interface{}) error {
	u := s.endpoint + "/" + route
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("duners: encoding request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("duners: building request: %w", err)
	}
	req.Header.Set("x-dune-api-key", s.apiKey)
	setClientHeader(req.Header)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	s.log.DebugContext(ctx, "calling dune API", "method", method, "route", route)
	resp, err := s.hc.Do(req)
	if err != nil {
		return fmt.Errorf("duners: sending request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return upstreamError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("duners: decoding response: %w", err)
	}
	return nil
}

func upstreamError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var apiErr errorResponse
	if err := json.Unmarshal(b, &apiErr); err != nil || apiErr.Error == "" {
		apiErr.Error = strings.TrimSpace(string(b))
	}
	if apiErr.Error == "" {
		apiErr.Error = http.StatusText(resp.StatusCode)
	}
	return &Error{Code: resp.StatusCode, Message: apiErr.Error}
}

func (s *restService) executeQuery(ctx context.Context, q *Query) (*executionInfo, error) {
	ctx = trace.StartSpan(ctx, "duners.execute")
	params := make(map[string]string, len(q.Parameters))
	for _, p := range q.Parameters {
		params[p.Name] = p.Value
	}
	body := &executeRequest{QueryParameters: params, Performance: q.Performance}
	var res executionInfo
	err := s.do(ctx, http.MethodPost, fmt.Sprintf("query/%d/execute", q.ID), nil, body, &res)
	trace.EndSpan(ctx, err)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *restService) executionStatus(ctx context.Context, executionID string) (*Status, error) {
	ctx = trace.StartSpan(ctx, "duners.status")
	var res statusResponse
	err := s.do(ctx, http.MethodGet, fmt.Sprintf("execution/%s/status", url.PathEscape(executionID)), nil, nil, &res)
	trace.EndSpan(ctx, err)
	if err != nil {
		return nil, err
	}
	return statusFromWire(&res), nil
}

func (s *restService) executionResults(ctx context.Context, executionID string, limit, offset int64) (*resultsPage, error) {
	ctx = trace.StartSpan(ctx, "duners.results")
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.FormatInt(limit, 10))
	}
	if offset > 0 {
		q.Set("offset", strconv.FormatInt(offset, 10))
	}
	var res resultsResponse
	err := s.do(ctx, http.MethodGet, fmt.Sprintf("execution/%s/results", url.PathEscape(executionID)), q, nil, &res)
	trace.EndSpan(ctx, err)
	if err != nil {
		return nil, err
	}
	page := &resultsPage{state: stateFromWire[res.State], nextOffset: -1}
	if res.Result != nil {
		page.rows = res.Result.Rows
		page.metadata = metadataFromWire(res.Result.Metadata)
	}
	if res.NextOffset != nil {
		page.nextOffset = *res.NextOffset
	}
	return page, nil
}

func (s *restService) cancelExecution(ctx context.Context, executionID string) (bool, error) {
	ctx = trace.StartSpan(ctx, "duners.cancel")
	var res cancelResponse
	err := s.do(ctx, http.MethodPost, fmt.Sprintf("execution/%s/cancel", url.PathEscape(executionID)), nil, nil, &res)
	trace.EndSpan(ctx, err)
	if err != nil {
		return false, err
	}
	return res.Success, nil
}

func statusFromWire(r *statusResponse) *Status {
	return &Status{
		ExecutionID:   r.ExecutionID,
		QueryID:       r.QueryID,
		State:         stateFromWire[r.State],
		SubmittedAt:   r.SubmittedAt.Time,
		ExpiresAt:     r.ExpiresAt.Time,
		StartedAt:     r.StartedAt.Time,
		EndedAt:       r.EndedAt.Time,
		QueuePosition: r.QueuePosition,
		Metadata:      metadataFromWire(r.Metadata),
	}
}

func metadataFromWire(m *resultMetadata) *ResultMetadata {
	if m == nil {
		return nil
	}
	return &ResultMetadata{
		ColumnNames:    m.ColumnNames,
		ColumnTypes:    m.ColumnTypes,
		ResultSetBytes: m.ResultSetBytes,
		TotalRowCount:  m.TotalRowCount,
		DatapointCount: m.DatapointCount,
		PendingTime:    time.Duration(m.PendingTimeMillis) * time.Millisecond,
		ExecutionTime:  time.Duration(m.ExecutionTimeMillis) * time.Millisecond,
	}
}
