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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/bh2smith/duners/internal/version"
	"github.com/googleapis/gax-go/v2/internallog"
	"github.com/joho/godotenv"
)

// apiKeyEnv is the environment variable NewClientFromEnv reads.
const apiKeyEnv = "DUNE_API_KEY"

var xDuneClientHeader = fmt.Sprintf("duners/%s gl-go/%s", version.Repo, version.Go())

func setClientHeader(headers http.Header) {
	headers.Set("x-dune-client", xDuneClientHeader)
}

// Client may be used to execute Dune queries and retrieve their results.
// Its configuration is fixed at construction, so a Client is safe for
// concurrent use; each in-flight run has its own Execution handle.
type Client struct {
	service      service
	pollInterval time.Duration
	maxWait      time.Duration
	log          *slog.Logger
}

// NewClient constructs a Client. An API key is required; provide it with
// WithAPIKey, or use NewClientFromEnv to read it from the environment.
func NewClient(ctx context.Context, opts ...ClientOption) (*Client, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt.resolve(&s)
	}
	if s.apiKey == "" {
		return nil, errors.New("duners: an API key is required; use WithAPIKey or NewClientFromEnv")
	}
	if s.pollInterval <= 0 {
		return nil, errors.New("duners: poll interval must be positive")
	}
	if s.maxWait <= 0 {
		return nil, errors.New("duners: maximum wait must be positive")
	}
	log := internallog.New(s.logger)
	return &Client{
		service:      newRESTService(s.httpClient, s.endpoint, s.apiKey, log),
		pollInterval: s.pollInterval,
		maxWait:      s.maxWait,
		log:          log,
	}, nil
}

// NewClientFromEnv constructs a Client with the API key from the
// DUNE_API_KEY environment variable. A .env file in the working directory
// is loaded first if present, so local setups match the hosted one.
func NewClientFromEnv(ctx context.Context, opts ...ClientOption) (*Client, error) {
	_ = godotenv.Load()
	key := os.Getenv(apiKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("duners: environment variable %s is not set", apiKeyEnv)
	}
	return NewClient(ctx, append([]ClientOption{WithAPIKey(key)}, opts...)...)
}

// Execute starts a run of the given query and returns its handle.
func (c *Client) Execute(ctx context.Context, q *Query) (*Execution, error) {
	if q == nil || q.ID <= 0 {
		return nil, errors.New("duners: a positive query ID is required")
	}
	info, err := c.service.executeQuery(ctx, q)
	if err != nil {
		return nil, err
	}
	c.log.DebugContext(ctx, "execution started",
		"query", q.ID, "execution", info.ExecutionID, "state", info.State)
	return &Execution{
		c:          c,
		id:         info.ExecutionID,
		queryID:    q.ID,
		maxResults: q.MaxResults,
	}, nil
}

// Refresh is the convenience path: it executes the query, polls status at
// the client's poll interval until the run reaches a terminal state, then
// returns an iterator over the result rows. If the run ends failed,
// cancelled or expired, Refresh returns *ExecutionError and no rows; if
// the maximum wait elapses first, it returns ErrWaitTimeout.
func (c *Client) Refresh(ctx context.Context, q *Query) (*RowIterator, error) {
	e, err := c.Execute(ctx, q)
	if err != nil {
		return nil, err
	}
	status, err := e.Wait(ctx)
	if err != nil {
		return nil, err
	}
	if status.State != Completed {
		return nil, &ExecutionError{ExecutionID: e.id, QueryID: e.queryID, State: status.State}
	}
	return e.Results(ctx)
}

// Close closes any resources held by the client.
// Close should be called when the client is no longer needed.
// It need not be called at program exit.
func (c *Client) Close() error {
	return nil
}
