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
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultEndpoint     = "https://api.dune.com/api/v1"
	defaultPollInterval = 5 * time.Second
	defaultMaxWait      = 20 * time.Minute
)

type settings struct {
	apiKey       string
	endpoint     string
	httpClient   *http.Client
	pollInterval time.Duration
	maxWait      time.Duration
	logger       *slog.Logger
}

func defaultSettings() settings {
	return settings{
		endpoint:     defaultEndpoint,
		httpClient:   http.DefaultClient,
		pollInterval: defaultPollInterval,
		maxWait:      defaultMaxWait,
	}
}

// ClientOption is used when constructing a Client.
type ClientOption interface {
	resolve(*settings)
}

// WithAPIKey returns a ClientOption that sets the API key used to
// authenticate every request.
func WithAPIKey(key string) ClientOption {
	return withAPIKey(key)
}

type withAPIKey string

func (w withAPIKey) resolve(s *settings) { s.apiKey = string(w) }

// WithEndpoint returns a ClientOption that overrides the default API
// endpoint. Useful for tests and proxies; the trailing slash is optional.
func WithEndpoint(url string) ClientOption {
	return withEndpoint(url)
}

type withEndpoint string

func (w withEndpoint) resolve(s *settings) { s.endpoint = string(w) }

// WithHTTPClient returns a ClientOption that specifies the HTTP client to
// use as the basis of communications.
func WithHTTPClient(client *http.Client) ClientOption {
	return withHTTPClient{client}
}

type withHTTPClient struct{ client *http.Client }

func (w withHTTPClient) resolve(s *settings) { s.httpClient = w.client }

// WithPollInterval returns a ClientOption that sets how often Wait and
// Refresh check execution status. The default is 5 seconds; polling much
// more frequently risks upstream rate limiting, especially when several
// queries run in parallel.
func WithPollInterval(d time.Duration) ClientOption {
	return withPollInterval(d)
}

type withPollInterval time.Duration

func (w withPollInterval) resolve(s *settings) { s.pollInterval = time.Duration(w) }

// WithMaxWait returns a ClientOption that bounds the total time Wait and
// Refresh spend polling before giving up with ErrWaitTimeout. The default
// is 20 minutes.
func WithMaxWait(d time.Duration) ClientOption {
	return withMaxWait(d)
}

type withMaxWait time.Duration

func (w withMaxWait) resolve(s *settings) { s.maxWait = time.Duration(w) }

// WithLogger returns a ClientOption that sets the logger used for debug
// output. Without it logging is disabled unless enabled by environment.
func WithLogger(l *slog.Logger) ClientOption {
	return withLogger{l}
}

type withLogger struct{ logger *slog.Logger }

func (w withLogger) resolve(s *settings) { s.logger = w.logger }
