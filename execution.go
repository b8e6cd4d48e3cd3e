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
	"time"

	"github.com/bh2smith/duners/internal"
	"github.com/bh2smith/duners/internal/trace"
)

// An Execution represents one run of a query which has been submitted to
// Dune for processing.
type Execution struct {
	c       *Client
	id      string
	queryID int64

	// maxResults carries the page size from the originating Query.
	maxResults int64
}

// ExecutionFromID creates an Execution which refers to an existing run.
// The run need not have been started by this client.
func (c *Client) ExecutionFromID(id string) *Execution {
	return &Execution{c: c, id: id}
}

// ID returns the upstream execution identifier.
func (e *Execution) ID() string {
	return e.id
}

// State is one of a sequence of states an execution progresses through as
// it is processed.
type State int

const (
	StateUnspecified State = iota
	Pending
	Executing
	Completed
	Failed
	Cancelled
	Expired
)

// Terminal reports whether no further state transitions occur after s.
func (s State) Terminal() bool {
	switch s {
	case Completed, Failed, Cancelled, Expired:
		return true
	}
	return false
}

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Executing:
		return "executing"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	case Expired:
		return "expired"
	}
	return "unspecified"
}

var stateFromWire = map[string]State{
	"QUERY_STATE_PENDING":   Pending,
	"QUERY_STATE_EXECUTING": Executing,
	"QUERY_STATE_COMPLETED": Completed,
	"QUERY_STATE_FAILED":    Failed,
	"QUERY_STATE_CANCELLED": Cancelled,
	"QUERY_STATE_EXPIRED":   Expired,
}

// Status describes the progress of an execution as reported by upstream.
type Status struct {
	ExecutionID string
	QueryID     int64
	State       State

	SubmittedAt time.Time
	// ExpiresAt is when the result set will be deleted upstream.
	ExpiresAt time.Time
	StartedAt time.Time
	EndedAt   time.Time

	// QueuePosition is the run's place in the execution queue while State
	// is Pending.
	QueuePosition int64

	// Metadata summarizes the result set once State is Completed.
	Metadata *ResultMetadata
}

// Status fetches the current state of the execution.
func (e *Execution) Status(ctx context.Context) (*Status, error) {
	return e.c.service.executionStatus(ctx, e.id)
}

// Cancel requests that the execution be cancelled. It returns without
// waiting for cancellation to take effect; follow up with Status to check
// whether the run has terminated.
func (e *Execution) Cancel(ctx context.Context) error {
	ok, err := e.c.service.cancelExecution(ctx, e.id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("duners: upstream declined to cancel execution %s", e.id)
	}
	return nil
}

// Wait polls the execution status at the client's poll interval until the
// run reaches a terminal state or the maximum wait elapses. It returns the
// final status; inspect Status.State to distinguish Completed from Failed,
// Cancelled or Expired. If the maximum wait elapses first, Wait returns
// ErrWaitTimeout. Cancelling ctx aborts the loop without sending further
// requests.
//
// Only status checks repeat here. A failed status request surfaces
// immediately, as do failures of execute and results calls elsewhere.
func (e *Execution) Wait(ctx context.Context) (*Status, error) {
	ctx, cancel := context.WithTimeout(ctx, e.c.maxWait)
	defer cancel()
	var status *Status
	err := internal.Poll(ctx, e.c.pollInterval, func() (stop bool, err error) {
		status, err = e.Status(ctx)
		if err != nil {
			return true, err
		}
		if !status.State.Terminal() {
			e.c.log.DebugContext(ctx, "waiting for execution to complete",
				"execution", e.id, "state", status.State.String())
			trace.TracePrintf(ctx, map[string]interface{}{"state": status.State.String()},
				"waiting for execution %s", e.id)
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w (waited %v)", ErrWaitTimeout, e.c.maxWait)
		}
		return nil, err
	}
	return status, nil
}
