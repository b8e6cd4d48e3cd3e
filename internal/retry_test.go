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

package internal

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPoll(t *testing.T) {
	ctx := context.Background()
	// Without a context deadline, poll runs until the function says not
	// to continue.
	n := 0
	endPoll := errors.New("end poll")
	err := poll(ctx, time.Second,
		func() (bool, error) {
			n++
			if n < 10 {
				return false, nil
			}
			return true, endPoll
		},
		func(context.Context, time.Duration) error { return nil })
	if got, want := err, endPoll; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if n != 10 {
		t.Errorf("n: got %d, want %d", n, 10)
	}

	// If the context has a deadline, sleep will return an error
	// and end the function.
	n = 0
	err = poll(ctx, time.Second,
		func() (bool, error) { return false, nil },
		func(context.Context, time.Duration) error {
			n++
			if n < 10 {
				return nil
			}
			return context.DeadlineExceeded
		})
	if err == nil {
		t.Error("got nil, want error")
	}
}

func TestPollFixedInterval(t *testing.T) {
	// Every pause uses the configured interval verbatim.
	var pauses []time.Duration
	n := 0
	err := poll(context.Background(), 42*time.Millisecond,
		func() (bool, error) {
			n++
			return n > 3, nil
		},
		func(_ context.Context, d time.Duration) error {
			pauses = append(pauses, d)
			return nil
		})
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if len(pauses) != 3 {
		t.Fatalf("pauses: got %d, want 3", len(pauses))
	}
	for i, p := range pauses {
		if p != 42*time.Millisecond {
			t.Errorf("pause %d: got %v, want 42ms", i, p)
		}
	}
}

func TestPollPreserveError(t *testing.T) {
	// Poll tries to preserve the type and other information from
	// the last error returned by the function.
	callErr := errors.New("not ready")
	err := poll(context.Background(), time.Second,
		func() (bool, error) {
			return false, callErr
		},
		func(context.Context, time.Duration) error {
			return context.DeadlineExceeded
		})
	if err == nil {
		t.Fatal("unexpectedly got nil error")
	}
	wantError := "poll failed with context deadline exceeded; last error: not ready"
	if g, w := err.Error(), wantError; g != w {
		t.Errorf("got error %q, want %q", g, w)
	}
	if !errors.Is(err, callErr) {
		t.Error("errors.Is does not match the call error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("errors.Is does not match the context error")
	}
}

func TestPollContextErrorPassthrough(t *testing.T) {
	// With no call error recorded, the context error is returned as is.
	err := poll(context.Background(), time.Second,
		func() (bool, error) { return false, nil },
		func(context.Context, time.Duration) error {
			return context.Canceled
		})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
