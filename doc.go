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

/*
Package duners provides a client for the Dune Analytics API.

See https://dune.com/docs/api/ for a description of the upstream service.

# Creating a Client

All requests authenticate with an API key, sent in the x-dune-api-key
header:

	client, err := duners.NewClient(ctx, duners.WithAPIKey(key))
	if err != nil {
		// TODO: Handle error.
	}

NewClientFromEnv reads the key from the DUNE_API_KEY environment variable
instead, loading a .env file first if one is present.

# Refreshing a Query

Refresh executes a saved query, polls until the run finishes and returns
an iterator over its rows. Declare a struct matching the query's result
columns and tag its fields with the column names:

	type row struct {
		TextField   string        `json:"text_field"`
		NumberField duners.Number `json:"number_field"`
		DateField   duners.Time   `json:"date_field"`
	}

	it, err := client.Refresh(ctx, &duners.Query{ID: 1215383})
	if err != nil {
		// TODO: Handle error.
	}
	for {
		var r row
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			// TODO: Handle error.
		}
		fmt.Println(r.TextField)
	}

Number and Time absorb the API's habit of returning numbers and
timestamps as strings. A column that is missing, null, or unparseable for
a declared field surfaces as *DecodeError rather than a zero value.

# Driving the Steps Yourself

Execute, Status, Wait, Results and Cancel expose the individual steps
Refresh composes, for callers that want to detach from a running
execution or attach to one started elsewhere (see ExecutionFromID).

# Errors

Upstream rejections are *Error values; errors.Is(err,
duners.ErrUnauthorized) identifies a bad key. A run that finishes
unsuccessfully is *ExecutionError, an expired wait is ErrWaitTimeout, and
results requested before completion are ErrNotReady. Transport failures
are returned as wrapped request errors and are never retried; only status
polling repeats requests, at a fixed interval.
*/
package duners // import "github.com/bh2smith/duners"
