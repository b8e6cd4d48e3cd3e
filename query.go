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

import "time"

// The wire format of Date parameter values. Dune date precision is to the
// second.
const dateParamFormat = "2006-01-02 15:04:05"

// A Query identifies a saved Dune query to execute, along with its
// parameters and execution options.
type Query struct {
	// ID is the numeric query identifier, found at the end of a Dune query
	// URL such as https://dune.com/queries/1215383.
	ID int64

	// Parameters holds the named parameters the query declares, if any.
	Parameters []Parameter

	// MaxResults caps the number of rows fetched per results page. Zero
	// means the server default. It can also be adjusted per iterator via
	// PageInfo().MaxSize.
	MaxResults int64

	// Performance selects the execution engine tier, "medium" or "large".
	// Empty means the account default.
	Performance string
}

// A Parameter is one named query parameter. Dune distinguishes text,
// number, enum and date parameters, but all values travel to upstream as
// strings; use the constructors to get the formatting right.
type Parameter struct {
	Name  string
	Value string
}

// TextParameter returns a text (string) parameter. Used for transaction
// hashes, addresses and the like.
func TextParameter(name, value string) Parameter {
	return Parameter{Name: name, Value: value}
}

// NumberParameter returns a numeric parameter. The value is passed through
// verbatim so callers control precision.
func NumberParameter(name, value string) Parameter {
	return Parameter{Name: name, Value: value}
}

// EnumParameter returns a list (dropdown) parameter.
func EnumParameter(name, value string) Parameter {
	return Parameter{Name: name, Value: value}
}

// DateParameter returns a date parameter. The time is rendered in UTC at
// second precision, the form Dune expects.
func DateParameter(name string, t time.Time) Parameter {
	return Parameter{Name: name, Value: t.UTC().Format(dateParamFormat)}
}
