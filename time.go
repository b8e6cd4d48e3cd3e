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
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp formats observed in Dune API responses. Execution timestamps
// (submitted_at and friends) carry a fractional second and a Z suffix;
// timestamp columns use a space separator; date columns omit the fraction.
var timeFormats = []string{
	"2006-01-02T15:04:05.999999999Z",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// ParseTime parses s in any of the timestamp formats the Dune API uses.
// All Dune timestamps are UTC.
func ParseTime(s string) (time.Time, error) {
	for _, f := range timeFormats {
		if t, err := time.Parse(f, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("duners: cannot parse %q as a Dune timestamp", s)
}

// Time decodes Dune timestamp columns. Declare result struct fields of
// this type for columns of the upstream timestamp and date types; a string
// that matches none of the documented formats fails the row decode rather
// than producing a zero value silently. JSON null decodes to the zero Time.
type Time struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Time) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseTime(*s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalJSON implements json.Marshaler using the execution timestamp
// format.
func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(timeFormats[0]))
}
