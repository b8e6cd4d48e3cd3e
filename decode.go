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
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// UnmarshalRow decodes a single result row into dst. It is usable on its
// own, without a client; the RowIterator uses it for every row.
//
// When dst points to a struct, each exported field is matched to a result
// column by its json tag, or failing that by its name (case-insensitively,
// like encoding/json). A field whose column is missing or null is an
// error, unless the field is a pointer or its tag carries omitempty.
// Column values decode through encoding/json, so fields may use any type
// with an UnmarshalJSON method; Time and Number cover the upstream
// timestamp and stringified-number conventions.
//
// When dst points to anything else (a map, say), the row decodes through
// encoding/json directly.
func UnmarshalRow(row json.RawMessage, dst interface{}) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return errors.New("duners: UnmarshalRow requires a non-nil pointer")
	}
	elem := v.Elem()
	if elem.Kind() != reflect.Struct {
		return json.Unmarshal(row, dst)
	}
	var cols map[string]json.RawMessage
	if err := json.Unmarshal(row, &cols); err != nil {
		return fmt.Errorf("row is not a JSON object: %w", err)
	}
	t := elem.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, optional := fieldColumn(f)
		if name == "-" {
			continue
		}
		raw, ok := lookupColumn(cols, name)
		if !ok || string(raw) == "null" {
			if optional || f.Type.Kind() == reflect.Ptr {
				continue
			}
			return fmt.Errorf("missing required column %q", name)
		}
		if err := json.Unmarshal(raw, elem.Field(i).Addr().Interface()); err != nil {
			return fmt.Errorf("column %q: %w", name, err)
		}
	}
	return nil
}

// fieldColumn resolves the column name for a struct field from its json
// tag. An omitempty option marks the field optional.
func fieldColumn(f reflect.StructField) (name string, optional bool) {
	tag := f.Tag.Get("json")
	if tag == "" {
		return f.Name, false
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	for _, o := range strings.Split(opts, ",") {
		if o == "omitempty" {
			optional = true
		}
	}
	return name, optional
}

func lookupColumn(cols map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	if raw, ok := cols[name]; ok {
		return raw, true
	}
	for k, raw := range cols {
		if strings.EqualFold(k, name) {
			return raw, true
		}
	}
	return nil, false
}

// Number is a float64 that also accepts its JSON value as a quoted string,
// which is how the upstream API serializes many numeric columns. Declare
// result struct fields of this type for such columns.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("parsing %q as a number: %w", s, err)
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(n))
}

// Float64 returns the value as a plain float64.
func (n Number) Float64() float64 {
	return float64(n)
}
