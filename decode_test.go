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
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalRow(t *testing.T) {
	type row struct {
		TextField   string `json:"text_field"`
		NumberField Number `json:"number_field"`
		DateField   Time   `json:"date_field"`
		ListField   string `json:"list_field"`
	}

	raw := json.RawMessage(`{
		"text_field": "Plain Text",
		"number_field": "3.1415926535",
		"date_field": "2022-05-04 00:00:00.000",
		"list_field": "Option 1"
	}`)

	var got row
	require.NoError(t, UnmarshalRow(raw, &got))

	want := row{
		TextField:   "Plain Text",
		NumberField: 3.1415926535,
		DateField:   Time{time.Date(2022, 5, 4, 0, 0, 0, 0, time.UTC)},
		ListField:   "Option 1",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshalRowMissingColumn(t *testing.T) {
	type row struct {
		Token    string  `json:"token"`
		MaxPrice float64 `json:"max_price"`
	}
	var got row
	err := UnmarshalRow(json.RawMessage(`{"token": "WETH"}`), &got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_price")
}

func TestUnmarshalRowNullColumn(t *testing.T) {
	type row struct {
		Symbol string `json:"symbol"`
	}
	var got row
	// An explicit null is treated like a missing column for a required
	// field; declare the field as a pointer to accept nullable columns.
	require.Error(t, UnmarshalRow(json.RawMessage(`{"symbol": null}`), &got))

	type nullable struct {
		Symbol *string `json:"symbol"`
	}
	var n nullable
	require.NoError(t, UnmarshalRow(json.RawMessage(`{"symbol": null}`), &n))
	assert.Nil(t, n.Symbol)
}

func TestUnmarshalRowOmitempty(t *testing.T) {
	type row struct {
		Token string `json:"token"`
		Note  string `json:"note,omitempty"`
	}
	var got row
	require.NoError(t, UnmarshalRow(json.RawMessage(`{"token": "WETH"}`), &got))
	assert.Equal(t, "WETH", got.Token)
	assert.Empty(t, got.Note)
}

func TestUnmarshalRowCaseInsensitive(t *testing.T) {
	type row struct {
		Token string `json:"token"`
	}
	var got row
	require.NoError(t, UnmarshalRow(json.RawMessage(`{"TOKEN": "WETH"}`), &got))
	assert.Equal(t, "WETH", got.Token)
}

func TestUnmarshalRowUntaggedField(t *testing.T) {
	type row struct {
		Symbol string
	}
	var got row
	require.NoError(t, UnmarshalRow(json.RawMessage(`{"symbol": "WETH"}`), &got))
	assert.Equal(t, "WETH", got.Symbol)
}

func TestUnmarshalRowSkippedField(t *testing.T) {
	type row struct {
		Token    string `json:"token"`
		Internal string `json:"-"`
	}
	var got row
	require.NoError(t, UnmarshalRow(json.RawMessage(`{"token": "WETH"}`), &got))
	assert.Empty(t, got.Internal)
}

func TestUnmarshalRowConversionFailure(t *testing.T) {
	type row struct {
		MaxPrice float64 `json:"max_price"`
	}
	var got row
	err := UnmarshalRow(json.RawMessage(`{"max_price": "not a price"}`), &got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_price")
}

func TestUnmarshalRowExtraColumnsIgnored(t *testing.T) {
	type row struct {
		Token string `json:"token"`
	}
	var got row
	require.NoError(t, UnmarshalRow(json.RawMessage(`{"token": "WETH", "surplus": 1}`), &got))
	assert.Equal(t, "WETH", got.Token)
}

func TestUnmarshalRowMapTarget(t *testing.T) {
	var got map[string]interface{}
	require.NoError(t, UnmarshalRow(json.RawMessage(`{"a": 1, "b": "two"}`), &got))
	assert.Equal(t, map[string]interface{}{"a": float64(1), "b": "two"}, got)
}

func TestUnmarshalRowBadTarget(t *testing.T) {
	var s struct{}
	require.Error(t, UnmarshalRow(json.RawMessage(`{}`), s), "non-pointer")
	require.Error(t, UnmarshalRow(json.RawMessage(`{}`), nil), "nil")

	var got struct {
		A int `json:"a"`
	}
	require.Error(t, UnmarshalRow(json.RawMessage(`[1, 2]`), &got), "row must be an object")
}
