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
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"google.golang.org/api/iterator"
)

// ResultMetadata describes a completed result set.
type ResultMetadata struct {
	// ColumnNames are the result columns, in select order.
	ColumnNames []string
	// ColumnTypes are the upstream-inferred types of the columns, aligned
	// with ColumnNames.
	ColumnTypes []string

	ResultSetBytes int64
	TotalRowCount  int64
	DatapointCount int64

	// PendingTime is how long the run sat in the queue.
	PendingTime time.Duration
	// ExecutionTime is how long the run took to execute.
	ExecutionTime time.Duration
}

// Results returns an iterator over the rows produced by the execution.
// The first page is fetched eagerly, so calling Results before the run has
// completed fails here rather than on the first Next: ErrNotReady while
// the run is still pending or executing, *ExecutionError if it ended
// failed, cancelled or expired.
func (e *Execution) Results(ctx context.Context) (*RowIterator, error) {
	it := newRowIterator(ctx, e.c.service, e)
	if e.maxResults > 0 {
		it.pageInfo.MaxSize = int(e.maxResults)
	}
	if err := it.nextFunc(); err != nil && err != iterator.Done {
		return nil, err
	}
	return it, nil
}

// A RowIterator provides access to the rows of a completed execution, in
// their original order. Rows are fetched page by page; page size can be
// set through the originating Query's MaxResults or via PageInfo.
type RowIterator struct {
	ctx         context.Context
	svc         service
	executionID string
	queryID     int64

	// Metadata describes the result set. It is populated once the first
	// page has been fetched.
	Metadata *ResultMetadata

	pageInfo *iterator.PageInfo
	nextFunc func() error
	rows     []json.RawMessage
	consumed int
}

func newRowIterator(ctx context.Context, svc service, e *Execution) *RowIterator {
	it := &RowIterator{
		ctx:         ctx,
		svc:         svc,
		executionID: e.id,
		queryID:     e.queryID,
	}
	it.pageInfo, it.nextFunc = iterator.NewPageInfo(
		it.fetch,
		func() int { return len(it.rows) },
		func() interface{} {
			b := it.rows
			it.rows = nil
			return b
		})
	return it
}

// fetch retrieves one page of rows. The page token is the decimal row
// offset of the page, "" meaning the start.
func (it *RowIterator) fetch(pageSize int, pageToken string) (string, error) {
	var offset int64
	if pageToken != "" {
		o, err := strconv.ParseInt(pageToken, 10, 64)
		if err != nil {
			return "", fmt.Errorf("duners: malformed results page token %q", pageToken)
		}
		offset = o
	}
	page, err := it.svc.executionResults(it.ctx, it.executionID, int64(pageSize), offset)
	if err != nil {
		return "", err
	}
	if !page.state.Terminal() {
		return "", ErrNotReady
	}
	if page.state != Completed {
		return "", &ExecutionError{ExecutionID: it.executionID, QueryID: it.queryID, State: page.state}
	}
	it.rows = append(it.rows, page.rows...)
	if it.Metadata == nil {
		it.Metadata = page.metadata
	}
	if page.nextOffset < 0 {
		return "", nil
	}
	return strconv.FormatInt(page.nextOffset, 10), nil
}

// Next loads the next row into dst and advances the iterator. It returns
// iterator.Done when no rows remain. dst is usually a pointer to a struct
// whose fields are tagged with the result column names; see UnmarshalRow
// for the decoding rules. A decoding failure is reported as *DecodeError
// carrying the index of the offending row; the iterator advances past it.
func (it *RowIterator) Next(dst interface{}) error {
	if err := it.nextFunc(); err != nil {
		return err
	}
	row := it.rows[0]
	it.rows = it.rows[1:]
	idx := it.consumed
	it.consumed++
	if err := UnmarshalRow(row, dst); err != nil {
		return &DecodeError{Row: idx, Err: err}
	}
	return nil
}

// PageInfo supports pagination. See the google.golang.org/api/iterator
// package for details.
func (it *RowIterator) PageInfo() *iterator.PageInfo {
	return it.pageInfo
}

// All decodes every remaining row, in order, into dst, which must be a
// pointer to a slice.
func (it *RowIterator) All(dst interface{}) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Slice {
		return errors.New("duners: All requires a non-nil pointer to a slice")
	}
	sl := v.Elem()
	for {
		elem := reflect.New(sl.Type().Elem())
		err := it.Next(elem.Interface())
		if err == iterator.Done {
			break
		}
		if err != nil {
			return err
		}
		sl = reflect.Append(sl, elem.Elem())
	}
	v.Elem().Set(sl)
	return nil
}
