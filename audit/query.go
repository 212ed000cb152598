// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package audit

import (
	"encoding/json"
	"time"

	"github.com/clearline-inc/ledgerd/fault"
	"github.com/clearline-inc/ledgerd/storage"
)

// scan the whole trail, keeping entries the filter accepts
func scan(accept func(entry *Entry) bool) ([]Entry, error) {
	result := []Entry{}
	err := storage.Pool.Audit.NewFetchCursor().Map(func(key []byte, value []byte) error {
		entry := Entry{}
		e := json.Unmarshal(value, &entry)
		if nil != e {
			return fault.CanonicalEncodingFailed
		}
		if accept(&entry) {
			result = append(result, entry)
		}
		return nil
	})
	if nil != err {
		return nil, err
	}
	return result, nil
}

// ByTimeRange - entries with from ≤ timestamp < to
func ByTimeRange(from time.Time, to time.Time) ([]Entry, error) {
	return scan(func(entry *Entry) bool {
		return !entry.Timestamp.Before(from) && entry.Timestamp.Before(to)
	})
}

// ByTable - entries affecting one table
func ByTable(table string) ([]Entry, error) {
	return scan(func(entry *Entry) bool {
		return entry.TableAffected == table
	})
}

// ByRecord - the full history of one record
func ByRecord(table string, recordID string) ([]Entry, error) {
	return scan(func(entry *Entry) bool {
		return entry.TableAffected == table && entry.RecordID == recordID
	})
}

// ByActor - everything one user did
func ByActor(userID uint64) ([]Entry, error) {
	return scan(func(entry *Entry) bool {
		return entry.UserID == userID
	})
}
