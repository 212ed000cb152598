// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/clearline-inc/ledgerd/fault"
)

// Element - a key-value pair returned by a fetch
type Element struct {
	Key   []byte
	Value []byte
}

// FetchCursor - cursor structure to step through the key space of a pool
type FetchCursor struct {
	pool     *PoolHandle
	maxRange ldb_util.Range
}

// NewFetchCursor - initialise a cursor covering the whole pool
func (p *PoolHandle) NewFetchCursor() *FetchCursor {
	return &FetchCursor{
		pool: p,
		maxRange: ldb_util.Range{
			Start: []byte{p.prefix}, // Start of key range
			Limit: p.limit,          // Limit of key range
		},
	}
}

// Seek - position the cursor at a key, inclusive
func (cursor *FetchCursor) Seek(key []byte) *FetchCursor {
	cursor.maxRange.Start = cursor.pool.prefixKey(key)
	return cursor
}

// Fetch - return some elements starting from the cursor, advancing it
func (cursor *FetchCursor) Fetch(count int) ([]Element, error) {
	if nil == cursor {
		return nil, fault.InvalidCursor
	}
	if count <= 0 {
		return nil, fault.InvalidCount
	}

	poolData.RLock()
	defer poolData.RUnlock()

	if nil == poolData.db {
		return nil, fault.NotInitialised
	}

	iter := poolData.db.NewIterator(&cursor.maxRange, nil)
	defer iter.Release()

	results := make([]Element, 0, count)
	n := 0
	for iter.Next() {

		// contents of the returned slice must not be modified, and are
		// only valid until the next call to Next
		key := iter.Key()
		value := iter.Value()

		dataKey := make([]byte, len(key)-1) // strip the prefix
		copy(dataKey, key[1:])              // ... from the key

		dataValue := make([]byte, len(value))
		copy(dataValue, value)

		e := Element{
			Key:   dataKey,
			Value: dataValue,
		}
		results = append(results, e)
		n += 1
		if n >= count {
			break
		}
	}

	err := iter.Error()
	if nil != err {
		return nil, err
	}

	if 0 != len(results) {
		// key followed by a zero byte is the immediate successor in
		// bytewise order, so the last element is not fetched twice
		lastKey := results[len(results)-1].Key
		cursor.maxRange.Start = cursor.pool.prefixKey(append(append([]byte{}, lastKey...), 0x00))
	}
	return results, nil
}

// Map - run a callback over every element of the pool
//
// iteration stops on the first error from the callback
func (cursor *FetchCursor) Map(f func(key []byte, value []byte) error) error {
	if nil == cursor {
		return fault.InvalidCursor
	}

	poolData.RLock()
	defer poolData.RUnlock()

	if nil == poolData.db {
		return fault.NotInitialised
	}

	iter := poolData.db.NewIterator(&cursor.maxRange, nil)
	defer iter.Release()

	for iter.Next() {
		err := f(iter.Key()[1:], iter.Value())
		if nil != err {
			return err
		}
	}
	return iter.Error()
}
