// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/clearline-inc/ledgerd/fault"
	"github.com/clearline-inc/ledgerd/guard"
)

// PoolHandle - the prefix for a specific record class
type PoolHandle struct {
	prefix byte
	limit  []byte
	table  guard.Table
}

// Table - the guarded table name of this pool, empty for internal pools
func (p *PoolHandle) Table() guard.Table {
	return p.table
}

// prefixKey - prepend the prefix onto the key
func (p *PoolHandle) prefixKey(key []byte) []byte {
	prefixedKey := make([]byte, 1, len(key)+1)
	prefixedKey[0] = p.prefix
	return append(prefixedKey, key...)
}

// Put - store a value
//
// pools representing ledger record classes route every write through
// the immutability guard; a rejected write leaves the pool unchanged
// and reports the denial
func (p *PoolHandle) Put(key []byte, value []byte) error {

	if guard.IsLedgerClass(p.table) {
		op := guard.Insert
		existing := p.Get(key)
		if nil != existing {
			op = guard.Update
		}
		err := guard.Authorize(op, p.table, existing, value)
		if nil != err {
			notifyDenied(op, p.table, key, err)
			return err
		}
	}

	poolData.RLock()
	defer poolData.RUnlock()

	if nil == poolData.db {
		return fault.NotInitialised
	}
	return poolData.db.Put(p.prefixKey(key), value, nil)
}

// PutN - store an 8 byte big endian count
func (p *PoolHandle) PutN(key []byte, value uint64) error {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, value)
	return p.Put(key, buffer)
}

// Delete - remove a key from the pool
//
// always denied on ledger record classes
func (p *PoolHandle) Delete(key []byte) error {

	if guard.IsLedgerClass(p.table) {
		err := guard.Authorize(guard.Delete, p.table, p.Get(key), nil)
		if nil != err {
			notifyDenied(guard.Delete, p.table, key, err)
			return err
		}
	}

	poolData.RLock()
	defer poolData.RUnlock()

	if nil == poolData.db {
		return fault.NotInitialised
	}
	return poolData.db.Delete(p.prefixKey(key), nil)
}

// Get - read a value for a given key
//
// this returns the actual element - copy the result if it must be preserved
func (p *PoolHandle) Get(key []byte) []byte {
	poolData.RLock()
	defer poolData.RUnlock()

	if nil == poolData.db {
		return nil
	}
	value, err := poolData.db.Get(p.prefixKey(key), nil)
	if leveldb.ErrNotFound == err {
		return nil
	}
	fault.PanicIfError("storage.Get", err)
	return value
}

// GetN - read an 8 byte big endian count
//
// second return value is false if the record was missing or not a count
func (p *PoolHandle) GetN(key []byte) (uint64, bool) {
	buffer := p.Get(key)
	if 8 != len(buffer) {
		return 0, false
	}
	return binary.BigEndian.Uint64(buffer), true
}

// Has - check if a key exists
func (p *PoolHandle) Has(key []byte) bool {
	poolData.RLock()
	defer poolData.RUnlock()

	if nil == poolData.db {
		return false
	}
	value, err := poolData.db.Has(p.prefixKey(key), nil)
	fault.PanicIfError("storage.Has", err)
	return value
}

// LastElement - get the element with the highest key in the pool
func (p *PoolHandle) LastElement() (Element, bool) {
	maxRange := ldb_util.Range{
		Start: []byte{p.prefix}, // Start of key range
		Limit: p.limit,          // Limit of key range
	}

	poolData.RLock()
	defer poolData.RUnlock()

	if nil == poolData.db {
		return Element{}, false
	}

	iter := poolData.db.NewIterator(&maxRange, nil)
	defer iter.Release()

	found := false
	result := Element{}
	if iter.Last() {

		// contents of the returned slice must not be modified, and are
		// only valid until the next call to Next
		key := iter.Key()
		value := iter.Value()

		dataKey := make([]byte, len(key)-1) // strip the prefix
		copy(dataKey, key[1:])              // ... from the key

		dataValue := make([]byte, len(value))
		copy(dataValue, value)

		result.Key = dataKey
		result.Value = dataValue
		found = true
	}

	err := iter.Error()
	fault.PanicIfError("storage.LastElement", err)
	return result, found
}
