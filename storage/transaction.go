// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/clearline-inc/ledgerd/fault"
	"github.com/clearline-inc/ledgerd/guard"
)

// Transaction - a set of writes committed as one atomic batch
//
// staged writes are visible through the transaction's own Get but not
// to other readers until Commit; each write still passes the
// immutability guard against the state the transaction sees
type Transaction interface {
	Put(*PoolHandle, []byte, []byte) error
	PutN(*PoolHandle, []byte, uint64) error
	Delete(*PoolHandle, []byte) error
	Get(*PoolHandle, []byte) []byte
	GetN(*PoolHandle, []byte) (uint64, bool)
	Commit() error
	Abort()
}

type transactionImpl struct {
	batch    *leveldb.Batch
	cache    Cache
	finished bool
}

// NewTransaction - start an empty transaction
func NewTransaction() Transaction {
	return NewTransactionWithCache(newCache())
}

// NewTransactionWithCache - start a transaction with a caller supplied
// staging cache; tests inject mocks through this
func NewTransactionWithCache(c Cache) Transaction {
	return &transactionImpl{
		batch: new(leveldb.Batch),
		cache: c,
	}
}

func (t *transactionImpl) cacheKey(pool *PoolHandle, key []byte) string {
	return string(pool.prefixKey(key))
}

func (t *transactionImpl) Put(pool *PoolHandle, key []byte, value []byte) error {
	if t.finished {
		return fault.TransactionInUse
	}

	if guard.IsLedgerClass(pool.table) {
		op := guard.Insert
		existing := t.Get(pool, key)
		if nil != existing {
			op = guard.Update
		}
		err := guard.Authorize(op, pool.table, existing, value)
		if nil != err {
			notifyDenied(op, pool.table, key, err)
			return err
		}
	}

	staged := make([]byte, len(value))
	copy(staged, value)
	t.cache.Set(CachePut, t.cacheKey(pool, key), staged)
	t.batch.Put(pool.prefixKey(key), value)
	return nil
}

func (t *transactionImpl) PutN(pool *PoolHandle, key []byte, value uint64) error {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, value)
	return t.Put(pool, key, buffer)
}

func (t *transactionImpl) Delete(pool *PoolHandle, key []byte) error {
	if t.finished {
		return fault.TransactionInUse
	}

	if guard.IsLedgerClass(pool.table) {
		err := guard.Authorize(guard.Delete, pool.table, t.Get(pool, key), nil)
		if nil != err {
			notifyDenied(guard.Delete, pool.table, key, err)
			return err
		}
	}

	t.cache.Set(CacheDelete, t.cacheKey(pool, key), nil)
	t.batch.Delete(pool.prefixKey(key))
	return nil
}

// Get - staged value if this transaction wrote the key, else the
// stored value
func (t *transactionImpl) Get(pool *PoolHandle, key []byte) []byte {
	value, found := t.cache.Get(t.cacheKey(pool, key))
	if found {
		return value
	}
	return pool.Get(key)
}

func (t *transactionImpl) GetN(pool *PoolHandle, key []byte) (uint64, bool) {
	buffer := t.Get(pool, key)
	if 8 != len(buffer) {
		return 0, false
	}
	return binary.BigEndian.Uint64(buffer), true
}

// Commit - write the whole batch to the database
//
// the transaction cannot be reused afterwards
func (t *transactionImpl) Commit() error {
	if t.finished {
		return fault.TransactionInUse
	}
	t.finished = true
	defer t.cache.Clear()

	poolData.RLock()
	defer poolData.RUnlock()

	if nil == poolData.db {
		return fault.NotInitialised
	}
	return poolData.db.Write(t.batch, nil)
}

// Abort - discard all staged writes
func (t *transactionImpl) Abort() {
	t.finished = true
	t.batch.Reset()
	t.cache.Clear()
}
