// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"reflect"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/clearline-inc/ledgerd/fault"
	"github.com/clearline-inc/ledgerd/guard"
)

// exported storage pools
//
// note: no separate prefix for the database version record, it is
//       stored under a reserved key that no pool can reach
type pools struct {
	Readings        *PoolHandle `prefix:"R" table:"Readings"`
	SegmentTips     *PoolHandle `prefix:"S"`
	SegmentReadings *PoolHandle `prefix:"X"`
	Audit           *PoolHandle `prefix:"A" table:"AuditTrail"`
	Notes           *PoolHandle `prefix:"N" table:"EngineeringReconciliation"`
	Threads         *PoolHandle `prefix:"T"`
	ThreadHeads     *PoolHandle `prefix:"H"`
	Assets          *PoolHandle `prefix:"G"`
	Sensors         *PoolHandle `prefix:"E"`
	Users           *PoolHandle `prefix:"U"`
	Sequences       *PoolHandle `prefix:"Q"`
	TestData        *PoolHandle `prefix:"Z"`
}

// Pool - the set of exported pools
var Pool pools

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

const (
	currentDBVersion = 0x100
)

// holds the database handle
var poolData struct {
	sync.RWMutex
	db *leveldb.DB
}

// DeniedHook - receives every mutation the immutability guard rejects
//
// the hook runs outside the storage locks so it may itself write to
// storage (the audit trail uses this)
type DeniedHook func(op guard.Operation, table guard.Table, key []byte, reason error)

var deniedData struct {
	sync.RWMutex
	hook DeniedHook
}

// RegisterDeniedHook - install the guard denial callback
//
// only one hook is supported; later registrations replace earlier ones
func RegisterDeniedHook(hook DeniedHook) {
	deniedData.Lock()
	deniedData.hook = hook
	deniedData.Unlock()
}

func notifyDenied(op guard.Operation, table guard.Table, key []byte, reason error) {
	deniedData.RLock()
	hook := deniedData.hook
	deniedData.RUnlock()
	if nil != hook {
		keyCopy := make([]byte, len(key))
		copy(keyCopy, key)
		hook(op, table, keyCopy, reason)
	}
}

// Initialise - open up the database connection
//
// this must be called before any pool is accessed
func Initialise(database string, readOnly bool) error {
	poolData.Lock()
	defer poolData.Unlock()

	if nil != poolData.db {
		return fault.AlreadyInitialised
	}

	db, err := leveldb.OpenFile(database, nil)
	if nil != err {
		return err
	}

	err = checkVersion(db, readOnly)
	if nil != err {
		db.Close()
		return err
	}

	poolData.db = db

	// this will be a struct type
	poolType := reflect.TypeOf(Pool)

	// get write access by using pointer + Elem()
	poolValue := reflect.ValueOf(&Pool).Elem()

	// scan each field to set up the pool handles
	for i := 0; i < poolType.NumField(); i += 1 {

		fieldInfo := poolType.Field(i)

		prefixTag := fieldInfo.Tag.Get("prefix")
		if 1 != len(prefixTag) {
			fault.Criticalf("pool: %v has invalid prefix: %q", fieldInfo, prefixTag)
			fault.Panic("invalid storage pool prefix")
		}

		prefix := prefixTag[0]
		limit := []byte(nil)
		if prefix < 255 {
			limit = []byte{prefix + 1}
		}

		p := &PoolHandle{
			prefix: prefix,
			limit:  limit,
			table:  guard.Table(fieldInfo.Tag.Get("table")),
		}
		poolValue.Field(i).Set(reflect.ValueOf(p))
	}

	return nil
}

// Finalise - close the database connection
func Finalise() {
	poolData.Lock()
	defer poolData.Unlock()

	if nil == poolData.db {
		return
	}

	poolData.db.Close()
	poolData.db = nil

	deniedData.Lock()
	deniedData.hook = nil
	deniedData.Unlock()
}

// IsInitialised - check the database is open
func IsInitialised() bool {
	poolData.RLock()
	result := nil != poolData.db
	poolData.RUnlock()
	return result
}

// read the version record, writing the current version to a fresh
// database; refuse databases from a different layout generation
func checkVersion(db *leveldb.DB, readOnly bool) error {

	versionValue, err := db.Get(versionKey, nil)
	if leveldb.ErrNotFound == err {
		if isEmpty(db) {
			if readOnly {
				return nil
			}
			return putVersion(db, currentDBVersion)
		}
		return fault.IncompatibleDatabaseVersion
	} else if nil != err {
		return err
	}

	if 4 != len(versionValue) {
		return fault.IncompatibleDatabaseVersion
	}

	version := binary.BigEndian.Uint32(versionValue)
	if currentDBVersion != version {
		return fault.IncompatibleDatabaseVersion
	}
	return nil
}

func putVersion(db *leveldb.DB, version uint32) error {
	versionValue := make([]byte, 4)
	binary.BigEndian.PutUint32(versionValue, version)
	return db.Put(versionKey, versionValue, nil)
}

func isEmpty(db *leveldb.DB) bool {
	iter := db.NewIterator(&ldb_util.Range{}, nil)
	defer iter.Release()
	return !iter.Next()
}
