// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"sync"
)

// identifier allocation is serialised globally; allocation is rare
// compared to reads so one mutex is enough
var sequenceData struct {
	sync.Mutex
}

// NextID - allocate the next identifier from a named sequence
//
// sequences start at one; the value stored under the name is the next
// identifier to hand out
func NextID(name string) (uint64, error) {
	sequenceData.Lock()
	defer sequenceData.Unlock()

	key := []byte(name)
	n, ok := Pool.Sequences.GetN(key)
	if !ok {
		n = 1
	}
	err := Pool.Sequences.PutN(key, n+1)
	if nil != err {
		return 0, err
	}
	return n, nil
}

// Uint64Key - fixed width big endian key so numeric order matches
// bytewise key order
func Uint64Key(n uint64) []byte {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, n)
	return buffer
}

// KeyUint64 - decode a fixed width big endian key
func KeyUint64(key []byte) (uint64, bool) {
	if 8 != len(key) {
		return 0, false
	}
	return binary.BigEndian.Uint64(key), true
}
