// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"time"

	cache "github.com/patrickmn/go-cache"
)

// Cache - view of writes staged by an open transaction
type Cache interface {
	Get(string) ([]byte, bool)
	Set(CacheOperation, string, []byte)
	Clear()
}

// CacheOperation - kind of staged write
type CacheOperation int

const (
	CachePut CacheOperation = iota
	CacheDelete
)

const (
	stagedExpiry  = 2 * time.Minute
	stagedCleanup = 5 * time.Minute
)

// go-cache backed implementation; entries only live for the span of
// one transaction so the expiry just bounds leakage from an abandoned
// transaction
type dbCache struct {
	cache *cache.Cache
}

type cacheEntry struct {
	op    CacheOperation
	value []byte
}

func newCache() *dbCache {
	return &dbCache{
		cache: cache.New(stagedExpiry, stagedCleanup),
	}
}

func (c *dbCache) Get(key string) ([]byte, bool) {
	obj, found := c.cache.Get(key)
	if !found {
		return nil, false
	}

	entry := obj.(cacheEntry)
	if CacheDelete == entry.op {
		// staged delete hides any underlying value
		return nil, true
	}
	return entry.value, true
}

func (c *dbCache) Set(op CacheOperation, key string, value []byte) {
	entry := cacheEntry{
		op:    op,
		value: value,
	}
	c.cache.Set(key, entry, stagedExpiry)
}

func (c *dbCache) Clear() {
	c.cache.Flush()
}
