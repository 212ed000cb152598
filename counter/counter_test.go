// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package counter_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clearline-inc/ledgerd/counter"
)

func TestCounter(t *testing.T) {
	c := counter.Counter(0)

	assert.True(t, c.IsZero(), "fresh counter not zero")
	assert.Equal(t, uint64(1), c.Increment(), "wrong increment result")
	assert.Equal(t, uint64(0), c.Decrement(), "wrong decrement result")

	wg := sync.WaitGroup{}
	for i := 0; i < 10; i += 1 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j += 1 {
				c.Increment()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(1000), c.Uint64(), "lost increments")
}
