// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package background_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/clearline-inc/ledgerd/background"
)

type ticker struct {
	started int32
	stopped int32
}

func (t *ticker) Run(args interface{}, shutdown <-chan struct{}) {
	atomic.StoreInt32(&t.started, 1)
loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-time.After(time.Millisecond):
		}
	}
	atomic.StoreInt32(&t.stopped, 1)
}

func TestStartStop(t *testing.T) {
	one := &ticker{}
	two := &ticker{}

	processes := background.Processes{one, two}
	handle := background.Start(processes, nil)

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&one.started), "first process not started")
	assert.Equal(t, int32(1), atomic.LoadInt32(&two.started), "second process not started")

	// Stop blocks until every Run has returned
	handle.Stop()
	assert.Equal(t, int32(1), atomic.LoadInt32(&one.stopped), "first process not stopped")
	assert.Equal(t, int32(1), atomic.LoadInt32(&two.stopped), "second process not stopped")
}

func TestStopNil(t *testing.T) {
	var handle *background.T
	handle.Stop()
}
