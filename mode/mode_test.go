// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mode_test

import (
	"os"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"

	"github.com/clearline-inc/ledgerd/mode"
)

func setup(t *testing.T) {
	os.RemoveAll("test.log")

	logger.Initialise(logger.Configuration{
		Directory: ".",
		File:      "test.log",
		Size:      50000,
		Count:     10,
	})

	err := mode.Initialise()
	if nil != err {
		t.Fatalf("mode initialise error: %s", err)
	}
}

func teardown(t *testing.T) {
	err := mode.Finalise()
	if nil != err {
		t.Fatalf("mode finalise error: %s", err)
	}
	logger.Finalise()
	os.RemoveAll("test.log")
}

func TestStartsInResynchronise(t *testing.T) {
	setup(t)
	defer teardown(t)

	assert.True(t, mode.Is(mode.Resynchronise), "wrong start mode")
	assert.True(t, mode.IsNot(mode.Normal), "wrong start mode")
}

func TestSet(t *testing.T) {
	setup(t)
	defer teardown(t)

	mode.Set(mode.Normal)
	assert.True(t, mode.Is(mode.Normal), "set failed")
	assert.Equal(t, "Normal", mode.String(), "wrong string form")

	// out of range values are ignored
	mode.Set(mode.Mode(99))
	assert.True(t, mode.Is(mode.Normal), "invalid mode applied")
}
