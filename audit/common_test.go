// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package audit_test

import (
	"os"
	"testing"

	"github.com/bitmark-inc/logger"

	"github.com/clearline-inc/ledgerd/audit"
	"github.com/clearline-inc/ledgerd/storage"
)

const databaseFileName = "test.leveldb"

// remove all files created by test
func removeFiles() {
	os.RemoveAll(databaseFileName)
	os.RemoveAll("test.log")
}

// configure for testing
func setup(t *testing.T) {
	removeFiles()

	logger.Initialise(logger.Configuration{
		Directory: ".",
		File:      "test.log",
		Size:      50000,
		Count:     10,
	})

	err := storage.Initialise(databaseFileName, false)
	if nil != err {
		t.Fatalf("storage initialise error: %s", err)
	}

	err = audit.Initialise()
	if nil != err {
		t.Fatalf("audit initialise error: %s", err)
	}
}

// post test cleanup
func teardown(t *testing.T) {
	err := audit.Finalise()
	if nil != err {
		t.Fatalf("audit finalise error: %s", err)
	}
	storage.Finalise()
	logger.Finalise()
	removeFiles()
}
