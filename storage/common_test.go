// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/clearline-inc/ledgerd/storage"
)

// test database file
const (
	databaseFileName = "test.leveldb"
)

// common test setup routines

// remove all files created by test
func removeFiles() {
	os.RemoveAll(databaseFileName)
}

// configure for testing
func setup(t *testing.T) {
	removeFiles()
	err := storage.Initialise(databaseFileName, false)
	if nil != err {
		t.Fatalf("storage initialise error: %s", err)
	}
}

// post test cleanup
func teardown(t *testing.T) {
	storage.Finalise()
	removeFiles()
}

// a string data item
type stringElement struct {
	key   string
	value string
}

// make an element array
func makeElements(input []stringElement) []storage.Element {
	output := make([]storage.Element, 0, len(input))
	for _, e := range input {
		output = append(output, storage.Element{
			Key:   []byte(e.key),
			Value: []byte(e.value),
		})
	}
	return output
}

// data for various test routines

// this is the expected order
var expectedElements = makeElements([]stringElement{
	{"key-five", "data-five"},
	{"key-four", "data-four"},
	{"key-one", "data-one"},
	{"key-seven", "data-seven"},
	{"key-six", "data-six"},
	{"key-three", "data-three"},
	{"key-two", "data-two"},
})

// a key that must not exist
var nonExistantKey = []byte("/nonexistant")

// minimal reading row for guarded pool tests
func readingRow(t *testing.T, id uint64, pressure float64) []byte {
	row := map[string]interface{}{
		"readingId":    id,
		"segmentId":    "SEG-001",
		"pressurePsig": pressure,
	}
	buffer, err := json.Marshal(row)
	if nil != err {
		t.Fatalf("marshal error: %s", err)
	}
	return buffer
}

// minimal reconciliation note row for guarded pool tests
func noteRow(t *testing.T, id uint64, status string, qiStatus string, supersededBy interface{}) []byte {
	row := map[string]interface{}{
		"noteId":         id,
		"readingId":      uint64(42),
		"noteText":       "gauge recalibrated",
		"status":         status,
		"qiStatus":       qiStatus,
		"supersededById": supersededBy,
	}
	buffer, err := json.Marshal(row)
	if nil != err {
		t.Fatalf("marshal error: %s", err)
	}
	return buffer
}
