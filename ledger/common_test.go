// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger_test

import (
	"os"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/clearline-inc/ledgerd/audit"
	"github.com/clearline-inc/ledgerd/ledger"
	"github.com/clearline-inc/ledgerd/mode"
	"github.com/clearline-inc/ledgerd/reading"
	"github.com/clearline-inc/ledgerd/reference"
	"github.com/clearline-inc/ledgerd/storage"
)

const databaseFileName = "test.leveldb"

var (
	sensorID   uint64
	operatorID uint64
)

// remove all files created by test
func removeFiles() {
	os.RemoveAll(databaseFileName)
	os.RemoveAll("test.log")
}

// configure for testing: storage, audit, mode and a registered
// segment / sensor / operator
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

	err = mode.Initialise()
	if nil != err {
		t.Fatalf("mode initialise error: %s", err)
	}

	err = reference.RegisterSegment(&reference.Segment{
		SegmentID: "SEG-01",
		Name:      "Mainline South",
		MAOPPSIG:  1000.0,
	})
	if nil != err {
		t.Fatalf("segment register error: %s", err)
	}

	sensorID, err = reference.RegisterSensor(&reference.Sensor{
		SerialNumber: "PXTR-2401-001",
		SegmentID:    "SEG-01",
	})
	if nil != err {
		t.Fatalf("sensor register error: %s", err)
	}

	operatorID, err = reference.RegisterUser(&reference.User{
		FirstName: "John",
		LastName:  "Operator",
		Email:     "john.operator@clearline.com",
		Role:      "Control Room Operator",
	})
	if nil != err {
		t.Fatalf("user register error: %s", err)
	}

	err = ledger.Initialise(reference.Store{}, reference.Store{}, reference.Store{}, 0, 0)
	if nil != err {
		t.Fatalf("ledger initialise error: %s", err)
	}

	mode.Set(mode.Normal)
}

// post test cleanup
func teardown(t *testing.T) {
	err := ledger.Finalise()
	if nil != err {
		t.Fatalf("ledger finalise error: %s", err)
	}
	err = mode.Finalise()
	if nil != err {
		t.Fatalf("mode finalise error: %s", err)
	}
	err = audit.Finalise()
	if nil != err {
		t.Fatalf("audit finalise error: %s", err)
	}
	storage.Finalise()
	logger.Finalise()
	removeFiles()
}

// append one good reading
func appendReading(t *testing.T, pressure float64, at time.Time) *reading.Reading {
	r, err := ledger.Append(ledger.AppendArguments{
		SegmentID:    "SEG-01",
		SensorID:     sensorID,
		Timestamp:    at,
		PressurePSIG: pressure,
		RecordedBy:   operatorID,
		DataSource:   "SCADA",
		DataQuality:  reading.QualityGood,
	})
	if nil != err {
		t.Fatalf("append error: %s", err)
	}
	return r
}
