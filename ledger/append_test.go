// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/clearline-inc/ledgerd/audit"
	"github.com/clearline-inc/ledgerd/chaindigest"
	"github.com/clearline-inc/ledgerd/fault"
	"github.com/clearline-inc/ledgerd/ledger"
	"github.com/clearline-inc/ledgerd/mode"
	"github.com/clearline-inc/ledgerd/reading"
	"github.com/clearline-inc/ledgerd/reference"
	"github.com/clearline-inc/ledgerd/storage"
)

var baseTime = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func TestAppendChainsDigests(t *testing.T) {
	setup(t)
	defer teardown(t)

	first := appendReading(t, 700.0, baseTime)
	second := appendReading(t, 705.0, baseTime.Add(time.Minute))

	// the first reading chains from the seed
	assert.Equal(t, chaindigest.Seed, first.PreviousDigest, "first reading not seed chained")
	assert.False(t, first.Digest.IsSeed(), "digest not assigned")

	// each reading chains from its predecessor
	assert.Equal(t, first.Digest, second.PreviousDigest, "chain link broken")

	// the tip follows the last append
	digest, readingID, err := ledger.Tip("SEG-01")
	assert.NoError(t, err, "tip error")
	assert.Equal(t, second.Digest, digest, "wrong tip digest")
	assert.Equal(t, second.ReadingID, readingID, "wrong tip reading")

	// the stored record round trips
	stored := storage.Pool.Readings.Get(storage.Uint64Key(first.ReadingID))
	restored, err := reading.Unpack(stored)
	assert.NoError(t, err, "unpack error")
	assert.Equal(t, first, restored, "stored record differs")
}

func TestAppendEmptySegmentTip(t *testing.T) {
	setup(t)
	defer teardown(t)

	digest, readingID, err := ledger.Tip("SEG-01")
	assert.NoError(t, err, "tip error")
	assert.Equal(t, chaindigest.Seed, digest, "empty segment tip not seed")
	assert.Equal(t, uint64(0), readingID, "empty segment has a reading")

	_, _, err = ledger.Tip("SEG-99")
	assert.Equal(t, fault.SegmentNotFound, err, "phantom segment")
}

func TestRestartResetsCounters(t *testing.T) {
	setup(t)
	defer teardown(t)

	appendReading(t, 700.0, baseTime)
	appendReading(t, 705.0, baseTime.Add(time.Minute))
	assert.Equal(t, uint64(2), ledger.AppendedCount(), "wrong appended count")

	_, err := ledger.VerifyChain("SEG-01")
	assert.NoError(t, err, "verify error")

	// restart the ledger over the same store
	err = ledger.Finalise()
	assert.NoError(t, err, "finalise error")
	err = ledger.Initialise(reference.Store{}, reference.Store{}, reference.Store{}, 0, 0)
	assert.NoError(t, err, "initialise error")

	// counters start afresh, the chain tip does not
	assert.Equal(t, uint64(0), ledger.AppendedCount(), "appended count survived restart")
	assert.Equal(t, uint64(0), ledger.VerifiedCount(), "verified count survived restart")

	third := appendReading(t, 710.0, baseTime.Add(2*time.Minute))
	assert.Equal(t, uint64(1), ledger.AppendedCount(), "wrong appended count after restart")

	digest, readingID, err := ledger.Tip("SEG-01")
	assert.NoError(t, err, "tip error")
	assert.Equal(t, third.Digest, digest, "wrong tip digest after restart")
	assert.Equal(t, third.ReadingID, readingID, "wrong tip reading after restart")
}

func TestAppendValidation(t *testing.T) {
	setup(t)
	defer teardown(t)

	arg := ledger.AppendArguments{
		SegmentID:    "SEG-01",
		SensorID:     sensorID,
		PressurePSIG: 700.0,
		RecordedBy:   operatorID,
		DataSource:   "SCADA",
		DataQuality:  reading.QualityGood,
	}

	bad := arg
	bad.SegmentID = "SEG-99"
	_, err := ledger.Append(bad)
	assert.Equal(t, fault.SegmentNotFound, err, "unknown segment accepted")

	bad = arg
	bad.SensorID = 99
	_, err = ledger.Append(bad)
	assert.Equal(t, fault.SensorNotFound, err, "unknown sensor accepted")

	bad = arg
	bad.RecordedBy = 99
	_, err = ledger.Append(bad)
	assert.Equal(t, fault.UserNotFound, err, "unknown user accepted")

	bad = arg
	bad.PressurePSIG = -5
	_, err = ledger.Append(bad)
	assert.Equal(t, fault.PressureOutOfRange, err, "negative pressure accepted")

	bad = arg
	bad.DataQuality = "PERFECT"
	_, err = ledger.Append(bad)
	assert.Equal(t, fault.DataQualityInvalid, err, "bad quality accepted")
}

func TestAppendSensorSegmentMismatch(t *testing.T) {
	setup(t)
	defer teardown(t)

	err := reference.RegisterSegment(&reference.Segment{SegmentID: "SEG-02", MAOPPSIG: 950})
	assert.NoError(t, err, "register error")
	otherSensor, err := reference.RegisterSensor(&reference.Sensor{
		SerialNumber: "PXTR-2401-002",
		SegmentID:    "SEG-02",
	})
	assert.NoError(t, err, "register error")

	_, err = ledger.Append(ledger.AppendArguments{
		SegmentID:    "SEG-01",
		SensorID:     otherSensor,
		PressurePSIG: 700.0,
		RecordedBy:   operatorID,
		DataSource:   "SCADA",
		DataQuality:  reading.QualityGood,
	})
	assert.Equal(t, fault.SensorSegmentMismatch, err, "foreign sensor accepted")
}

func TestAppendRefusedDuringResynchronise(t *testing.T) {
	setup(t)
	defer teardown(t)

	mode.Set(mode.Resynchronise)
	defer mode.Set(mode.Normal)

	_, err := ledger.Append(ledger.AppendArguments{
		SegmentID:    "SEG-01",
		SensorID:     sensorID,
		PressurePSIG: 700.0,
		RecordedBy:   operatorID,
		DataSource:   "SCADA",
		DataQuality:  reading.QualityGood,
	})
	assert.Equal(t, fault.NotAvailableDuringResynchronise, err, "append during resynchronise accepted")
}

func TestAppendIsAudited(t *testing.T) {
	setup(t)
	defer teardown(t)

	r := appendReading(t, 980.0, baseTime)

	entries, err := audit.ByRecord("Readings", fmt.Sprintf("%d", r.ReadingID))
	assert.NoError(t, err, "query error")
	if assert.Equal(t, 1, len(entries), "wrong entry count") {
		assert.Equal(t, audit.EventReadingAppended, entries[0].EventType, "wrong event")
		assert.Equal(t, operatorID, entries[0].UserID, "wrong actor")
		// 98% of MAOP
		assert.Contains(t, entries[0].Details, "CRITICAL", "compliance status missing")
	}
}

func TestConcurrentAppendsOneSegment(t *testing.T) {
	setup(t)
	defer teardown(t)

	const writers = 8
	const perWriter = 5

	wg := sync.WaitGroup{}
	for i := 0; i < writers; i += 1 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < perWriter; j += 1 {
				_, err := ledger.Append(ledger.AppendArguments{
					SegmentID:    "SEG-01",
					SensorID:     sensorID,
					Timestamp:    baseTime.Add(time.Duration(n*perWriter+j) * time.Second),
					PressurePSIG: 700.0 + float64(n),
					RecordedBy:   operatorID,
					DataSource:   "SCADA",
					DataQuality:  reading.QualityGood,
				})
				assert.NoError(t, err, "append error")
			}
		}(i)
	}
	wg.Wait()

	// every append landed and the chain still verifies
	result, err := ledger.VerifyChain("SEG-01")
	assert.NoError(t, err, "verify error")
	assert.True(t, result.Valid, "chain broken after concurrent appends")
	assert.Equal(t, uint64(writers*perWriter), result.Checked, "lost appends")
	assert.Equal(t, uint64(writers*perWriter), ledger.AppendedCount(), "wrong appended count")
}
