// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"fmt"
	"time"

	"github.com/clearline-inc/ledgerd/audit"
	"github.com/clearline-inc/ledgerd/chaindigest"
	"github.com/clearline-inc/ledgerd/compliance"
	"github.com/clearline-inc/ledgerd/fault"
	"github.com/clearline-inc/ledgerd/mode"
	"github.com/clearline-inc/ledgerd/reading"
	"github.com/clearline-inc/ledgerd/storage"
)

// AppendArguments - input for one reading
type AppendArguments struct {
	SegmentID    string
	SensorID     uint64
	Timestamp    time.Time // zero means now
	PressurePSIG float64
	RecordedBy   uint64
	DataSource   string
	DataQuality  reading.Quality
	Notes        string
}

// Append - seal one pressure reading onto its segment chain
//
// the reading, the segment tip and the sequence index commit in a
// single batch, so a crash can never leave a dangling chain link
func Append(arg AppendArguments) (*reading.Reading, error) {
	globalData.RLock()
	initialised := globalData.initialised
	segments := globalData.segments
	sensors := globalData.sensors
	users := globalData.users
	globalData.RUnlock()

	if !initialised {
		return nil, fault.NotInitialised
	}
	if mode.IsNot(mode.Normal) {
		return nil, fault.NotAvailableDuringResynchronise
	}

	segment, err := segments.Segment(arg.SegmentID)
	if nil != err {
		return nil, err
	}
	sensor, err := sensors.Sensor(arg.SensorID)
	if nil != err {
		return nil, err
	}
	if sensor.SegmentID != arg.SegmentID {
		return nil, fault.SensorSegmentMismatch
	}
	_, err = users.User(arg.RecordedBy)
	if nil != err {
		return nil, err
	}

	timestamp := arg.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	r := &reading.Reading{
		Timestamp:    timestamp,
		SegmentID:    arg.SegmentID,
		SensorID:     arg.SensorID,
		PressurePSIG: arg.PressurePSIG,
		MAOPPSIG:     segment.MAOPPSIG,
		RecordedBy:   arg.RecordedBy,
		DataSource:   arg.DataSource,
		DataQuality:  arg.DataQuality,
		Notes:        arg.Notes,
	}
	err = r.Validate()
	if nil != err {
		return nil, err
	}

	readingID, err := storage.NextID("reading")
	if nil != err {
		return nil, err
	}
	r.ReadingID = readingID

	// critical section: one append at a time per segment
	stripe := stripeFor(arg.SegmentID)
	stripe.Lock()

	globalData.RLock()
	tip, haveTip := globalData.tips[arg.SegmentID]
	globalData.RUnlock()
	if !haveTip {
		tip = tipData{digest: chaindigest.Seed}
	}

	r.PreviousDigest = tip.digest
	payload, err := r.Payload()
	if nil != err {
		stripe.Unlock()
		return nil, err
	}
	r.Digest = chaindigest.ForRecord(tip.digest, payload)

	newTip := tipData{
		readingID: readingID,
		sequence:  tip.sequence + 1,
		digest:    r.Digest,
	}

	packed, err := r.Pack()
	if nil != err {
		stripe.Unlock()
		return nil, err
	}

	trx := storage.NewTransaction()
	err = trx.Put(storage.Pool.Readings, storage.Uint64Key(readingID), packed)
	if nil == err {
		err = trx.Put(storage.Pool.SegmentTips, []byte(arg.SegmentID), packTip(newTip))
	}
	if nil == err {
		err = trx.Put(storage.Pool.SegmentReadings, segmentSequenceKey(arg.SegmentID, newTip.sequence), storage.Uint64Key(readingID))
	}
	if nil != err {
		trx.Abort()
		stripe.Unlock()
		return nil, err
	}
	err = trx.Commit()
	if nil != err {
		stripe.Unlock()
		return nil, err
	}

	globalData.Lock()
	globalData.tips[arg.SegmentID] = newTip
	globalData.Unlock()

	windowAvg := recordSample(arg.SegmentID, timestamp, arg.PressurePSIG)

	stripe.Unlock()

	globalData.appended.Increment()

	status := compliance.Evaluate(arg.PressurePSIG, segment.MAOPPSIG)
	alert, transient := compliance.Classify(arg.PressurePSIG, segment.MAOPPSIG, windowAvg)

	globalData.log.Infof("append: segment: %s reading: %d pressure: %.2f status: %s alert: %s",
		arg.SegmentID, readingID, arg.PressurePSIG, status, alert)

	_, err = audit.Record(audit.Event{
		Timestamp:     timestamp,
		UserID:        arg.RecordedBy,
		EventType:     audit.EventReadingAppended,
		TableAffected: string(storage.Pool.Readings.Table()),
		RecordID:      fmt.Sprintf("%d", readingID),
		Details:       compliance.Describe(status, alert, arg.PressurePSIG, segment.MAOPPSIG),
	})
	if nil != err {
		globalData.log.Errorf("append audit error: %s", err)
	}

	if !transient && (compliance.StatusCritical == status || compliance.StatusViolation == status) {
		globalData.log.Warnf("sustained %s on segment: %s at %.2f PSIG", status, arg.SegmentID, arg.PressurePSIG)
	}

	return r, nil
}

// append a sample to the segment window and return the resulting
// moving average, pruning samples older than the window span
//
// caller holds the segment stripe
func recordSample(segmentID string, timestamp time.Time, pressure float64) float64 {
	globalData.Lock()
	defer globalData.Unlock()

	cutoff := timestamp.Add(-compliance.Window())

	samples := globalData.windows[segmentID]
	kept := samples[:0]
	for _, s := range samples {
		if !s.timestamp.Before(cutoff) {
			kept = append(kept, s)
		}
	}
	kept = append(kept, windowSample{timestamp: timestamp, pressure: pressure})
	globalData.windows[segmentID] = kept

	sum := 0.0
	for _, s := range kept {
		sum += s.pressure
	}
	return sum / float64(len(kept))
}
