// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"bytes"
	"context"
	"fmt"

	"github.com/clearline-inc/ledgerd/audit"
	"github.com/clearline-inc/ledgerd/chaindigest"
	"github.com/clearline-inc/ledgerd/fault"
	"github.com/clearline-inc/ledgerd/reading"
	"github.com/clearline-inc/ledgerd/storage"
)

// VerifyResult - outcome of walking one segment chain
type VerifyResult struct {
	SegmentID    string `json:"segmentId"`
	Valid        bool   `json:"valid"`
	FirstBreakID uint64 `json:"firstBreakId,omitempty"`
	Checked      uint64 `json:"checked"`
}

// how many index entries to pull from storage per fetch
const verifyBatchSize = 100

// VerifyChain - recompute one segment chain from the seed digest
//
// walks the stored records in sequence order, recomputing every link;
// the first record whose digests fail to reproduce is reported and the
// walk stops.  The chain end must also match the stored tip, so a
// tampered tip cannot hide a truncated chain.  A break is recorded in
// the audit trail.
func VerifyChain(segmentID string) (VerifyResult, error) {
	globalData.RLock()
	initialised := globalData.initialised
	globalData.RUnlock()

	if !initialised {
		return VerifyResult{}, fault.NotInitialised
	}
	if "" == segmentID {
		return VerifyResult{}, fault.MissingSegmentIdentifier
	}

	result := VerifyResult{
		SegmentID: segmentID,
		Valid:     true,
	}

	prefix := append([]byte(segmentID), 0x00)
	previous := chaindigest.Seed
	lastReadingID := uint64(0)

	cursor := storage.Pool.SegmentReadings.NewFetchCursor()
	cursor.Seek(prefix)

walk:
	for {
		elements, err := cursor.Fetch(verifyBatchSize)
		if nil != err {
			return VerifyResult{}, err
		}
		if 0 == len(elements) {
			break walk
		}

		for _, element := range elements {
			if !bytes.HasPrefix(element.Key, prefix) {
				break walk
			}

			readingID, ok := storage.KeyUint64(element.Value)
			if !ok {
				result.Valid = false
				break walk
			}

			pace()

			buffer := storage.Pool.Readings.Get(storage.Uint64Key(readingID))
			if nil == buffer {
				result.Valid = false
				result.FirstBreakID = readingID
				break walk
			}
			r, err := reading.Unpack(buffer)
			if nil != err {
				result.Valid = false
				result.FirstBreakID = readingID
				break walk
			}

			payload, err := r.Payload()
			if nil != err {
				result.Valid = false
				result.FirstBreakID = readingID
				break walk
			}
			recomputed := chaindigest.ForRecord(previous, payload)

			if r.PreviousDigest != previous || r.Digest != recomputed {
				result.Valid = false
				result.FirstBreakID = readingID
				break walk
			}

			previous = recomputed
			lastReadingID = readingID
			result.Checked += 1
			globalData.verified.Increment()
		}
	}

	// the walked chain must end at the stored tip
	if result.Valid {
		tipValue := storage.Pool.SegmentTips.Get([]byte(segmentID))
		if nil != tipValue {
			tip, ok := unpackTip(tipValue)
			if !ok || tip.digest != previous || tip.readingID != lastReadingID {
				result.Valid = false
				result.FirstBreakID = tip.readingID
			}
		} else if result.Checked > 0 {
			result.Valid = false
		}
	}

	if !result.Valid {
		globalData.log.Errorf("chain broken: segment: %s first break: %d checked: %d",
			segmentID, result.FirstBreakID, result.Checked)
		_, err := audit.Record(audit.Event{
			EventType:     audit.EventChainBroken,
			TableAffected: string(storage.Pool.Readings.Table()),
			RecordID:      segmentID,
			Details:       fmt.Sprintf("first break: %d checked: %d", result.FirstBreakID, result.Checked),
		})
		if nil != err {
			globalData.log.Errorf("break audit error: %s", err)
		}
		return result, fault.DigestMismatch
	}

	return result, nil
}

// VerifyAll - verify every segment chain, recording intact chains in
// the audit trail
func VerifyAll() ([]VerifyResult, error) {
	return verifyAll(true)
}

func verifyAll(recordSuccess bool) ([]VerifyResult, error) {
	segmentIDs := []string{}
	err := storage.Pool.SegmentTips.NewFetchCursor().Map(func(key []byte, value []byte) error {
		segmentIDs = append(segmentIDs, string(key))
		return nil
	})
	if nil != err {
		return nil, err
	}

	results := make([]VerifyResult, 0, len(segmentIDs))
	var firstError error
	for _, segmentID := range segmentIDs {
		result, err := VerifyChain(segmentID)
		if nil != err && nil == firstError {
			firstError = err
		}
		if result.Valid && recordSuccess {
			_, auditErr := audit.Record(audit.Event{
				EventType:     audit.EventChainVerified,
				TableAffected: string(storage.Pool.Readings.Table()),
				RecordID:      segmentID,
				Details:       fmt.Sprintf("checked: %d", result.Checked),
			})
			if nil != auditErr {
				globalData.log.Errorf("verify audit error: %s", auditErr)
			}
		}
		results = append(results, result)
	}
	return results, firstError
}

// wait on the verification rate limiter, when one is configured
func pace() {
	globalData.RLock()
	limiter := globalData.limiter
	globalData.RUnlock()

	if nil != limiter {
		_ = limiter.Wait(context.Background())
	}
}
