// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger - the append-only pressure reading ledger
//
// each pipeline segment carries its own hash chain: every reading
// commits with the digest of its predecessor folded into its own
// digest, seeded from the zero digest for the first reading of a
// segment.  Appends within a segment are strictly serialised; segments
// never coordinate with each other.
package ledger

import (
	"encoding/binary"
	"hash/fnv"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/clearline-inc/ledgerd/background"
	"github.com/clearline-inc/ledgerd/chaindigest"
	"github.com/clearline-inc/ledgerd/counter"
	"github.com/clearline-inc/ledgerd/fault"
	"github.com/clearline-inc/ledgerd/reference"
	"github.com/clearline-inc/ledgerd/storage"
)

// number of append serialisation stripes
const stripeCount = 64

// tip of one segment chain
type tipData struct {
	readingID uint64
	sequence  uint64
	digest    chaindigest.Digest
}

// recent pressure samples for the transient filter window
type windowSample struct {
	timestamp time.Time
	pressure  float64
}

var globalData struct {
	sync.RWMutex
	log *logger.L

	segments reference.SegmentResolver
	sensors  reference.SensorResolver
	users    reference.UserResolver

	tips    map[string]tipData
	windows map[string][]windowSample

	stripes [stripeCount]sync.Mutex

	appended counter.Counter
	verified counter.Counter

	limiter    *rate.Limiter
	background *background.T

	// set once during initialise
	initialised bool
}

// Initialise - rebuild the tip registry from storage and start the
// periodic verifier
//
// a zero verifyInterval disables the background verifier; verifyRate
// limits how many stored records per second a verification pass reads
func Initialise(
	segments reference.SegmentResolver,
	sensors reference.SensorResolver,
	users reference.UserResolver,
	verifyInterval time.Duration,
	verifyRate float64,
) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	globalData.log = logger.New("ledger")
	globalData.log.Info("starting…")

	globalData.segments = segments
	globalData.sensors = sensors
	globalData.users = users

	globalData.tips = make(map[string]tipData)
	globalData.windows = make(map[string][]windowSample)
	globalData.appended = 0
	globalData.verified = 0

	if verifyRate > 0 {
		globalData.limiter = rate.NewLimiter(rate.Limit(verifyRate), int(verifyRate))
	}

	// rebuild every segment tip
	count := 0
	err := storage.Pool.SegmentTips.NewFetchCursor().Map(func(key []byte, value []byte) error {
		tip, ok := unpackTip(value)
		if !ok {
			return fault.WrongDigestLength
		}
		globalData.tips[string(key)] = tip
		count += 1
		return nil
	})
	if nil != err {
		return err
	}
	globalData.log.Infof("rebuilt %d segment tips", count)

	globalData.initialised = true

	if verifyInterval > 0 {
		processes := background.Processes{
			&verifier{
				log:      logger.New("verifier"),
				interval: verifyInterval,
			},
		}
		globalData.background = background.Start(processes, nil)
	}

	return nil
}

// Finalise - stop background processing
func Finalise() error {
	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.background.Stop()

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	globalData.Lock()
	globalData.initialised = false
	globalData.background = nil
	globalData.Unlock()

	return nil
}

// Tip - current chain position of a segment
//
// a registered segment with no readings yet reports the seed digest
// and a zero reading identifier
func Tip(segmentID string) (chaindigest.Digest, uint64, error) {
	globalData.RLock()
	defer globalData.RUnlock()

	if !globalData.initialised {
		return chaindigest.Digest{}, 0, fault.NotInitialised
	}

	_, err := globalData.segments.Segment(segmentID)
	if nil != err {
		return chaindigest.Digest{}, 0, err
	}

	tip, ok := globalData.tips[segmentID]
	if !ok {
		return chaindigest.Seed, 0, nil
	}
	return tip.digest, tip.readingID, nil
}

// AppendedCount - total readings appended since start
func AppendedCount() uint64 {
	return globalData.appended.Uint64()
}

// VerifiedCount - total records checked by verification since start
func VerifiedCount() uint64 {
	return globalData.verified.Uint64()
}

// stripe selection for a segment identifier
func stripeFor(segmentID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(segmentID))
	return &globalData.stripes[h.Sum32()%stripeCount]
}

// tip record layout: readingID(8) ∥ sequence(8) ∥ digest(32)
func packTip(tip tipData) []byte {
	buffer := make([]byte, 16+chaindigest.Length)
	binary.BigEndian.PutUint64(buffer[0:8], tip.readingID)
	binary.BigEndian.PutUint64(buffer[8:16], tip.sequence)
	copy(buffer[16:], tip.digest[:])
	return buffer
}

func unpackTip(buffer []byte) (tipData, bool) {
	if 16+chaindigest.Length != len(buffer) {
		return tipData{}, false
	}
	tip := tipData{
		readingID: binary.BigEndian.Uint64(buffer[0:8]),
		sequence:  binary.BigEndian.Uint64(buffer[8:16]),
	}
	copy(tip.digest[:], buffer[16:])
	return tip, true
}

// segment index key: segmentID ∥ 0x00 ∥ sequence(8)
//
// the zero separator keeps one segment's range from running into a
// segment whose identifier extends it
func segmentSequenceKey(segmentID string, sequence uint64) []byte {
	key := make([]byte, 0, len(segmentID)+9)
	key = append(key, segmentID...)
	key = append(key, 0x00)
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, sequence)
	return append(key, buffer...)
}
