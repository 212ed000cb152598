// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package audit - the immutable audit trail
//
// every ledger event leaves an entry here after its own commit; the
// entries live in a guarded pool so they can never be edited or
// removed.  Denied mutations caught by the immutability guard are
// recorded through a storage hook as IMMUTABILITY_DENIED.
package audit

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/clearline-inc/ledgerd/fault"
	"github.com/clearline-inc/ledgerd/guard"
	"github.com/clearline-inc/ledgerd/storage"
)

// event types
const (
	EventReadingAppended         = "READING_APPENDED"
	EventNoteCreated             = "NOTE_CREATED"
	EventNoteSuperseded          = "NOTE_SUPERSEDED"
	EventQIStatusChanged         = "QI_STATUS_CHANGED"
	EventOperatorAcknowledgment  = "OPERATOR_ACKNOWLEDGMENT"
	EventImmutabilityDenied      = "IMMUTABILITY_DENIED"
	EventChainVerified           = "CHAIN_VERIFIED"
	EventChainBroken             = "CHAIN_BROKEN"
)

// Event - input to Record
type Event struct {
	Timestamp     time.Time // zero means now
	UserID        uint64
	EventType     string
	TableAffected string
	RecordID      string
	Details       string
	ChangeReason  string
}

// Entry - one stored audit trail row
type Entry struct {
	EntryID       uint64    `json:"entryId"`
	Timestamp     time.Time `json:"timestamp"`
	UserID        uint64    `json:"userId"`
	EventType     string    `json:"eventType"`
	TableAffected string    `json:"tableAffected"`
	RecordID      string    `json:"recordId"`
	Details       string    `json:"details,omitempty"`
	ChangeReason  string    `json:"changeReason,omitempty"`
}

var globalData struct {
	sync.Mutex
	log         *logger.L
	initialised bool
}

// Initialise - open the audit log and hook guard denials
func Initialise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	globalData.log = logger.New("audit")
	globalData.log.Info("starting…")

	storage.RegisterDeniedHook(recordDenial)

	globalData.initialised = true
	return nil
}

// Finalise - shutdown the audit log
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	globalData.initialised = false
	return nil
}

// Record - append an entry to the audit trail
//
// only malformed input can fail; entry identifiers are allocated in
// commit order
func Record(event Event) (*Entry, error) {
	if "" == event.EventType {
		return nil, fault.MissingEventType
	}
	if "" == event.TableAffected {
		return nil, fault.MissingTableName
	}

	timestamp := event.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	entryID, err := storage.NextID("audit")
	if nil != err {
		return nil, err
	}

	entry := &Entry{
		EntryID:       entryID,
		Timestamp:     timestamp,
		UserID:        event.UserID,
		EventType:     event.EventType,
		TableAffected: event.TableAffected,
		RecordID:      event.RecordID,
		Details:       event.Details,
		ChangeReason:  event.ChangeReason,
	}

	buffer, err := json.Marshal(entry)
	if nil != err {
		return nil, fault.CanonicalEncodingFailed
	}

	err = storage.Pool.Audit.Put(storage.Uint64Key(entryID), buffer)
	if nil != err {
		return nil, err
	}

	globalData.Lock()
	if nil != globalData.log {
		globalData.log.Infof("%s: table: %s record: %s user: %d", entry.EventType, entry.TableAffected, entry.RecordID, entry.UserID)
	}
	globalData.Unlock()

	return entry, nil
}

// storage hook: a guard denial becomes an audit entry
func recordDenial(op guard.Operation, table guard.Table, key []byte, reason error) {
	_, err := Record(Event{
		EventType:     EventImmutabilityDenied,
		TableAffected: string(table),
		RecordID:      fmt.Sprintf("%x", key),
		Details:       fmt.Sprintf("operation: %s denied: %s", op, reason),
	})
	if nil != err {
		globalData.Lock()
		if nil != globalData.log {
			globalData.log.Errorf("denial record error: %s", err)
		}
		globalData.Unlock()
	}
}
