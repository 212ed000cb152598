// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package reconciliation - engineering reconciliation note threads
//
// corrections never replace a note; a new version is inserted and the
// predecessor is flipped to SUPERSEDED with a forward reference, both
// in one atomic batch.  Review state advances in place through a small
// QI state machine; everything else about a committed version is
// sealed.
package reconciliation

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	cache "github.com/patrickmn/go-cache"

	"github.com/clearline-inc/ledgerd/audit"
	"github.com/clearline-inc/ledgerd/fault"
	"github.com/clearline-inc/ledgerd/reading"
	"github.com/clearline-inc/ledgerd/reference"
	"github.com/clearline-inc/ledgerd/storage"
)

// number of thread serialisation stripes
const stripeCount = 64

// head cache lifetimes
const (
	headExpiry  = 5 * time.Minute
	headCleanup = 10 * time.Minute
)

var globalData struct {
	sync.RWMutex
	log *logger.L

	users reference.UserResolver

	// threadRootID → *Note of the CURRENT version
	heads *cache.Cache

	stripes [stripeCount]sync.Mutex

	// set once during initialise
	initialised bool
}

// Initialise - set up the reconciliation system
func Initialise(users reference.UserResolver) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	globalData.log = logger.New("reconciliation")
	globalData.log.Info("starting…")

	globalData.users = users
	globalData.heads = cache.New(headExpiry, headCleanup)

	globalData.initialised = true
	return nil
}

// Finalise - shutdown the reconciliation system
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	globalData.heads.Flush()
	globalData.initialised = false
	return nil
}

// CreateNote - open a new reconciliation thread
//
// a non-zero readingID anchors the note to a sealed reading; the
// reading's chain digest is captured so later tampering with the
// subject is detectable from the note alone
func CreateNote(readingID uint64, assetID string, reconcilerID uint64, text string) (*Note, error) {
	if err := checkInitialised(); nil != err {
		return nil, err
	}
	if "" == text {
		return nil, fault.MissingNoteText
	}
	_, err := globalData.users.User(reconcilerID)
	if nil != err {
		return nil, err
	}

	note := &Note{
		ReadingID:     readingID,
		Timestamp:     time.Now().UTC(),
		ReconcilerID:  reconcilerID,
		AssetID:       assetID,
		QIStatus:      QIPending,
		NoteText:      text,
		VersionNumber: 1,
		Status:        StatusCurrent,
	}

	if 0 != readingID {
		buffer := storage.Pool.Readings.Get(storage.Uint64Key(readingID))
		if nil == buffer {
			return nil, fault.ReadingNotFound
		}
		subject, err := reading.Unpack(buffer)
		if nil != err {
			return nil, err
		}
		note.OriginalDataHash = subject.Digest
	}

	noteID, err := storage.NextID("note")
	if nil != err {
		return nil, err
	}
	note.NoteID = noteID
	note.ThreadRootID = noteID

	note.NoteHash, err = note.Seal()
	if nil != err {
		return nil, err
	}

	packed, err := note.Pack()
	if nil != err {
		return nil, err
	}

	trx := storage.NewTransaction()
	err = trx.Put(storage.Pool.Notes, storage.Uint64Key(noteID), packed)
	if nil == err {
		err = trx.Put(storage.Pool.Threads, threadVersionKey(noteID, 1), storage.Uint64Key(noteID))
	}
	if nil == err {
		err = trx.Put(storage.Pool.ThreadHeads, storage.Uint64Key(noteID), storage.Uint64Key(noteID))
	}
	if nil != err {
		trx.Abort()
		return nil, err
	}
	err = trx.Commit()
	if nil != err {
		return nil, err
	}

	cacheHead(note)

	globalData.log.Infof("note created: %d reading: %d by: %d", noteID, readingID, reconcilerID)

	_, err = audit.Record(audit.Event{
		UserID:        reconcilerID,
		EventType:     audit.EventNoteCreated,
		TableAffected: string(storage.Pool.Notes.Table()),
		RecordID:      fmt.Sprintf("%d", noteID),
		Details:       fmt.Sprintf("reading: %d version: 1", readingID),
	})
	if nil != err {
		globalData.log.Errorf("create audit error: %s", err)
	}

	return note, nil
}

// Supersede - correct a note by appending a replacement version
//
// only the CURRENT version of a thread can be superseded; a caller
// holding a stale version gets fault.NoteSuperseded and must re-read.
// The new version and the predecessor flip commit in one batch, so no
// observer ever sees a thread with zero or two CURRENT versions.
func Supersede(noteID uint64, newText string, reconcilerID uint64, reason string) (*Note, error) {
	if err := checkInitialised(); nil != err {
		return nil, err
	}
	if "" == newText {
		return nil, fault.MissingNoteText
	}
	_, err := globalData.users.User(reconcilerID)
	if nil != err {
		return nil, err
	}

	predecessor, err := getNote(noteID)
	if nil != err {
		return nil, err
	}

	stripe := stripeFor(predecessor.ThreadRootID)
	stripe.Lock()
	defer stripe.Unlock()

	// re-read under the stripe: a racing supersede may have won
	predecessor, err = getNote(noteID)
	if nil != err {
		return nil, err
	}
	if StatusSuperseded == predecessor.Status {
		return nil, fault.NoteSuperseded
	}

	successor := &Note{
		ReadingID:        predecessor.ReadingID,
		Timestamp:        time.Now().UTC(),
		ReconcilerID:     reconcilerID,
		AssetID:          predecessor.AssetID,
		QIStatus:         QIPending,
		NoteText:         newText,
		VersionNumber:    predecessor.VersionNumber + 1,
		Status:           StatusCurrent,
		ThreadRootID:     predecessor.ThreadRootID,
		OriginalDataHash: predecessor.OriginalDataHash,
	}

	successorID, err := storage.NextID("note")
	if nil != err {
		return nil, err
	}
	successor.NoteID = successorID

	successor.NoteHash, err = successor.Seal()
	if nil != err {
		return nil, err
	}

	flipped := *predecessor
	flipped.Status = StatusSuperseded
	flipped.SupersededByID = &successorID

	packedSuccessor, err := successor.Pack()
	if nil != err {
		return nil, err
	}
	packedFlipped, err := flipped.Pack()
	if nil != err {
		return nil, err
	}

	trx := storage.NewTransaction()
	err = trx.Put(storage.Pool.Notes, storage.Uint64Key(successorID), packedSuccessor)
	if nil == err {
		// the one allowlisted update: status flip + forward reference
		err = trx.Put(storage.Pool.Notes, storage.Uint64Key(noteID), packedFlipped)
	}
	if nil == err {
		err = trx.Put(storage.Pool.Threads, threadVersionKey(successor.ThreadRootID, successor.VersionNumber), storage.Uint64Key(successorID))
	}
	if nil == err {
		err = trx.Put(storage.Pool.ThreadHeads, storage.Uint64Key(successor.ThreadRootID), storage.Uint64Key(successorID))
	}
	if nil != err {
		trx.Abort()
		return nil, err
	}
	err = trx.Commit()
	if nil != err {
		return nil, err
	}

	cacheHead(successor)

	globalData.log.Infof("note superseded: %d → %d by: %d", noteID, successorID, reconcilerID)

	_, err = audit.Record(audit.Event{
		UserID:        reconcilerID,
		EventType:     audit.EventNoteSuperseded,
		TableAffected: string(storage.Pool.Notes.Table()),
		RecordID:      fmt.Sprintf("%d", noteID),
		Details:       fmt.Sprintf("superseded by: %d version: %d", successorID, successor.VersionNumber),
		ChangeReason:  reason,
	})
	if nil != err {
		globalData.log.Errorf("supersede audit error: %s", err)
	}

	return successor, nil
}

// AdvanceQIStatus - move the review state of the current head
//
// the move must be legal in the review state machine and the note must
// still be the CURRENT version of its thread
func AdvanceQIStatus(noteID uint64, newStatus QIStatus, actorID uint64) (*Note, error) {
	if err := checkInitialised(); nil != err {
		return nil, err
	}
	if !ValidQIStatus(newStatus) {
		return nil, fault.InvalidTransition
	}
	_, err := globalData.users.User(actorID)
	if nil != err {
		return nil, err
	}

	note, err := getNote(noteID)
	if nil != err {
		return nil, err
	}

	stripe := stripeFor(note.ThreadRootID)
	stripe.Lock()
	defer stripe.Unlock()

	note, err = getNote(noteID)
	if nil != err {
		return nil, err
	}
	if StatusSuperseded == note.Status {
		return nil, fault.NoteSuperseded
	}
	if !CanTransition(note.QIStatus, newStatus) {
		return nil, fault.InvalidTransition
	}

	oldStatus := note.QIStatus
	note.QIStatus = newStatus

	packed, err := note.Pack()
	if nil != err {
		return nil, err
	}
	err = storage.Pool.Notes.Put(storage.Uint64Key(noteID), packed)
	if nil != err {
		return nil, err
	}

	cacheHead(note)

	globalData.log.Infof("note %d review: %s → %s by: %d", noteID, oldStatus, newStatus, actorID)

	_, err = audit.Record(audit.Event{
		UserID:        actorID,
		EventType:     audit.EventQIStatusChanged,
		TableAffected: string(storage.Pool.Notes.Table()),
		RecordID:      fmt.Sprintf("%d", noteID),
		Details:       fmt.Sprintf("%s → %s", oldStatus, newStatus),
	})
	if nil != err {
		globalData.log.Errorf("review audit error: %s", err)
	}

	return note, nil
}

// GetNote - fetch one note version by identifier
func GetNote(noteID uint64) (*Note, error) {
	if err := checkInitialised(); nil != err {
		return nil, err
	}
	return getNote(noteID)
}

// CurrentVersion - the CURRENT version of a thread
//
// constant time via the thread head index, fronted by a small cache
func CurrentVersion(threadRootID uint64) (*Note, error) {
	if err := checkInitialised(); nil != err {
		return nil, err
	}

	if cached, found := globalData.heads.Get(headKey(threadRootID)); found {
		note := cached.(Note)
		return &note, nil
	}

	headValue := storage.Pool.ThreadHeads.Get(storage.Uint64Key(threadRootID))
	if nil == headValue {
		return nil, fault.NoteNotFound
	}
	headID, ok := storage.KeyUint64(headValue)
	if !ok {
		return nil, fault.NoteNotFound
	}

	note, err := getNote(headID)
	if nil != err {
		return nil, err
	}

	cacheHead(note)
	return note, nil
}

// Thread - every version of a thread in version order
func Thread(threadRootID uint64) ([]Note, error) {
	if err := checkInitialised(); nil != err {
		return nil, err
	}

	prefix := storage.Uint64Key(threadRootID)
	cursor := storage.Pool.Threads.NewFetchCursor()
	cursor.Seek(prefix)

	notes := []Note{}
walk:
	for {
		elements, err := cursor.Fetch(10)
		if nil != err {
			return nil, err
		}
		if 0 == len(elements) {
			break walk
		}
		for _, element := range elements {
			if !bytes.HasPrefix(element.Key, prefix) {
				break walk
			}
			noteID, ok := storage.KeyUint64(element.Value)
			if !ok {
				return nil, fault.NoteNotFound
			}
			note, err := getNote(noteID)
			if nil != err {
				return nil, err
			}
			notes = append(notes, *note)
		}
	}

	if 0 == len(notes) {
		return nil, fault.NoteNotFound
	}
	return notes, nil
}

// internal lookup without the initialise check
func getNote(noteID uint64) (*Note, error) {
	buffer := storage.Pool.Notes.Get(storage.Uint64Key(noteID))
	if nil == buffer {
		return nil, fault.NoteNotFound
	}
	return Unpack(buffer)
}

func checkInitialised() error {
	globalData.RLock()
	defer globalData.RUnlock()
	if !globalData.initialised {
		return fault.NotInitialised
	}
	return nil
}

func stripeFor(threadRootID uint64) *sync.Mutex {
	h := fnv.New32a()
	h.Write(storage.Uint64Key(threadRootID))
	return &globalData.stripes[h.Sum32()%stripeCount]
}

func headKey(threadRootID uint64) string {
	return fmt.Sprintf("%d", threadRootID)
}

func cacheHead(note *Note) {
	globalData.heads.Set(headKey(note.ThreadRootID), *note, headExpiry)
}

// thread index key: rootID(8) ∥ version(8)
func threadVersionKey(threadRootID uint64, version uint64) []byte {
	key := make([]byte, 0, 16)
	key = append(key, storage.Uint64Key(threadRootID)...)
	return append(key, storage.Uint64Key(version)...)
}
