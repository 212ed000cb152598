// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// ValidationError - caller supplied a malformed or out-of-range value
type ValidationError GenericError

// NotFoundError - a referenced segment, sensor, user, reading or note is not registered
type NotFoundError GenericError

// ImmutabilityError - an attempt to modify or remove committed ledger data
type ImmutabilityError GenericError

// ConflictError - a lost race, recoverable by re-reading current state
type ConflictError GenericError

// TransitionError - an illegal review status move
type TransitionError GenericError

// IntegrityError - verification detected chain damage; not locally recoverable
type IntegrityError GenericError

// EncodingError - canonical serialization failure
type EncodingError GenericError

// ProcessError - internal sequencing or lifecycle failure
type ProcessError GenericError

// ExistsError - a record that must be unique already exists
type ExistsError GenericError

// common errors - keep in alphabetic order
var (
	AlreadyInitialised              = ProcessError("already initialised")
	CanonicalEncodingFailed         = EncodingError("canonical encoding failed")
	DataQualityInvalid              = ValidationError("data quality tag is invalid")
	DeleteNotAllowed                = ImmutabilityError("ledger records cannot be deleted")
	DigestMismatch                  = IntegrityError("chain digest mismatch")
	EmailAlreadyRegistered          = ExistsError("email is already registered")
	IncompatibleDatabaseVersion     = ProcessError("incompatible database version")
	InvalidCount                    = ValidationError("invalid count")
	InvalidCursor                   = ValidationError("invalid cursor")
	InvalidTransition               = TransitionError("invalid review status transition")
	MaximumPressureInvalid          = ValidationError("maximum allowable operating pressure is out of range")
	MissingConfigurationFile        = ValidationError("configuration file is required")
	MissingEventType                = ValidationError("audit event type is required")
	MissingNoteText                 = ValidationError("note text is required")
	MissingRecorder                 = ValidationError("recording source is required")
	MissingSegmentIdentifier        = ValidationError("segment identifier is required")
	MissingTableName                = ValidationError("audit affected table is required")
	NotAvailableDuringResynchronise = ProcessError("not available during resynchronise")
	NotInitialised                  = ProcessError("not initialised")
	NoteNotFound                    = NotFoundError("note not found")
	NoteSuperseded                  = ConflictError("note is already superseded")
	PressureOutOfRange              = ValidationError("pressure value is out of range")
	RateLimiting                    = ProcessError("rate limiting")
	ReadingNotFound                 = NotFoundError("reading not found")
	RecordImmutable                 = ImmutabilityError("ledger records cannot be modified")
	SegmentAlreadyRegistered        = ExistsError("segment is already registered")
	SegmentNotFound                 = NotFoundError("segment not found")
	SensorNotFound                  = NotFoundError("sensor not found")
	SensorSegmentMismatch           = ValidationError("sensor is not attached to segment")
	SerialAlreadyRegistered         = ExistsError("sensor serial number is already registered")
	TransactionInUse                = ProcessError("transaction already in use")
	UserNotFound                    = NotFoundError("user not found")
	WrongDigestLength               = ValidationError("digest length is incorrect")
)

// Error - the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ValidationError) Error() string   { return string(e) }
func (e NotFoundError) Error() string     { return string(e) }
func (e ImmutabilityError) Error() string { return string(e) }
func (e ConflictError) Error() string     { return string(e) }
func (e TransitionError) Error() string   { return string(e) }
func (e IntegrityError) Error() string    { return string(e) }
func (e EncodingError) Error() string     { return string(e) }
func (e ProcessError) Error() string      { return string(e) }
func (e ExistsError) Error() string       { return string(e) }

// IsErrValidation - determine the class of an error
func IsErrValidation(e error) bool { _, ok := e.(ValidationError); return ok }

// IsErrNotFound - check for a missing reference
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }

// IsErrImmutability - check for a denied mutation
func IsErrImmutability(e error) bool { _, ok := e.(ImmutabilityError); return ok }

// IsErrConflict - check for a lost race
func IsErrConflict(e error) bool { _, ok := e.(ConflictError); return ok }

// IsErrTransition - check for an illegal review status move
func IsErrTransition(e error) bool { _, ok := e.(TransitionError); return ok }

// IsErrIntegrity - check for chain damage
func IsErrIntegrity(e error) bool { _, ok := e.(IntegrityError); return ok }

// IsErrEncoding - check for a canonical encoding failure
func IsErrEncoding(e error) bool { _, ok := e.(EncodingError); return ok }

// IsErrProcess - check for an internal sequencing failure
func IsErrProcess(e error) bool { _, ok := e.(ProcessError); return ok }

// IsErrExists - check for a uniqueness failure
func IsErrExists(e error) bool { _, ok := e.(ExistsError); return ok }
