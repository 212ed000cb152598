// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package reference - registry of pipeline segments, sensors and users
//
// reference data is an external collaborator of the ledger, not part of
// sealed history; rows live in plain keyed pools and may be updated
package reference

import (
	"encoding/json"
	"time"

	"github.com/clearline-inc/ledgerd/fault"
	"github.com/clearline-inc/ledgerd/storage"
)

// Segment - a registered pipeline segment
type Segment struct {
	SegmentID           string  `json:"segmentId"`
	Name                string  `json:"name"`
	PipeGrade           string  `json:"pipeGrade"`
	DiameterInches      float64 `json:"diameterInches"`
	WallThicknessInches float64 `json:"wallThicknessInches"`
	SeamType            string  `json:"seamType"`
	HeatNumber          string  `json:"heatNumber"`
	Manufacturer        string  `json:"manufacturer"`
	MTRLink             string  `json:"mtrLink"`
	Latitude            float64 `json:"latitude"`
	Longitude           float64 `json:"longitude"`
	MAOPPSIG            float64 `json:"maopPsig"`
	ClassLocation       string  `json:"classLocation"`
	Jurisdiction        string  `json:"jurisdiction"`
}

// Sensor - a registered pressure transmitter
type Sensor struct {
	SensorID            uint64    `json:"sensorId"`
	SerialNumber        string    `json:"serialNumber"`
	SegmentID           string    `json:"segmentId"`
	LastCalibrationDate time.Time `json:"lastCalibrationDate"`
	CalibrationCertLink string    `json:"calibrationCertLink"`
	CalibratedBy        string    `json:"calibratedBy"`
	HealthScore         int       `json:"healthScore"`
}

// User - a registered operator, engineer or inspector
type User struct {
	UserID    uint64 `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// SegmentResolver - lookup interface consumed by the ledger
type SegmentResolver interface {
	Segment(segmentID string) (*Segment, error)
}

// SensorResolver - lookup interface consumed by the ledger
type SensorResolver interface {
	Sensor(sensorID uint64) (*Sensor, error)
}

// UserResolver - lookup interface consumed by the ledger and
// reconciliation
type UserResolver interface {
	User(userID uint64) (*User, error)
}

// Store - the bundled store-backed resolver implementation
type Store struct{}

// RegisterSegment - add a new pipeline segment
func RegisterSegment(segment *Segment) error {
	if "" == segment.SegmentID {
		return fault.MissingSegmentIdentifier
	}
	if segment.MAOPPSIG <= 0 {
		return fault.MaximumPressureInvalid
	}

	key := []byte(segment.SegmentID)
	if storage.Pool.Assets.Has(key) {
		return fault.SegmentAlreadyRegistered
	}

	buffer, err := json.Marshal(segment)
	if nil != err {
		return fault.CanonicalEncodingFailed
	}
	return storage.Pool.Assets.Put(key, buffer)
}

// GetSegment - fetch a segment by identifier
func GetSegment(segmentID string) (*Segment, error) {
	buffer := storage.Pool.Assets.Get([]byte(segmentID))
	if nil == buffer {
		return nil, fault.SegmentNotFound
	}
	segment := &Segment{}
	err := json.Unmarshal(buffer, segment)
	if nil != err {
		return nil, fault.CanonicalEncodingFailed
	}
	return segment, nil
}

// Segments - all registered segments in identifier order
func Segments() ([]Segment, error) {
	result := []Segment{}
	err := storage.Pool.Assets.NewFetchCursor().Map(func(key []byte, value []byte) error {
		segment := Segment{}
		e := json.Unmarshal(value, &segment)
		if nil != e {
			return fault.CanonicalEncodingFailed
		}
		result = append(result, segment)
		return nil
	})
	if nil != err {
		return nil, err
	}
	return result, nil
}

// RegisterSensor - add a new sensor, allocating its identifier
//
// serial numbers are unique across the fleet
func RegisterSensor(sensor *Sensor) (uint64, error) {
	if "" == sensor.SegmentID {
		return 0, fault.MissingSegmentIdentifier
	}
	_, err := GetSegment(sensor.SegmentID)
	if nil != err {
		return 0, err
	}

	duplicate := false
	err = storage.Pool.Sensors.NewFetchCursor().Map(func(key []byte, value []byte) error {
		existing := Sensor{}
		e := json.Unmarshal(value, &existing)
		if nil != e {
			return fault.CanonicalEncodingFailed
		}
		if existing.SerialNumber == sensor.SerialNumber {
			duplicate = true
		}
		return nil
	})
	if nil != err {
		return 0, err
	}
	if duplicate {
		return 0, fault.SerialAlreadyRegistered
	}

	sensorID, err := storage.NextID("sensor")
	if nil != err {
		return 0, err
	}
	sensor.SensorID = sensorID

	buffer, err := json.Marshal(sensor)
	if nil != err {
		return 0, fault.CanonicalEncodingFailed
	}
	err = storage.Pool.Sensors.Put(storage.Uint64Key(sensorID), buffer)
	if nil != err {
		return 0, err
	}
	return sensorID, nil
}

// GetSensor - fetch a sensor by identifier
func GetSensor(sensorID uint64) (*Sensor, error) {
	buffer := storage.Pool.Sensors.Get(storage.Uint64Key(sensorID))
	if nil == buffer {
		return nil, fault.SensorNotFound
	}
	sensor := &Sensor{}
	err := json.Unmarshal(buffer, sensor)
	if nil != err {
		return nil, fault.CanonicalEncodingFailed
	}
	return sensor, nil
}

// SensorForSegment - the sensor attached to a segment
func SensorForSegment(segmentID string) (*Sensor, error) {
	var found *Sensor
	err := storage.Pool.Sensors.NewFetchCursor().Map(func(key []byte, value []byte) error {
		sensor := Sensor{}
		e := json.Unmarshal(value, &sensor)
		if nil != e {
			return fault.CanonicalEncodingFailed
		}
		if nil == found && sensor.SegmentID == segmentID {
			found = &sensor
		}
		return nil
	})
	if nil != err {
		return nil, err
	}
	if nil == found {
		return nil, fault.SensorNotFound
	}
	return found, nil
}

// RegisterUser - add a new user, allocating its identifier
//
// email addresses are unique
func RegisterUser(user *User) (uint64, error) {
	duplicate := false
	err := storage.Pool.Users.NewFetchCursor().Map(func(key []byte, value []byte) error {
		existing := User{}
		e := json.Unmarshal(value, &existing)
		if nil != e {
			return fault.CanonicalEncodingFailed
		}
		if existing.Email == user.Email {
			duplicate = true
		}
		return nil
	})
	if nil != err {
		return 0, err
	}
	if duplicate {
		return 0, fault.EmailAlreadyRegistered
	}

	userID, err := storage.NextID("user")
	if nil != err {
		return 0, err
	}
	user.UserID = userID

	buffer, err := json.Marshal(user)
	if nil != err {
		return 0, fault.CanonicalEncodingFailed
	}
	err = storage.Pool.Users.Put(storage.Uint64Key(userID), buffer)
	if nil != err {
		return 0, err
	}
	return userID, nil
}

// GetUser - fetch a user by identifier
func GetUser(userID uint64) (*User, error) {
	buffer := storage.Pool.Users.Get(storage.Uint64Key(userID))
	if nil == buffer {
		return nil, fault.UserNotFound
	}
	user := &User{}
	err := json.Unmarshal(buffer, user)
	if nil != err {
		return nil, fault.CanonicalEncodingFailed
	}
	return user, nil
}

// resolver interface implementations

// Segment - SegmentResolver
func (s Store) Segment(segmentID string) (*Segment, error) {
	return GetSegment(segmentID)
}

// Sensor - SensorResolver
func (s Store) Sensor(sensorID uint64) (*Sensor, error) {
	return GetSensor(sensorID)
}

// User - UserResolver
func (s Store) User(userID uint64) (*User, error) {
	return GetUser(userID)
}
