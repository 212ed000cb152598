// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli"

	"github.com/clearline-inc/ledgerd/reference"
)

func runRegisterSegment(c *cli.Context, globals globalFlags) error {

	shutdown, err := openLedger(globals)
	if nil != err {
		return err
	}
	defer shutdown()

	segment := &reference.Segment{
		SegmentID:    c.String("id"),
		Name:         c.String("name"),
		MAOPPSIG:     c.Float64("maop"),
		PipeGrade:    c.String("grade"),
		Jurisdiction: c.String("jurisdiction"),
	}
	if err := reference.RegisterSegment(segment); nil != err {
		return err
	}

	fmt.Printf("segment: %s registered, MAOP: %.1f PSIG\n", segment.SegmentID, segment.MAOPPSIG)
	return nil
}

func runRegisterSensor(c *cli.Context, globals globalFlags) error {

	shutdown, err := openLedger(globals)
	if nil != err {
		return err
	}
	defer shutdown()

	sensor := &reference.Sensor{
		SerialNumber:        c.String("serial"),
		SegmentID:           c.String("segment"),
		LastCalibrationDate: time.Now().UTC(),
		CalibratedBy:        c.String("calibrated-by"),
		HealthScore:         100,
	}
	sensorID, err := reference.RegisterSensor(sensor)
	if nil != err {
		return err
	}

	fmt.Printf("sensor: %d registered, serial: %s on segment: %s\n", sensorID, sensor.SerialNumber, sensor.SegmentID)
	return nil
}

func runRegisterUser(c *cli.Context, globals globalFlags) error {

	shutdown, err := openLedger(globals)
	if nil != err {
		return err
	}
	defer shutdown()

	user := &reference.User{
		FirstName: c.String("first"),
		LastName:  c.String("last"),
		Email:     c.String("email"),
		Role:      c.String("role"),
	}
	userID, err := reference.RegisterUser(user)
	if nil != err {
		return err
	}

	fmt.Printf("user: %d registered: %s %s <%s> role: %s\n", userID, user.FirstName, user.LastName, user.Email, user.Role)
	return nil
}
