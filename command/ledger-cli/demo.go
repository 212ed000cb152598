// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli"

	"github.com/clearline-inc/ledgerd/compliance"
	"github.com/clearline-inc/ledgerd/ledger"
	"github.com/clearline-inc/ledgerd/reading"
	"github.com/clearline-inc/ledgerd/reference"
)

// the drift story timeline
//
// 10:00 - all segments normal
// 10:02 - SEG-02 crosses 90% MAOP: WARNING
// 10:03 - SEG-01 transient spike, filtered by the averaging window
// 10:07 - SEG-02 crosses 95% MAOP: CRITICAL
// 10:08 - operator acknowledges
// 10:09 - SEG-04 transient spike, filtered by the averaging window
// 10:12 - SEG-02 crosses 100% MAOP: VIOLATION

type demoStep struct {
	minutes   int
	pressures map[string]float64
}

var demoSegments = []reference.Segment{
	{SegmentID: "SEG-01", Name: "Mainline South", PipeGrade: "X52", DiameterInches: 24.000, WallThicknessInches: 0.3750, SeamType: "ERW", HeatNumber: "H2024-001", Manufacturer: "US Steel", MTRLink: "https://clearline.com/mtr/001", Latitude: 34.0522, Longitude: -118.2437, MAOPPSIG: 1000.00, ClassLocation: "Class 1", Jurisdiction: "PHMSA"},
	{SegmentID: "SEG-02", Name: "Mainline North", PipeGrade: "X60", DiameterInches: 24.000, WallThicknessInches: 0.3125, SeamType: "ERW", HeatNumber: "H2024-002", Manufacturer: "US Steel", MTRLink: "https://clearline.com/mtr/002", Latitude: 34.0622, Longitude: -118.2537, MAOPPSIG: 950.00, ClassLocation: "Class 2", Jurisdiction: "PHMSA"},
	{SegmentID: "SEG-03", Name: "Eastern Branch", PipeGrade: "X52", DiameterInches: 16.000, WallThicknessInches: 0.2500, SeamType: "Seamless", HeatNumber: "H2024-003", Manufacturer: "Vallourec", MTRLink: "https://clearline.com/mtr/003", Latitude: 34.0722, Longitude: -118.2637, MAOPPSIG: 875.00, ClassLocation: "Class 1", Jurisdiction: "PHMSA"},
	{SegmentID: "SEG-04", Name: "Western Spur", PipeGrade: "X65", DiameterInches: 20.000, WallThicknessInches: 0.3125, SeamType: "ERW", HeatNumber: "H2024-004", Manufacturer: "TMK IPSCO", MTRLink: "https://clearline.com/mtr/004", Latitude: 34.0822, Longitude: -118.2737, MAOPPSIG: 1100.00, ClassLocation: "Class 1", Jurisdiction: "PHMSA"},
}

var demoSensors = []reference.Sensor{
	{SerialNumber: "PXTR-2401-001", SegmentID: "SEG-01", LastCalibrationDate: time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC), CalibrationCertLink: "https://clearline.com/cal/001", CalibratedBy: "MetroCal Inc", HealthScore: 98},
	{SerialNumber: "PXTR-2401-002", SegmentID: "SEG-02", LastCalibrationDate: time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC), CalibrationCertLink: "https://clearline.com/cal/002", CalibratedBy: "MetroCal Inc", HealthScore: 95},
	{SerialNumber: "PXTR-2401-003", SegmentID: "SEG-03", LastCalibrationDate: time.Date(2025, 12, 18, 0, 0, 0, 0, time.UTC), CalibrationCertLink: "https://clearline.com/cal/003", CalibratedBy: "MetroCal Inc", HealthScore: 99},
	{SerialNumber: "PXTR-2401-004", SegmentID: "SEG-04", LastCalibrationDate: time.Date(2025, 12, 22, 0, 0, 0, 0, time.UTC), CalibrationCertLink: "https://clearline.com/cal/004", CalibratedBy: "MetroCal Inc", HealthScore: 97},
}

var demoUsers = []reference.User{
	{FirstName: "John", LastName: "Operator", Email: "john.operator@clearline.com", Role: "Control Room Operator"},
	{FirstName: "Sarah", LastName: "Engineer", Email: "sarah.engineer@clearline.com", Role: "Pipeline Engineer"},
	{FirstName: "Mike", LastName: "Inspector", Email: "mike.inspector@clearline.com", Role: "Qualified Inspector"},
}

var demoTimeline = []demoStep{
	{0, map[string]float64{"SEG-01": 750.0, "SEG-02": 700.0, "SEG-03": 650.0, "SEG-04": 825.0}},
	{2, map[string]float64{"SEG-01": 755.0, "SEG-02": 855.0, "SEG-03": 652.0, "SEG-04": 828.0}},
	{3, map[string]float64{"SEG-01": 965.0, "SEG-02": 860.0, "SEG-03": 653.0, "SEG-04": 829.0}},
	{4, map[string]float64{"SEG-01": 757.0, "SEG-02": 870.0, "SEG-03": 654.0, "SEG-04": 830.0}},
	{5, map[string]float64{"SEG-01": 758.0, "SEG-02": 880.0, "SEG-03": 655.0, "SEG-04": 830.0}},
	{7, map[string]float64{"SEG-01": 760.0, "SEG-02": 902.5, "SEG-03": 658.0, "SEG-04": 832.0}},
	{9, map[string]float64{"SEG-01": 761.0, "SEG-02": 925.0, "SEG-03": 659.0, "SEG-04": 1070.0}},
	{10, map[string]float64{"SEG-01": 762.0, "SEG-02": 940.0, "SEG-03": 660.0, "SEG-04": 837.0}},
	{12, map[string]float64{"SEG-01": 765.0, "SEG-02": 955.0, "SEG-03": 662.0, "SEG-04": 838.0}},
	{15, map[string]float64{"SEG-01": 768.0, "SEG-02": 960.0, "SEG-03": 665.0, "SEG-04": 840.0}},
}

func runSetupDemo(c *cli.Context, globals globalFlags) error {

	shutdown, err := openLedger(globals)
	if nil != err {
		return err
	}
	defer shutdown()

	fmt.Printf("registering %d segments…\n", len(demoSegments))
	for i := range demoSegments {
		if err := reference.RegisterSegment(&demoSegments[i]); nil != err {
			return err
		}
	}

	fmt.Printf("registering %d sensors…\n", len(demoSensors))
	sensorIDs := make(map[string]uint64, len(demoSensors))
	for i := range demoSensors {
		sensorID, err := reference.RegisterSensor(&demoSensors[i])
		if nil != err {
			return err
		}
		sensorIDs[demoSensors[i].SegmentID] = sensorID
	}

	fmt.Printf("registering %d users…\n", len(demoUsers))
	userIDs := make(map[string]uint64, len(demoUsers))
	for i := range demoUsers {
		userID, err := reference.RegisterUser(&demoUsers[i])
		if nil != err {
			return err
		}
		userIDs[demoUsers[i].Email] = userID
	}
	operatorID := userIDs["john.operator@clearline.com"]

	baseTime := time.Date(2026, 1, 18, 10, 0, 0, 0, time.UTC)

	count := 0
	for _, step := range demoTimeline {
		timestamp := baseTime.Add(time.Duration(step.minutes) * time.Minute)

		// the acknowledgment happened at 10:08, between the 10:07
		// critical reading and the 10:09 step
		if 9 == step.minutes {
			_, err := compliance.Acknowledge(
				"SEG-02",
				operatorID,
				"Operator acknowledged CRITICAL alarm on SEG-02 at 95% MAOP (902.5 PSIG). Monitoring pressure trend and preparing mitigation actions.",
				"Compliance requirement: Operator acknowledgment within 15 minutes of CRITICAL threshold",
			)
			if nil != err {
				return err
			}
			fmt.Printf("10:08 operator acknowledgment recorded\n")
		}

		for _, segment := range demoSegments {
			_, err := ledger.Append(ledger.AppendArguments{
				SegmentID:    segment.SegmentID,
				SensorID:     sensorIDs[segment.SegmentID],
				Timestamp:    timestamp,
				PressurePSIG: step.pressures[segment.SegmentID],
				RecordedBy:   operatorID,
				DataSource:   "SCADA",
				DataQuality:  reading.QualityGood,
			})
			if nil != err {
				return err
			}
			count += 1
		}
	}

	fmt.Printf("sealed %d readings across %d segments\n", count, len(demoSegments))
	fmt.Printf("drift story: SEG-02 sustained climb to violation, transient spikes on SEG-01 and SEG-04\n")
	return nil
}
