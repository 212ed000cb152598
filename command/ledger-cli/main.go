// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/urfave/cli"
)

type globalFlags struct {
	verbose  bool
	config   string
	operator uint64
}

func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	globals := globalFlags{}

	app := cli.NewApp()
	app.Name = "ledger-cli"
	app.Usage = "inspect and populate a pressure ledger database"
	app.Version = Version
	app.HideVersion = false
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:        "verbose, v",
			Usage:       " verbose result",
			Destination: &globals.verbose,
		},
		cli.StringFlag{
			Name:        "config, c",
			Value:       "",
			Usage:       "*ledger-cli config file",
			Destination: &globals.config,
		},
		cli.Uint64Flag{
			Name:        "operator, u",
			Value:       0,
			Usage:       " acting user id for commands that record history",
			Destination: &globals.operator,
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "append",
			Usage:     "seal one pressure reading onto a segment chain",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "segment, s",
					Usage: "*segment id, e.g. SEG-01",
				},
				cli.Uint64Flag{
					Name:  "sensor, n",
					Usage: "*sensor id",
				},
				cli.Float64Flag{
					Name:  "pressure, p",
					Usage: "*pressure in PSIG",
				},
				cli.StringFlag{
					Name:  "source, S",
					Value: "MANUAL_ENTRY",
					Usage: " data source [MANUAL_ENTRY]",
				},
				cli.StringFlag{
					Name:  "quality, q",
					Value: "GOOD",
					Usage: " data quality [GOOD]",
				},
				cli.StringFlag{
					Name:  "notes",
					Usage: " free-form operator notes",
				},
			},
			Action: func(c *cli.Context) error {
				return runAppend(c, globals)
			},
		},
		{
			Name:      "tip",
			Usage:     "show the sealed tip of a segment chain",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "segment, s",
					Usage: "*segment id",
				},
			},
			Action: func(c *cli.Context) error {
				return runTip(c, globals)
			},
		},
		{
			Name:  "verify",
			Usage: "recompute a segment chain, or all chains",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "segment, s",
					Usage: " segment id [all segments]",
				},
			},
			Action: func(c *cli.Context) error {
				return runVerify(c, globals)
			},
		},
		{
			Name:      "note",
			Usage:     "engineering reconciliation notes",
			ArgsUsage: "\n   (* = required)",
			Subcommands: []cli.Command{
				{
					Name:  "create",
					Usage: "open a new reconciliation thread",
					Flags: []cli.Flag{
						cli.Uint64Flag{
							Name:  "reading, r",
							Usage: " reading id the note anchors to",
						},
						cli.StringFlag{
							Name:  "asset, a",
							Usage: " asset id the note refers to",
						},
						cli.StringFlag{
							Name:  "text, t",
							Usage: "*note text",
						},
					},
					Action: func(c *cli.Context) error {
						return runNoteCreate(c, globals)
					},
				},
				{
					Name:  "supersede",
					Usage: "replace the current version of a note",
					Flags: []cli.Flag{
						cli.Uint64Flag{
							Name:  "note, n",
							Usage: "*note id to supersede",
						},
						cli.StringFlag{
							Name:  "text, t",
							Usage: "*replacement text",
						},
						cli.StringFlag{
							Name:  "reason, R",
							Usage: "*change reason for the audit trail",
						},
					},
					Action: func(c *cli.Context) error {
						return runNoteSupersede(c, globals)
					},
				},
				{
					Name:  "advance",
					Usage: "advance the QI review status of a note",
					Flags: []cli.Flag{
						cli.Uint64Flag{
							Name:  "note, n",
							Usage: "*note id",
						},
						cli.StringFlag{
							Name:  "status, s",
							Usage: "*new status: Pending, QI_Reviewing, QI_Approved, QI_Rejected, Closed",
						},
					},
					Action: func(c *cli.Context) error {
						return runNoteAdvance(c, globals)
					},
				},
				{
					Name:  "show",
					Usage: "display one note version",
					Flags: []cli.Flag{
						cli.Uint64Flag{
							Name:  "note, n",
							Usage: "*note id",
						},
					},
					Action: func(c *cli.Context) error {
						return runNoteShow(c, globals)
					},
				},
				{
					Name:  "thread",
					Usage: "display the full supersede chain of a thread",
					Flags: []cli.Flag{
						cli.Uint64Flag{
							Name:  "root, n",
							Usage: "*thread root note id",
						},
					},
					Action: func(c *cli.Context) error {
						return runNoteThread(c, globals)
					},
				},
			},
		},
		{
			Name:  "audit",
			Usage: "query the audit trail",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "table, t",
					Usage: " restrict to one table",
				},
				cli.StringFlag{
					Name:  "record, r",
					Usage: " restrict to one record id (needs --table)",
				},
				cli.Uint64Flag{
					Name:  "actor, a",
					Usage: " restrict to one acting user id",
				},
				cli.StringFlag{
					Name:  "from",
					Usage: " RFC3339 start of time range",
				},
				cli.StringFlag{
					Name:  "to",
					Usage: " RFC3339 end of time range",
				},
			},
			Action: func(c *cli.Context) error {
				return runAudit(c, globals)
			},
		},
		{
			Name:      "acknowledge",
			Usage:     "record an operator acknowledgment of an alert",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "segment, s",
					Usage: "*segment id",
				},
				cli.StringFlag{
					Name:  "details, d",
					Usage: "*what was acknowledged",
				},
				cli.StringFlag{
					Name:  "reason, R",
					Usage: "*operator reason",
				},
			},
			Action: func(c *cli.Context) error {
				return runAcknowledge(c, globals)
			},
		},
		{
			Name:  "register",
			Usage: "register reference data",
			Subcommands: []cli.Command{
				{
					Name:  "segment",
					Usage: "register a pipeline segment",
					Flags: []cli.Flag{
						cli.StringFlag{Name: "id, s", Usage: "*segment id"},
						cli.StringFlag{Name: "name, n", Usage: " descriptive name"},
						cli.Float64Flag{Name: "maop, m", Usage: "*maximum allowable operating pressure PSIG"},
						cli.StringFlag{Name: "grade, g", Usage: " pipe grade, e.g. API 5L X52"},
						cli.StringFlag{Name: "jurisdiction, j", Usage: " regulatory jurisdiction"},
					},
					Action: func(c *cli.Context) error {
						return runRegisterSegment(c, globals)
					},
				},
				{
					Name:  "sensor",
					Usage: "register a pressure transmitter",
					Flags: []cli.Flag{
						cli.StringFlag{Name: "serial, n", Usage: "*transmitter serial number"},
						cli.StringFlag{Name: "segment, s", Usage: "*segment the sensor is mounted on"},
						cli.StringFlag{Name: "calibrated-by", Usage: " calibration laboratory"},
					},
					Action: func(c *cli.Context) error {
						return runRegisterSensor(c, globals)
					},
				},
				{
					Name:  "user",
					Usage: "register an operator, engineer or inspector",
					Flags: []cli.Flag{
						cli.StringFlag{Name: "first", Usage: "*first name"},
						cli.StringFlag{Name: "last", Usage: "*last name"},
						cli.StringFlag{Name: "email, e", Usage: "*email address"},
						cli.StringFlag{Name: "role, r", Usage: "*operator|engineer|inspector"},
					},
					Action: func(c *cli.Context) error {
						return runRegisterUser(c, globals)
					},
				},
			},
		},
		{
			Name:  "setup-demo",
			Usage: "load the demonstration data set into an empty database",
			Action: func(c *cli.Context) error {
				return runSetupDemo(c, globals)
			},
		},
	}

	if err := app.Run(os.Args); nil != err {
		exitwithstatus.Message("%s: error: %s", app.Name, err)
	}
}
