// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"

	"github.com/clearline-inc/ledgerd/ledger"
)

// setup command handler
//
// commands that do not need the configuration file or the database
func processSetupCommand(program string, arguments []string) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {

	case "version":
		fmt.Printf("%s\n", version)

	case "help", "-h", "--help", "-?":
		fmt.Printf("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [[command|help] arguments...]\n", program)
		fmt.Printf("supported commands:\n\n")
		fmt.Printf("  help                             (h)      - display this message\n\n")
		fmt.Printf("  version                          (v)      - display version\n\n")
		fmt.Printf("  show-config                               - display the parsed configuration and exit\n\n")
		fmt.Printf("  verify                                    - verify every segment chain and exit\n\n")
		fmt.Printf("  start                                     - just run the daemon\n\n")

	default:
		return false
	}

	return true
}

// config command handler
//
// commands that run enquiries on the configuration
func processConfigCommand(arguments []string, options *Configuration) bool {

	switch arguments[0] {

	case "show-config":
		b, err := json.MarshalIndent(options, "", "  ")
		if nil != err {
			exitwithstatus.Message("config JSON error: %s", err)
		}
		os.Stdout.Write(b)
		fmt.Printf("\n")

	default:
		return false
	}

	return true
}

// data command handler
//
// commands that run after all modules are initialised and may access
// the database
func processDataCommand(log *logger.L, arguments []string, options *Configuration) bool {

	switch arguments[0] {

	case "verify":
		results, err := ledger.VerifyAll()
		broken := 0
		for _, r := range results {
			if r.Valid {
				fmt.Printf("segment: %-12s ok       checked: %d\n", r.SegmentID, r.Checked)
			} else {
				broken += 1
				fmt.Printf("segment: %-12s BROKEN   first break at reading: %d\n", r.SegmentID, r.FirstBreakID)
			}
		}
		if nil != err {
			log.Criticalf("verify error: %s", err)
			exitwithstatus.Message("verify failed: %d broken chain(s): %s", broken, err)
		}
		fmt.Printf("all %d segment chain(s) intact\n", len(results))

	case "start": // forces database initialisation
		return false

	default:
		return false
	}

	return true
}
