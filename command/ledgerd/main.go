// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/clearline-inc/ledgerd/audit"
	"github.com/clearline-inc/ledgerd/compliance"
	"github.com/clearline-inc/ledgerd/ledger"
	"github.com/clearline-inc/ledgerd/mode"
	"github.com/clearline-inc/ledgerd/reconciliation"
	"github.com/clearline-inc/ledgerd/reference"
	"github.com/clearline-inc/ledgerd/storage"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		processSetupCommand(program, []string{"version"})
		return
	}

	if len(options["help"]) > 0 {
		processSetupCommand(program, []string{"help"})
		return
	}

	// these commands do not require the configuration
	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := getConfiguration(configurationFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// these commands require the configuration and
	// perform enquiries on the configuration
	if len(arguments) > 0 && processConfigCommand(arguments, theConfiguration) {
		return
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("theConfiguration: %v", theConfiguration)

	// ------------------
	// start of real main
	// ------------------

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0o600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	// set the initial system mode - before any background tasks are started
	err = mode.Initialise()
	if nil != err {
		log.Criticalf("mode initialise error: %s", err)
		exitwithstatus.Message("mode initialise error: %s", err)
	}
	defer mode.Finalise()

	// general info
	log.Infof("database: %q", theConfiguration.Database)

	// start the data storage
	log.Info("initialise storage")
	err = storage.Initialise(theConfiguration.Database.Name, false)
	if nil != err {
		log.Criticalf("storage initialise error: %s", err)
		exitwithstatus.Message("storage initialise error: %s", err)
	}
	defer storage.Finalise()

	// audit trail - before any module that records entries
	log.Info("initialise audit")
	err = audit.Initialise()
	if nil != err {
		log.Criticalf("audit initialise error: %s", err)
		exitwithstatus.Message("audit initialise error: %s", err)
	}
	defer audit.Finalise()

	// compliance thresholds from the configuration file
	err = applyCompliance(theConfiguration)
	if nil != err {
		log.Criticalf("compliance setup error: %s", err)
		exitwithstatus.Message("compliance setup error: %s", err)
	}

	verifyInterval, _ := theConfiguration.verifyInterval()

	// the hash-chained reading store
	log.Info("initialise ledger")
	err = ledger.Initialise(
		reference.Store{},
		reference.Store{},
		reference.Store{},
		verifyInterval,
		theConfiguration.Verifier.Rate,
	)
	if nil != err {
		log.Criticalf("ledger initialise error: %s", err)
		exitwithstatus.Message("ledger initialise error: %s", err)
	}
	defer ledger.Finalise()

	// engineering reconciliation notes
	log.Info("initialise reconciliation")
	err = reconciliation.Initialise(reference.Store{})
	if nil != err {
		log.Criticalf("reconciliation initialise error: %s", err)
		exitwithstatus.Message("reconciliation initialise error: %s", err)
	}
	defer reconciliation.Finalise()

	// these commands are allowed to access the internal database
	if len(arguments) > 0 && processDataCommand(log, arguments, theConfiguration) {
		return
	}

	// verify every chain before accepting new readings
	log.Info("startup verification")
	results, err := ledger.VerifyAll()
	if nil != err {
		for _, r := range results {
			if !r.Valid {
				log.Criticalf("segment: %q chain broken at reading: %d", r.SegmentID, r.FirstBreakID)
			}
		}
		log.Critical("chain verification failed, appends stay disabled")
		if 0 == len(options["quiet"]) {
			fmt.Printf("chain verification failed: %s\n", err)
			fmt.Printf("the ledger stays in resynchronise mode, appends are refused\n")
		}
	} else {
		log.Infof("startup verification ok: %d segments", len(results))
		mode.Set(mode.Normal)
	}

	// re-read compliance settings when the configuration file changes
	stopWatcher, err := watchConfiguration(logger.New("watcher"), configurationFile, func() {
		changed, err := getConfiguration(configurationFile)
		if nil != err {
			log.Errorf("configuration reload error: %s", err)
			return
		}
		if err := applyCompliance(changed); nil != err {
			log.Errorf("compliance reload error: %s", err)
			return
		}
		log.Infof("compliance settings reloaded: %v", changed.Compliance)
	})
	if nil != err {
		log.Errorf("configuration watcher error: %s", err)
	} else {
		defer stopWatcher()
	}

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}

	log.Info("shutting down…")
	mode.Set(mode.Stopped)
}

// applyCompliance - push thresholds and averaging window from the
// configuration into the compliance module
func applyCompliance(cfg *Configuration) error {
	err := compliance.SetThresholds(compliance.Thresholds{
		Warning:   cfg.Compliance.Warning,
		Critical:  cfg.Compliance.Critical,
		Violation: cfg.Compliance.Violation,
	})
	if nil != err {
		return err
	}
	window, err := cfg.complianceWindow()
	if nil != err {
		return err
	}
	return compliance.SetWindow(window)
}
