// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"

	"github.com/clearline-inc/ledgerd/audit"
	"github.com/clearline-inc/ledgerd/configuration"
	"github.com/clearline-inc/ledgerd/fault"
	"github.com/clearline-inc/ledgerd/ledger"
	"github.com/clearline-inc/ledgerd/mode"
	"github.com/clearline-inc/ledgerd/reconciliation"
	"github.com/clearline-inc/ledgerd/reference"
	"github.com/clearline-inc/ledgerd/storage"
	"github.com/clearline-inc/ledgerd/util"
)

// cliConfiguration - the subset of the daemon configuration the CLI
// needs to open the same database
type cliConfiguration struct {
	DataDirectory string               `gluamapper:"data_directory" json:"data_directory"`
	Database      databaseType         `gluamapper:"database" json:"database"`
	Logging       logger.Configuration `gluamapper:"logging" json:"logging"`
}

type databaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

func getConfiguration(fileName string) (*cliConfiguration, error) {

	fileName, err := filepath.Abs(filepath.Clean(fileName))
	if nil != err {
		return nil, err
	}
	dataDirectory, _ := filepath.Split(fileName)

	options := &cliConfiguration{
		DataDirectory: ".",
		Database: databaseType{
			Directory: "data",
			Name:      "ledger.leveldb",
		},
		Logging: logger.Configuration{
			Directory: "log",
			File:      "ledger-cli.log",
			Size:      1024 * 1024,
			Count:     10,
			Levels: map[string]string{
				logger.DefaultTag: "critical",
			},
		},
	}

	if err := configuration.ParseConfigurationFile(fileName, options); nil != err {
		return nil, err
	}

	if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory
	}
	options.Database.Directory = util.EnsureAbsolute(options.DataDirectory, options.Database.Directory)
	options.Database.Name = util.EnsureAbsolute(options.Database.Directory, options.Database.Name)
	options.Logging.Directory = util.EnsureAbsolute(options.DataDirectory, options.Logging.Directory)
	if err := os.MkdirAll(options.Logging.Directory, 0o700); nil != err {
		return nil, err
	}

	return options, nil
}

// openLedger - bring up the module stack against the configured
// database; the returned function shuts everything down again
//
// the CLI writes through the same guarded path as the daemon, so it
// must not run while the daemon holds the database open
func openLedger(globals globalFlags) (func(), error) {

	if "" == globals.config {
		return nil, fault.MissingConfigurationFile
	}

	cfg, err := getConfiguration(globals.config)
	if nil != err {
		return nil, err
	}

	if err := logger.Initialise(cfg.Logging); nil != err {
		return nil, err
	}

	if err := mode.Initialise(); nil != err {
		logger.Finalise()
		return nil, err
	}

	if err := storage.Initialise(cfg.Database.Name, false); nil != err {
		mode.Finalise()
		logger.Finalise()
		return nil, err
	}

	if err := audit.Initialise(); nil != err {
		storage.Finalise()
		mode.Finalise()
		logger.Finalise()
		return nil, err
	}

	// no background verifier for one-shot commands
	if err := ledger.Initialise(reference.Store{}, reference.Store{}, reference.Store{}, 0, 0); nil != err {
		audit.Finalise()
		storage.Finalise()
		mode.Finalise()
		logger.Finalise()
		return nil, err
	}

	if err := reconciliation.Initialise(reference.Store{}); nil != err {
		ledger.Finalise()
		audit.Finalise()
		storage.Finalise()
		mode.Finalise()
		logger.Finalise()
		return nil, err
	}

	mode.Set(mode.Normal)

	return func() {
		mode.Set(mode.Stopped)
		reconciliation.Finalise()
		ledger.Finalise()
		audit.Finalise()
		storage.Finalise()
		mode.Finalise()
		logger.Finalise()
	}, nil
}

func printJson(title string, message interface{}, print ...bool) {

	// check optional verbose flag
	if 0 != len(print) {
		if !print[0] {
			return
		}
	}
	b, err := json.MarshalIndent(message, "", "  ")
	if nil != err {
		fmt.Fprintf(os.Stderr, "printJson marshal error: %s\n", err)
		return
	}

	if "" == title {
		fmt.Printf("%s\n", b)
	} else {
		fmt.Printf("%s:\n%s\n", title, b)
	}
}
