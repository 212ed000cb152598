// SPDX-License-Identifier: ISC
// Copyright (c) 2024-2026 ClearLine Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"path"
	"path/filepath"

	"github.com/bitmark-inc/logger"
	"github.com/fsnotify/fsnotify"
)

// watchConfiguration - re-run apply whenever the configuration file is
// written
//
// the returned function stops the watcher; a removed file ends the
// watch since editors replacing the file deliver a remove as the last
// event for the old inode
func watchConfiguration(log *logger.L, fileName string, apply func()) (func() error, error) {

	filePath, err := filepath.Abs(filepath.Clean(fileName))
	if nil != err {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if nil != err {
		return nil, err
	}

	err = watcher.Add(filePath)
	if nil != err {
		watcher.Close()
		return nil, err
	}

	go func() {
		for event := range watcher.Events {
			log.Infof("file event: %v", event)

			if "" == event.Name || event.Op&fsnotify.Remove == fsnotify.Remove {
				log.Warnf("file %s removed, stop watching", filePath)
				return
			}

			if path.Base(event.Name) != path.Base(filePath) {
				log.Infof("file %s not match, discard event", filePath)
				continue
			}

			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Chmod == fsnotify.Chmod {
				log.Info("configuration changed, reapplying…")
				apply()
			}
		}
	}()

	return watcher.Close, nil
}
