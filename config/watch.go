// Copyright (c) 2022 The rcproxy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/rcproxy/goredisasync/pkg/logging"
)

// Watch reloads fileName on every write/rename and hands the new Config
// to onReload, so a caller can push changed timeouts, max_pending, or
// reconnect policy onto a live Client. Watches the containing directory
// rather than the file itself, since editors commonly replace a file
// instead of writing it in place.
func Watch(fileName string, onReload func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	dir := filepath.Dir(fileName)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}
	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Name != fileName {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Rename|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := LoadConfig(fileName)
				if err != nil {
					logging.Errorf("config reload failed: %s", err)
					continue
				}
				onReload(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Errorf("config watcher error: %s", err)
			}
		}
	}()
	return nil
}
