// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/go-homedir"

	"github.com/netdata/netdata/go/promtable/logger"
)

const watchDebounce = 200 * time.Millisecond

// WatchConfig sends on the returned channel after the config file at path is
// written, created or replaced. Events are debounced. The directory is watched
// so that editors replacing the file are noticed.
func WatchConfig(ctx context.Context, path string, log *logger.Logger) (<-chan struct{}, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand config path: %v", err)
	}
	if path, err = filepath.Abs(path); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch '%s': %w", filepath.Dir(path), err)
	}

	ch := make(chan struct{}, 1)
	go watchLoop(ctx, watcher, path, ch, log)

	return ch, nil
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string, ch chan<- struct{}, log *logger.Logger) {
	defer func() { _ = watcher.Close() }()

	tk := time.NewTimer(watchDebounce)
	tk.Stop()
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				log.Debugf("config event: %s", event)
				tk.Reset(watchDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warningf("config watcher: %v", err)
		case <-tk.C:
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}
