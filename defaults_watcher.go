// defaults_watcher.go: hot-reloadable process-wide channel defaults
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringchan

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/agilira/argus"
)

var (
	defaultConfigMu sync.RWMutex
	defaultConfig   = ChannelConfig{
		BufferCount:  256,
		BufferBytes:  4096,
		ExpandOnFull: true,
	}
)

// DefaultConfig returns a copy of the process-wide default configuration
// used by NewWithDefaults. Safe to call concurrently with a running
// DefaultsWatcher.
func DefaultConfig() ChannelConfig {
	defaultConfigMu.RLock()
	defer defaultConfigMu.RUnlock()
	return defaultConfig
}

func setDefaultConfig(cfg ChannelConfig) {
	defaultConfigMu.Lock()
	defaultConfig = cfg
	defaultConfigMu.Unlock()
}

// DefaultsWatcher watches a small config file (buffer count, buffer size,
// expand-on-full policy) and atomically swaps the process-wide defaults
// whenever it changes, without requiring a process restart. Channels
// already allocated are unaffected; only subsequent NewWithDefaults calls
// observe the new values.
type DefaultsWatcher struct {
	watcher *argus.Watcher
}

// WatchDefaults starts watching path for changes to the default channel
// configuration, polling at the given interval. onError, if non-nil, is
// invoked whenever a reload cannot read the file (the previous defaults are
// kept in that case). Malformed lines and values that do not parse are
// skipped without calling onError.
func WatchDefaults(path string, pollInterval time.Duration, onError func(error)) (*DefaultsWatcher, error) {
	cfg := argus.Config{
		PollInterval: pollInterval,
	}
	w, err := argus.New(cfg)
	if err != nil {
		return nil, err
	}

	err = w.Watch(path, func(event argus.ChangeEvent) {
		parsed, parseErr := parseDefaultsFile(event.Path)
		if parseErr != nil {
			if onError != nil {
				onError(parseErr)
			}
			return
		}
		setDefaultConfig(parsed)
	})
	if err != nil {
		return nil, err
	}

	if err := w.Start(); err != nil {
		return nil, err
	}

	return &DefaultsWatcher{watcher: w}, nil
}

// Stop stops watching for changes.
func (d *DefaultsWatcher) Stop() error {
	if d == nil || d.watcher == nil {
		return nil
	}
	return d.watcher.Stop()
}

// parseDefaultsFile reads a tiny "key=value" defaults file (one setting
// per line: buffer_count, buffer_bytes, expand_on_full) — intentionally
// not a full config-file format, since the only consumer is this package's
// own hot-reload path.
func parseDefaultsFile(path string) (ChannelConfig, error) {
	lines, err := readLines(path)
	if err != nil {
		return ChannelConfig{}, err
	}
	cfg := DefaultConfig()
	for _, line := range lines {
		key, value, ok := splitKV(line)
		if !ok {
			continue
		}
		switch key {
		case "buffer_count":
			if n, err := strconv.Atoi(value); err == nil {
				cfg.BufferCount = n
			}
		case "buffer_bytes":
			if n, err := ParseByteSize(value); err == nil {
				cfg.BufferBytes = n
			}
		case "expand_on_full":
			cfg.ExpandOnFull = value == "true"
		}
	}
	return cfg, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

func splitKV(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}
