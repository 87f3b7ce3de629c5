// config.go: configuration parsing and channel defaults
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringchan

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseByteSize converts size strings like "4KB", "1MB" to a byte count.
// Supports case-insensitive input and single-letter units (K, M, G).
func ParseByteSize(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	if val, err := strconv.Atoi(s); err == nil {
		return val, nil
	}

	upper := strings.ToUpper(s)

	var multiplier int
	var numStr string

	switch {
	case strings.HasSuffix(upper, "KB"):
		multiplier = 1024
		numStr = upper[:len(upper)-2]
	case strings.HasSuffix(upper, "MB"):
		multiplier = 1024 * 1024
		numStr = upper[:len(upper)-2]
	case strings.HasSuffix(upper, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = upper[:len(upper)-2]
	case strings.HasSuffix(upper, "K"):
		multiplier = 1024
		numStr = upper[:len(upper)-1]
	case strings.HasSuffix(upper, "M"):
		multiplier = 1024 * 1024
		numStr = upper[:len(upper)-1]
	case strings.HasSuffix(upper, "G"):
		multiplier = 1024 * 1024 * 1024
		numStr = upper[:len(upper)-1]
	default:
		return 0, fmt.Errorf("unknown size suffix in %q (supported: KB/K, MB/M, GB/G)", s)
	}

	val, err := strconv.Atoi(numStr)
	if err != nil {
		return 0, fmt.Errorf("invalid size number in %q: %w", s, err)
	}

	result := val * multiplier
	if result < 0 {
		return 0, fmt.Errorf("size %q overflows int", s)
	}
	return result, nil
}

// ParseTimeout converts duration strings like "50ms", "2s" to a time.Duration.
// Accepts anything time.ParseDuration accepts, plus nothing extra: channel
// timeouts live on the order of milliseconds to seconds, never days.
func ParseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("empty duration string")
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", s, err)
	}
	return d, nil
}

// ChannelConfig describes how to allocate a Channel. The *Str fields let
// callers that build configuration from files or flags write "4KB" / "50ms"
// instead of pre-parsed integers; NewWithConfig parses them and folds the
// result over the int/Duration fields, so a non-empty *Str field takes
// precedence when both are set.
type ChannelConfig struct {
	Name string

	BufferCount int
	BufferBytes int
	BufferBytesStr string

	ExpandOnFull bool

	DefaultTimeout    time.Duration
	DefaultTimeoutStr string

	// ErrorCallback, if set, is invoked with the error whenever a waiting
	// Next or Peek fails (timed out or drained). Try failures (full or
	// empty) and overwrites are not reported. It never affects control flow.
	ErrorCallback func(operation string, err error)
}

func (c *ChannelConfig) applyDefaults() error {
	if c.BufferBytesStr != "" {
		n, err := ParseByteSize(c.BufferBytesStr)
		if err != nil {
			return fmt.Errorf("channel config: %w", err)
		}
		c.BufferBytes = n
	}
	if c.DefaultTimeoutStr != "" {
		d, err := ParseTimeout(c.DefaultTimeoutStr)
		if err != nil {
			return fmt.Errorf("channel config: %w", err)
		}
		c.DefaultTimeout = d
	}
	if c.BufferCount <= 0 {
		c.BufferCount = 256
	}
	if c.BufferBytes <= 0 {
		c.BufferBytes = 4096
	}
	return nil
}

// NewWithConfig validates cfg, applies defaults and parses its string
// fields, and returns a neutral (unopened) handle onto a freshly allocated
// channel. Mirrors the teacher's NewWithConfig constructor shape.
func NewWithConfig(cfg *ChannelConfig) (*Handle, error) {
	if cfg == nil {
		cfg = &ChannelConfig{}
	}
	clone := *cfg
	if err := clone.applyDefaults(); err != nil {
		return nil, err
	}
	h, err := Alloc(clone.BufferCount, clone.BufferBytes)
	if err != nil {
		return nil, err
	}
	h.ch.expandOnFull = clone.ExpandOnFull
	h.ch.errorCallback = clone.ErrorCallback
	h.ch.defaultTimeout = clone.DefaultTimeout
	h.ch.name = clone.Name
	return h, nil
}

// NewWithDefaults allocates a channel using the process-wide default
// configuration (see DefaultConfig / DefaultsWatcher), tagged with name for
// diagnostics.
func NewWithDefaults(name string) (*Handle, error) {
	cfg := DefaultConfig()
	cfg.Name = name
	return NewWithConfig(&cfg)
}
