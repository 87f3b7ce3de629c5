// clock.go: cached time source for timed waits
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringchan

import (
	"sync"
	"time"

	timecache "github.com/agilira/go-timecache"
)

// sharedTimeCache backs every Channel's deadline computation. Lethe keeps
// one timecache.TimeCache per Logger purely for latency telemetry; a
// Channel's timed waits are far more numerous (every NextTimed/PeekTimed
// call computes a deadline) and share no per-channel state, so one
// process-wide cache is enough and avoids a background goroutine per
// channel.
var (
	timeCacheOnce sync.Once
	sharedClock   *timecache.TimeCache
)

func initTimeCache() {
	timeCacheOnce.Do(func() {
		sharedClock = timecache.NewWithResolution(time.Millisecond)
	})
}

func (c *Channel) ensureTimeCache() {
	initTimeCache()
	c.timeCache = sharedClock
}
