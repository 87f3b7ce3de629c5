// channel.go: shared channel state and the locked push/pop/peek protocol
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringchan

import (
	"sync/atomic"
	"time"

	timecache "github.com/agilira/go-timecache"
)

// Mode tags a Handle as a reader, a writer, or neutral (peek-only / newly
// allocated and not yet opened).
type Mode int

const (
	ModeNone Mode = iota
	ModeRead
	ModeWrite
)

// Channel is the state shared by every Handle opened onto it: the ring
// buffer, the lock and its five condition variables, and the reader/writer
// bookkeeping that drives the flush protocol. Channel is never used
// directly by callers; every operation goes through a Handle.
type Channel struct {
	ring *ring

	mu                 Mutex
	notFull            *Cond // predicate: !full || expandOnFull
	notEmpty           *Cond // predicate: !empty || (nwriters==0 && flush)
	refCountChanged    *Cond // predicate: refCount changed
	haveWriter         *Cond // predicate: nWriters changed
	haveReader         *Cond // predicate: nReaders>0

	refCount     uint32
	nReaders     uint32
	nWriters     uint32
	expandOnFull bool
	flush        bool

	workspace []byte // scratch buffer for copy-variant operations

	name           string
	errorCallback  func(operation string, err error)
	defaultTimeout time.Duration

	timeCache     *timecache.TimeCache
	droppedCount  atomic.Uint64
	overwriteCount atomic.Uint64
}

// newChannel allocates the shared state for a channel of bufferCount slots
// of bufferBytes each. bufferCount must be a power of two.
func newChannel(bufferCount, bufferBytes int) (*Channel, error) {
	r, err := newRing(bufferCount, bufferBytes)
	if err != nil {
		return nil, err
	}
	c := &Channel{
		ring:      r,
		refCount:  1,
		workspace: make([]byte, bufferBytes),
	}
	c.notFull = newCond(&c.mu)
	c.notEmpty = newCond(&c.mu)
	c.refCountChanged = newCond(&c.mu)
	c.haveWriter = newCond(&c.mu)
	c.haveReader = newCond(&c.mu)
	c.ensureTimeCache()
	return c, nil
}

func (c *Channel) lock() lockToken {
	tok := goroutineID()
	c.mu.Lock(tok)
	return tok
}

func (c *Channel) unlock(tok lockToken) {
	c.mu.Unlock(tok)
}

func (c *Channel) reportError(operation string, err error) {
	if c.errorCallback != nil && err != nil {
		c.errorCallback(operation, err)
	}
}

// waitDeadline blocks on cond until predicate() is true or, if !deadline
// is zero, until deadline passes. Returns false on timeout. A zero
// deadline means "wait forever". This is the mechanism that makes timed
// Next/Peek honest: sync.Cond has no native timed wait, so a one-shot
// timer nudges every waiter awake at the deadline to re-check it.
func waitDeadline(cond *Cond, mu *Mutex, tok lockToken, deadline time.Time, predicate func() bool) bool {
	for !predicate() {
		if deadline.IsZero() {
			cond.Wait(mu, tok)
			continue
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		timer := time.AfterFunc(remaining, cond.NotifyAll)
		cond.Wait(mu, tok)
		timer.Stop()
	}
	return true
}

// pushLocked implements chan_push__locked: block on notFull until there's
// room (or expand-on-full is set), then push, honoring deadline.
func (c *Channel) pushLocked(tok lockToken, buf *[]byte, deadline time.Time) error {
	ok := waitDeadline(c.notFull, &c.mu, tok, deadline, func() bool {
		return !c.ring.isFull() || c.expandOnFull
	})
	if !ok {
		return newOpError("push", CodeTimedOut, "timed out waiting for room")
	}
	if c.ring.push(buf, c.expandOnFull) {
		c.overwriteCount.Add(1)
	}
	return nil
}

func (c *Channel) popBypassWait() bool {
	return c.nWriters == 0 && c.flush
}

// popLocked implements chan_pop__locked: block on notEmpty until there's
// data, or until the channel has drained (no writers left, flush set).
func (c *Channel) popLocked(tok lockToken, buf *[]byte, deadline time.Time) error {
	ok := waitDeadline(c.notEmpty, &c.mu, tok, deadline, func() bool {
		return !c.ring.isEmpty() || c.popBypassWait()
	})
	if !ok {
		return newOpError("pop", CodeTimedOut, "timed out waiting for data")
	}
	if !c.ring.pop(buf) {
		return newOpError("pop", CodeDrained, "channel drained: no writers and no data")
	}
	return nil
}

// peekLocked implements chan_peek__locked: same wait discipline as pop,
// but copies instead of swapping.
func (c *Channel) peekLocked(tok lockToken, buf *[]byte, deadline time.Time) error {
	ok := waitDeadline(c.notEmpty, &c.mu, tok, deadline, func() bool {
		return !c.ring.isEmpty() || c.popBypassWait()
	})
	if !ok {
		return newOpError("peek", CodeTimedOut, "timed out waiting for data")
	}
	if !c.ring.peek(buf) {
		return newOpError("peek", CodeDrained, "channel drained: no writers and no data")
	}
	return nil
}

// waitKind selects between the three blocking disciplines a Next/Peek
// operation can use, mirroring the original's timeout_ms convention
// (0 == try, forever == block, anything else == timed).
type waitKind int

const (
	waitTry waitKind = iota
	waitForever
	waitTimed
)

func (c *Channel) deadlineFor(kind waitKind, timeout time.Duration) (deadline time.Time, failFast bool) {
	switch kind {
	case waitTry:
		return time.Time{}, true
	case waitTimed:
		return c.now().Add(timeout), false
	default:
		return time.Time{}, false
	}
}

func (c *Channel) now() time.Time {
	if c.timeCache != nil {
		return c.timeCache.CachedTime()
	}
	return time.Now()
}

// push is chan_push: top-level push dispatch handling the fail-fast "try"
// path, the copy-variant workspace dance, and the notEmpty notification
// on success.
func (c *Channel) push(buf *[]byte, sz int, copy bool, kind waitKind, timeout time.Duration) error {
	tok := c.lock()
	defer c.unlock(tok)

	deadline, failFast := c.deadlineFor(kind, timeout)
	if failFast && c.ring.isFull() && !c.expandOnFull {
		c.droppedCount.Add(1)
		return newOpError("push", CodeFull, "channel is full")
	}

	var err error
	if copy {
		c.ring.resizePayload(sz)
		if len(c.workspace) < sz {
			c.workspace = make([]byte, sz)
		}
		copyBytes(c.workspace, *buf, sz)
		err = c.pushLocked(tok, &c.workspace, deadline)
	} else {
		err = c.pushLocked(tok, buf, deadline)
	}
	if err != nil {
		c.reportError("push", err)
		return err
	}
	c.notEmpty.Notify()
	return nil
}

// pop is chan_pop.
func (c *Channel) pop(buf *[]byte, sz int, copyOut bool, kind waitKind, timeout time.Duration) error {
	tok := c.lock()
	defer c.unlock(tok)

	deadline, failFast := c.deadlineFor(kind, timeout)
	if failFast && c.ring.isEmpty() {
		return newOpError("pop", CodeEmpty, "channel is empty")
	}

	var err error
	if copyOut {
		c.ring.resizePayload(sz)
		if len(c.workspace) < sz {
			c.workspace = make([]byte, sz)
		}
		err = c.popLocked(tok, &c.workspace, deadline)
		if err == nil {
			copyBytes(*buf, c.workspace, sz)
		}
	} else {
		err = c.popLocked(tok, buf, deadline)
	}
	if err != nil {
		c.reportError("pop", err)
		return err
	}
	c.notFull.Notify()
	return nil
}

// peek is chan_peek.
func (c *Channel) peek(buf *[]byte, sz int, kind waitKind, timeout time.Duration) error {
	tok := c.lock()
	defer c.unlock(tok)

	deadline, failFast := c.deadlineFor(kind, timeout)
	if failFast && c.ring.isEmpty() {
		return newOpError("peek", CodeEmpty, "channel is empty")
	}
	if c.ring.isEmpty() && c.nWriters == 0 {
		err := newOpError("peek", CodeDrained, "channel drained: no writers and no data")
		c.reportError("peek", err)
		return err
	}
	if err := c.peekLocked(tok, buf, deadline); err != nil {
		c.reportError("peek", err)
		return err
	}
	return nil
}

func (c *Channel) peekAt(buf *[]byte, index int) error {
	tok := c.lock()
	defer c.unlock(tok)
	if !c.ring.peekAt(buf, index) {
		return newOpError("peekAt", CodeEmpty, "channel is empty")
	}
	return nil
}

func copyBytes(dst, src []byte, n int) {
	if len(dst) < n {
		return
	}
	copy(dst[:n], src)
}
