// handle.go: reference-counted, mode-tagged handles onto a Channel
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringchan

import (
	"time"
	"unsafe"
)

// Handle is a reference-counted, mode-tagged reference to a Channel.
// Allocating a Channel (Alloc) returns a neutral Handle; Open stamps out
// a new Handle tagged ModeRead/ModeWrite and bumps the channel's
// reference count. Close releases one reference; the underlying Channel
// is garbage collected once nothing holds a Handle to it, same spirit as
// the original's ref_count==0 destroy but without a manual free.
type Handle struct {
	ch     *Channel
	mode   Mode
	closed bool
}

// Alloc allocates a new Channel of bufferCount slots of bufferBytes each
// and returns a neutral Handle onto it. bufferCount must be a power of
// two; Open a read or write Handle from it before using Next/Peek.
func Alloc(bufferCount, bufferBytes int) (*Handle, error) {
	ch, err := newChannel(bufferCount, bufferBytes)
	if err != nil {
		return nil, err
	}
	return &Handle{ch: ch, mode: ModeNone}, nil
}

// AllocCopy builds an independent Channel with the same dimensions
// (buffer count and buffer byte size) as h's channel. Grounded on the
// original's Chan_Alloc_Copy; used by DAG builders stamping out parallel
// stage queues of the same shape.
func (h *Handle) AllocCopy() (*Handle, error) {
	return Alloc(h.ch.ring.capacity(), h.ch.ring.bufferBytes)
}

// Open returns a new Handle onto the same Channel, tagged with mode, and
// increments the channel's reference count. mode must be ModeRead or
// ModeWrite; ModeNone is accepted only to produce another neutral
// (peek-capable) handle.
func (h *Handle) Open(mode Mode) *Handle {
	tok := h.ch.lock()
	defer h.ch.unlock(tok)

	h.ch.refCount++
	h.ch.refCountChanged.NotifyAll()

	n := &Handle{ch: h.ch, mode: mode}
	switch mode {
	case ModeRead:
		h.ch.nReaders++
		if h.ch.ring.isEmpty() {
			h.ch.flush = false
		}
		h.ch.haveReader.NotifyAll()
	case ModeWrite:
		h.ch.nWriters++
		h.ch.flush = false
		h.ch.haveWriter.NotifyAll()
	case ModeNone:
	default:
		fatal(CodeInvalidMode, "ringchan: Open called with an invalid mode")
	}
	return n
}

// Close releases h's reference to its Channel. Closing a write handle
// that was the last writer sets the drain ("flush") state and wakes every
// waiting reader. Close is idempotent and nil-safe.
func (h *Handle) Close() error {
	if h == nil || h.closed {
		return nil
	}
	h.closed = true

	tok := h.ch.lock()
	notify := false
	switch h.mode {
	case ModeRead:
		h.ch.nReaders--
		if h.ch.nReaders == 0 {
			h.ch.flush = false
		}
	case ModeWrite:
		h.ch.nWriters--
		h.ch.haveWriter.NotifyAll()
		notify = h.ch.nWriters == 0
		if notify {
			h.ch.flush = true
		}
	}
	if notify {
		h.ch.notEmpty.NotifyAll()
	}
	h.ch.unlock(tok)

	return h.decref()
}

func (h *Handle) decref() error {
	tok := h.ch.lock()
	h.ch.refCount--
	h.ch.unlock(tok)
	h.ch.refCountChanged.NotifyAll()
	return nil
}

// RefCount reports the current number of open handles onto h's Channel.
func (h *Handle) RefCount() int {
	tok := h.ch.lock()
	defer h.ch.unlock(tok)
	return int(h.ch.refCount)
}

// WaitForRefCount blocks until the Channel's reference count equals n.
func (h *Handle) WaitForRefCount(n int) {
	tok := h.ch.lock()
	defer h.ch.unlock(tok)
	for int(h.ch.refCount) != n {
		h.ch.refCountChanged.Wait(&h.ch.mu, tok)
	}
}

// WaitForWriterCount blocks until the Channel has exactly n open writers.
func (h *Handle) WaitForWriterCount(n int) {
	tok := h.ch.lock()
	defer h.ch.unlock(tok)
	for int(h.ch.nWriters) != n {
		h.ch.haveWriter.Wait(&h.ch.mu, tok)
	}
}

// WaitForHaveReader blocks until the Channel has at least one open reader.
func (h *Handle) WaitForHaveReader() {
	tok := h.ch.lock()
	defer h.ch.unlock(tok)
	for h.ch.nReaders == 0 {
		h.ch.haveReader.Wait(&h.ch.mu, tok)
	}
}

// SetExpandOnFull toggles the channel's overflow policy: when enabled, a
// full push grows the ring instead of waiting (or, for the Try variants,
// instead of failing with IsFull).
func (h *Handle) SetExpandOnFull(expand bool) {
	tok := h.ch.lock()
	h.ch.expandOnFull = expand
	h.ch.unlock(tok)
	if expand {
		h.ch.notFull.NotifyAll()
	}
}

func invalidMode(op string) error {
	fatal(CodeInvalidMode, "ringchan: "+op+" called on a handle with an invalid mode")
	return nil // unreachable
}

// Next performs a blocking pop (read mode) or push (write mode),
// swapping *buf with the channel's slot. Blocks until data is available
// (read) or room is available (write), unless the channel has drained.
func (h *Handle) Next(buf *[]byte) error {
	switch h.mode {
	case ModeRead:
		return h.ch.pop(buf, len(*buf), false, waitForever, 0)
	case ModeWrite:
		return h.ch.push(buf, len(*buf), false, waitForever, 0)
	default:
		return invalidMode("Next")
	}
}

// NextTry is the non-blocking variant of Next: fails immediately with
// IsFull/IsEmpty instead of waiting. A write into a full channel with
// expand-on-full enabled grows the ring instead of failing.
func (h *Handle) NextTry(buf *[]byte) error {
	switch h.mode {
	case ModeRead:
		return h.ch.pop(buf, len(*buf), false, waitTry, 0)
	case ModeWrite:
		return h.ch.push(buf, len(*buf), false, waitTry, 0)
	default:
		return invalidMode("NextTry")
	}
}

// NextTimed is the timed variant of Next: waits up to timeout, returning
// IsTimedOut if it expires first.
func (h *Handle) NextTimed(buf *[]byte, timeout time.Duration) error {
	switch h.mode {
	case ModeRead:
		return h.ch.pop(buf, len(*buf), false, waitTimed, timeout)
	case ModeWrite:
		return h.ch.push(buf, len(*buf), false, waitTimed, timeout)
	default:
		return invalidMode("NextTimed")
	}
}

// NextCopy behaves like Next but copies into/out of buf instead of
// swapping, leaving the caller's slice untouched in storage identity.
func (h *Handle) NextCopy(buf []byte) error {
	switch h.mode {
	case ModeRead:
		return h.ch.pop(&buf, len(buf), true, waitForever, 0)
	case ModeWrite:
		return h.ch.push(&buf, len(buf), true, waitForever, 0)
	default:
		return invalidMode("NextCopy")
	}
}

// NextCopyTry is the non-blocking variant of NextCopy.
func (h *Handle) NextCopyTry(buf []byte) error {
	switch h.mode {
	case ModeRead:
		return h.ch.pop(&buf, len(buf), true, waitTry, 0)
	case ModeWrite:
		return h.ch.push(&buf, len(buf), true, waitTry, 0)
	default:
		return invalidMode("NextCopyTry")
	}
}

// NextCopyTimed is the timed variant of NextCopy.
func (h *Handle) NextCopyTimed(buf []byte, timeout time.Duration) error {
	switch h.mode {
	case ModeRead:
		return h.ch.pop(&buf, len(buf), true, waitTimed, timeout)
	case ModeWrite:
		return h.ch.push(&buf, len(buf), true, waitTimed, timeout)
	default:
		return invalidMode("NextCopyTimed")
	}
}

// NextTryOverwrite is the non-blocking push that, when the channel is
// full and expand-on-full is disabled, drops the oldest buffered item to
// make room instead of failing. Only meaningful on write handles; read
// handles should use NextTry. Grounded on the original's overwrite-on-full
// asymmetry, reachable only from the non-blocking push path.
func (h *Handle) NextTryOverwrite(buf *[]byte) error {
	if h.mode != ModeWrite {
		return invalidMode("NextTryOverwrite")
	}
	tok := h.ch.lock()
	defer h.ch.unlock(tok)
	if h.ch.ring.push(buf, false) {
		h.ch.overwriteCount.Add(1)
	}
	h.ch.notEmpty.Notify()
	return nil
}

// Peek copies the next item (the one Next would pop) into *dst without
// removing it from the channel. Any opened (non-neutral) handle may peek.
func (h *Handle) Peek(dst *[]byte) error {
	return h.ch.peek(dst, len(*dst), waitForever, 0)
}

// PeekTry is the non-blocking variant of Peek.
func (h *Handle) PeekTry(dst *[]byte) error {
	return h.ch.peek(dst, len(*dst), waitTry, 0)
}

// PeekTimed is the timed variant of Peek.
func (h *Handle) PeekTimed(dst *[]byte, timeout time.Duration) error {
	return h.ch.peek(dst, len(*dst), waitTimed, timeout)
}

// PeekAt copies the item `index` slots past the current read position
// into *dst, without removing anything. index 0 is what Peek/Next(read)
// would return next. Never blocks: an offset peek only makes sense
// against what's already enqueued.
func (h *Handle) PeekAt(dst *[]byte, index int) error {
	return h.ch.peekAt(dst, index)
}

// IsFull reports whether the channel's ring is at capacity.
func (h *Handle) IsFull() bool {
	tok := h.ch.lock()
	defer h.ch.unlock(tok)
	return h.ch.ring.isFull()
}

// IsEmpty reports whether the channel's ring holds no items.
func (h *Handle) IsEmpty() bool {
	tok := h.ch.lock()
	defer h.ch.unlock(tok)
	return h.ch.ring.isEmpty()
}

// Resize grows the channel's per-slot payload size. Like the original's
// Chan_Resize, it never shrinks: requesting a smaller size is a no-op.
func (h *Handle) Resize(bufferBytes int) {
	tok := h.ch.lock()
	defer h.ch.unlock(tok)
	h.ch.ring.resizePayload(bufferBytes)
}

// BufferBytes reports the channel's current per-slot payload size.
func (h *Handle) BufferBytes() int {
	tok := h.ch.lock()
	defer h.ch.unlock(tok)
	return h.ch.ring.bufferBytes
}

// BufferCount reports the channel's slot count (always a power of two).
func (h *Handle) BufferCount() int {
	tok := h.ch.lock()
	defer h.ch.unlock(tok)
	return h.ch.ring.capacity()
}

// ID returns a value that uniquely identifies the underlying Channel:
// two Handles opened from the same Alloc share an ID. Grounded on the
// original's Chan_Id, which returns the shared __chan_t pointer.
func (h *Handle) ID() uintptr {
	return uintptr(unsafe.Pointer(h.ch))
}

// TokenBufferAlloc allocates a buffer sized to the channel's current
// slot payload size, suitable for passing to Next/NextTry/NextTimed.
func (h *Handle) TokenBufferAlloc() []byte {
	tok := h.ch.lock()
	defer h.ch.unlock(tok)
	return make([]byte, h.ch.ring.bufferBytes)
}

// TokenBufferAllocAndCopy allocates a token buffer and copies src into it.
func (h *Handle) TokenBufferAllocAndCopy(src []byte) []byte {
	buf := h.TokenBufferAlloc()
	copy(buf, src)
	return buf
}

// TokenBufferFree is a documented no-op: Go buffers are garbage collected,
// so there is nothing to free. Kept only so code migrated from the
// manual-memory-management original doesn't need every call site rewritten.
func TokenBufferFree(buf []byte) { _ = buf }

// Stats is a point-in-time snapshot of channel activity, mirroring the
// teacher's telemetry-snapshot pattern.
type Stats struct {
	Name           string
	RefCount       int
	Readers        int
	Writers        int
	BufferCount    int
	BufferBytes    int
	Fill           int
	ExpandOnFull   bool
	Drained        bool
	OverwriteCount uint64
	DroppedCount   uint64
}

// Stats returns a snapshot of h's Channel.
func (h *Handle) Stats() Stats {
	tok := h.ch.lock()
	defer h.ch.unlock(tok)
	return Stats{
		Name:           h.ch.name,
		RefCount:       int(h.ch.refCount),
		Readers:        int(h.ch.nReaders),
		Writers:        int(h.ch.nWriters),
		BufferCount:    h.ch.ring.capacity(),
		BufferBytes:    h.ch.ring.bufferBytes,
		Fill:           h.ch.ring.count(),
		ExpandOnFull:   h.ch.expandOnFull,
		Drained:        h.ch.popBypassWait(),
		OverwriteCount: h.ch.overwriteCount.Load(),
		DroppedCount:   h.ch.droppedCount.Load(),
	}
}
