// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

// Package ringchan implements a zero-copy, multi-producer multi-consumer
// bounded queue for connecting goroutines arranged as a directed acyclic
// graph (DAG) of producers and consumers.
//
// # Quick Start
//
// Allocate a channel, open read and write handles onto it, and pass
// message buffers back and forth with Next:
//
//	h, _ := ringchan.Alloc(64, 256)  // 64 slots of 256 bytes each
//	w := h.Open(ringchan.ModeWrite)
//	r := h.Open(ringchan.ModeRead)
//
//	go func() {
//		defer w.Close()
//		buf := w.TokenBufferAlloc()
//		copy(buf, "hello")
//		w.Next(&buf)
//	}()
//
//	buf := r.TokenBufferAlloc()
//	if err := r.Next(&buf); err == nil {
//		fmt.Println(string(buf))
//	}
//	r.Close()
//
// # Reading and Writing
//
// Reading and writing both happen through Next (and its Try/Timed/Copy
// variants); which one happens depends on the Mode a Handle was Open'd
// with. Next swaps the caller's buffer with one already on the ring, so
// pushing and popping do not copy message bytes. Use NextCopy instead when
// the caller needs to keep using its own buffer afterward.
//
// # Constructor Functions
//
//   - Alloc allocates a channel directly from a slot count and slot size.
//   - NewWithConfig builds one from a ChannelConfig, parsing any
//     string-encoded fields (BufferBytesStr, DefaultTimeoutStr).
//   - NewWithDefaults builds one from the process-wide default
//     configuration, which DefaultsWatcher can hot-reload.
//
// # String-Based Configuration
//
// ChannelConfig accepts human-friendly sizes and durations:
//
//	cfg := ringchan.ChannelConfig{BufferBytesStr: "4KB", DefaultTimeoutStr: "50ms"}
//	h, err := ringchan.NewWithConfig(&cfg)
//
// # Termination and Flush
//
// A channel drains once its last writer handle closes: Close on the final
// write handle sets the channel's flush state, and every blocked reader
// wakes up. Reads that find the ring empty after that return a "drained"
// OpError instead of blocking forever — this is what lets a DAG of
// goroutines shut down in topological order without an explicit signal
// passed alongside the data.
//
// # Overflow and Underflow Behavior
//
//	         Overflow (push)              Underflow (pop)
//	Next     waits, or expands            fails if drained, else waits
//	Try      fails, or expands            fails immediately
//	Timed    waits, or expands;           fails immediately if drained,
//	         fails after timeout          else waits until timeout
//
// "expands" applies when expand-on-full is enabled. "drained" means the
// flush state is set: the last writer has closed, and since then no reader
// has opened onto the empty ring and the readers have not all closed. A
// channel that never had a writer is not drained.
//
// # Error Handling
//
// Operations return an *OpError wrapping a coded error from
// github.com/agilira/go-errors; use IsFull, IsEmpty, IsTimedOut,
// IsDrained, or IsClosed to classify a failure. A non-power-of-two buffer
// count passed to Alloc is an ordinary error return, not a panic. Programming
// errors — reusing a closed handle's underlying mutex incorrectly, opening
// with an invalid Mode, a goroutine re-locking a Mutex it already holds —
// panic rather than returning an error, since there's no sensible way for a
// caller to recover from them at the call site.
//
// # Thread Safety
//
// A Handle is safe to share across goroutines; all synchronization is
// internal to the Channel it points at. A *[]byte buffer passed to Next
// must not be touched by the caller again until Next returns, since it may
// be swapped out from under the caller.
package ringchan
