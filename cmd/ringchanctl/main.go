// Command ringchanctl assembles a small pipeline of ringchan channels and
// reports per-stage statistics. It exists to exercise the library end to
// end the way a real deployment would: several producer goroutines feeding
// a fan-in stage, several workers draining it, all coordinated purely by
// channel open/close lifecycle.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	flashflags "github.com/agilira/flash-flags"

	"github.com/agilira/ringchan"
)

func main() {
	fs := flashflags.New("ringchanctl")
	stages := fs.Int("stages", 2, "number of pipeline stages")
	producers := fs.Int("producers", 4, "producer goroutines feeding stage 0")
	workers := fs.Int("workers", 4, "worker goroutines per stage")
	bufferCount := fs.Int("buffer-count", 64, "ring buffer slot count (power of two)")
	bufferBytes := fs.Int("buffer-bytes", 256, "ring buffer slot payload size")
	runFor := fs.Duration("run-for", 2*time.Second, "how long producers emit messages")

	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "ringchanctl:", err)
		os.Exit(2)
	}

	if err := run(*stages, *producers, *workers, *bufferCount, *bufferBytes, *runFor); err != nil {
		fmt.Fprintln(os.Stderr, "ringchanctl:", err)
		os.Exit(1)
	}
}

func run(stages, producers, workers, bufferCount, bufferBytes int, runFor time.Duration) error {
	if stages < 1 {
		return fmt.Errorf("stages must be >= 1")
	}

	entry, err := ringchan.Alloc(bufferCount, bufferBytes)
	if err != nil {
		return fmt.Errorf("allocating stage 0: %w", err)
	}

	stageHandles := make([]*ringchan.Handle, stages)
	stageHandles[0] = entry
	for i := 1; i < stages; i++ {
		h, err := stageHandles[i-1].AllocCopy()
		if err != nil {
			return fmt.Errorf("allocating stage %d: %w", i, err)
		}
		stageHandles[i] = h
	}

	var wg sync.WaitGroup

	// Producers write into stage 0 for runFor, then stop.
	for p := 0; p < producers; p++ {
		w := stageHandles[0].Open(ringchan.ModeWrite)
		wg.Add(1)
		go func(w *ringchan.Handle, id int) {
			defer wg.Done()
			defer w.Close()
			deadline := time.Now().Add(runFor)
			var seq uint64
			for time.Now().Before(deadline) {
				buf := w.TokenBufferAlloc()
				copy(buf, fmt.Sprintf("producer-%d-%d", id, seq))
				if err := w.Next(&buf); err != nil {
					return
				}
				seq++
			}
		}(w, p)
	}

	// Each stage i>0 has `workers` goroutines that read stage i-1 and
	// write stage i; the last stage just drains.
	for s := 0; s < stages; s++ {
		for wkr := 0; wkr < workers; wkr++ {
			r := stageHandles[s].Open(ringchan.ModeRead)
			var writer *ringchan.Handle
			if s+1 < stages {
				writer = stageHandles[s+1].Open(ringchan.ModeWrite)
			}
			wg.Add(1)
			go func(r, writer *ringchan.Handle) {
				defer wg.Done()
				defer r.Close()
				if writer != nil {
					defer writer.Close()
				}
				buf := r.TokenBufferAlloc()
				for {
					if err := r.Next(&buf); err != nil {
						return
					}
					if writer != nil {
						if err := writer.Next(&buf); err != nil {
							return
						}
					}
				}
			}(r, writer)
		}
	}

	wg.Wait()

	for i, h := range stageHandles {
		st := h.Stats()
		fmt.Printf("stage %d: refs=%d readers=%d writers=%d fill=%d/%d overwrites=%d\n",
			i, st.RefCount, st.Readers, st.Writers, st.Fill, st.BufferCount, st.OverwriteCount)
	}
	return nil
}
