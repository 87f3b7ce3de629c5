package ringchan_test

import (
	"testing"

	"github.com/agilira/ringchan"
)

// BenchmarkRingPushPop measures single-goroutine push/pop throughput on a
// ring that never blocks (one writer, draining its own writes immediately).
func BenchmarkRingPushPop(b *testing.B) {
	h, err := ringchan.Alloc(1024, 64)
	if err != nil {
		b.Fatalf("Alloc: %v", err)
	}
	w := h.Open(ringchan.ModeWrite)
	r := h.Open(ringchan.ModeRead)
	defer w.Close()
	defer r.Close()

	data := []byte("benchmark message payload for ring push/pop\n")
	buf := w.TokenBufferAllocAndCopy(data)
	out := r.TokenBufferAlloc()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := w.NextTry(&buf); err != nil {
			b.Fatalf("NextTry push: %v", err)
		}
		if err := r.NextTry(&out); err != nil {
			b.Fatalf("NextTry pop: %v", err)
		}
	}
}

// BenchmarkManyToManyThroughput measures aggregate throughput with several
// producers and consumers sharing one channel, mirroring the stress shape
// a real DAG stage sees under load.
func BenchmarkManyToManyThroughput(b *testing.B) {
	const nProducers = 4
	const nConsumers = 4

	h, err := ringchan.Alloc(256, 64)
	if err != nil {
		b.Fatalf("Alloc: %v", err)
	}

	perProducer := b.N / nProducers
	if perProducer == 0 {
		perProducer = 1
	}

	done := make(chan struct{})
	b.ResetTimer()

	for p := 0; p < nProducers; p++ {
		w := h.Open(ringchan.ModeWrite)
		go func(w *ringchan.Handle) {
			defer w.Close()
			buf := w.TokenBufferAlloc()
			for i := 0; i < perProducer; i++ {
				if err := w.Next(&buf); err != nil {
					return
				}
			}
		}(w)
	}

	for c := 0; c < nConsumers; c++ {
		r := h.Open(ringchan.ModeRead)
		go func(r *ringchan.Handle) {
			defer r.Close()
			defer func() { done <- struct{}{} }()
			buf := r.TokenBufferAlloc()
			for {
				if err := r.Next(&buf); err != nil {
					return
				}
			}
		}(r)
	}

	for c := 0; c < nConsumers; c++ {
		<-done
	}
}

// BenchmarkExpandOnFullPush measures push cost when the ring must grow
// instead of blocking or overwriting.
func BenchmarkExpandOnFullPush(b *testing.B) {
	h, err := ringchan.Alloc(2, 64)
	if err != nil {
		b.Fatalf("Alloc: %v", err)
	}
	w := h.Open(ringchan.ModeWrite)
	defer w.Close()
	w.SetExpandOnFull(true)

	buf := w.TokenBufferAlloc()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := w.NextTry(&buf); err != nil {
			b.Fatalf("NextTry: %v", err)
		}
	}
}
