package ringchan

import "testing"

func TestRingPushPop(t *testing.T) {
	r, err := newRing(4, 8)
	if err != nil {
		t.Fatalf("newRing: %v", err)
	}
	if !r.isEmpty() {
		t.Fatal("new ring should be empty")
	}

	in := make([]byte, 8)
	copy(in, "hello")
	if !r.pushTry(&in) {
		t.Fatal("pushTry should succeed on a non-full ring")
	}
	if r.isEmpty() {
		t.Fatal("ring should not be empty after push")
	}

	out := make([]byte, 8)
	if !r.pop(&out) {
		t.Fatal("pop should succeed on a non-empty ring")
	}
	if string(out[:5]) != "hello" {
		t.Fatalf("pop returned %q, want %q", out[:5], "hello")
	}
	if !r.isEmpty() {
		t.Fatal("ring should be empty after draining the only item")
	}
}

func TestRingFillToCapacity(t *testing.T) {
	r, err := newRing(4, 4)
	if err != nil {
		t.Fatalf("newRing: %v", err)
	}
	for i := 0; i < 4; i++ {
		buf := make([]byte, 4)
		if !r.pushTry(&buf) {
			t.Fatalf("pushTry %d should succeed", i)
		}
	}
	if !r.isFull() {
		t.Fatal("ring should be full after pushing capacity items")
	}
	buf := make([]byte, 4)
	if r.pushTry(&buf) {
		t.Fatal("pushTry should fail once full")
	}
}

func TestRingOverwriteOnFull(t *testing.T) {
	r, err := newRing(2, 4)
	if err != nil {
		t.Fatalf("newRing: %v", err)
	}
	first := []byte("aaaa")
	second := []byte("bbbb")
	third := []byte("cccc")
	r.pushTry(&first)
	r.pushTry(&second)

	overwrote := r.push(&third, false)
	if !overwrote {
		t.Fatal("push with expandOnFull=false on a full ring should report an overwrite")
	}
	if r.count() != 2 {
		t.Fatalf("count after overwrite = %d, want 2", r.count())
	}

	out := make([]byte, 4)
	r.pop(&out)
	if string(out) != "bbbb" {
		t.Fatalf("oldest surviving item = %q, want %q (the first item should have been overwritten)", out, "bbbb")
	}
}

func TestRingGrowPreservesOrderWhenWrapped(t *testing.T) {
	r, err := newRing(4, 4)
	if err != nil {
		t.Fatalf("newRing: %v", err)
	}
	// Fill, pop two, push two more so head/tail wrap: active region is
	// [2,4) then wraps into [0,2) conceptually once two more are pushed.
	for i := 0; i < 4; i++ {
		buf := []byte{byte('0' + i), 0, 0, 0}
		r.pushTry(&buf)
	}
	drop := make([]byte, 4)
	r.pop(&drop)
	r.pop(&drop)
	for i := 4; i < 6; i++ {
		buf := []byte{byte('0' + i), 0, 0, 0}
		r.pushTry(&buf)
	}
	// Ring is full again (4 items: "2","3","4","5"), head wrapped past tail.
	if !r.isFull() {
		t.Fatal("ring should be full before growing")
	}

	r.grow()
	if r.isFull() {
		t.Fatal("ring should not be full immediately after growing")
	}
	if r.count() != 4 {
		t.Fatalf("count after grow = %d, want 4 (grow must not lose or duplicate items)", r.count())
	}

	want := []byte{'2', '3', '4', '5'}
	for _, w := range want {
		out := make([]byte, 4)
		if !r.pop(&out) {
			t.Fatalf("pop failed while draining grown ring, expected %q next", w)
		}
		if out[0] != w {
			t.Fatalf("pop after grow returned %q, want head byte %q (order must survive grow)", out[0], w)
		}
	}
}

func TestRingResizePayloadNeverShrinks(t *testing.T) {
	r, err := newRing(2, 4)
	if err != nil {
		t.Fatalf("newRing: %v", err)
	}
	r.resizePayload(16)
	if r.bufferBytes != 16 {
		t.Fatalf("bufferBytes after growing = %d, want 16", r.bufferBytes)
	}
	r.resizePayload(8)
	if r.bufferBytes != 16 {
		t.Fatalf("resizePayload with a smaller size must be a no-op, got %d", r.bufferBytes)
	}
}

func TestNewRingRejectsNonPowerOfTwo(t *testing.T) {
	if _, err := newRing(3, 4); err == nil {
		t.Fatal("newRing should reject a non-power-of-two buffer count")
	}
}
