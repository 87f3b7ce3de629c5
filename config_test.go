package ringchan_test

import (
	"testing"
	"time"

	"github.com/agilira/ringchan"
)

func TestParseByteSize(t *testing.T) {
	cases := map[string]int{
		"128":  128,
		"4K":   4096,
		"4KB":  4096,
		"1M":   1024 * 1024,
		"1MB":  1024 * 1024,
	}
	for in, want := range cases {
		got, err := ringchan.ParseByteSize(in)
		if err != nil {
			t.Fatalf("ParseByteSize(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseByteSize(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParseByteSizeRejectsGarbage(t *testing.T) {
	if _, err := ringchan.ParseByteSize("not-a-size"); err == nil {
		t.Fatal("expected an error for an unparseable size string")
	}
}

func TestParseTimeout(t *testing.T) {
	got, err := ringchan.ParseTimeout("50ms")
	if err != nil {
		t.Fatalf("ParseTimeout: %v", err)
	}
	if got != 50*time.Millisecond {
		t.Fatalf("ParseTimeout(%q) = %v, want 50ms", "50ms", got)
	}
}

func TestNewWithConfigAppliesStringFields(t *testing.T) {
	h, err := ringchan.NewWithConfig(&ringchan.ChannelConfig{
		BufferCount:    4,
		BufferBytesStr: "16",
	})
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	if got := h.BufferBytes(); got != 16 {
		t.Fatalf("BufferBytes = %d, want 16", got)
	}
}

func TestNewWithDefaults(t *testing.T) {
	h, err := ringchan.NewWithDefaults("test-channel")
	if err != nil {
		t.Fatalf("NewWithDefaults: %v", err)
	}
	if h.BufferCount() <= 0 {
		t.Fatal("NewWithDefaults should produce a channel with a positive buffer count")
	}
}
