package wire

import (
	"bytes"
	"testing"

	"httpbridge-core/internal/errors"
)

func TestBuffer_WriteBE32(t *testing.T) {
	b := NewBuffer(0)
	if err := b.WriteBE32(0x01020304); err != nil {
		t.Fatalf("WriteBE32() error = %v", err)
	}
	want := []byte{0x01, 0x02, 0x03, 0x04}
	if !bytes.Equal(b.Bytes(), want) {
		t.Errorf("Bytes() = %x, want %x", b.Bytes(), want)
	}
}

func TestBuffer_GrowAcrossWrites(t *testing.T) {
	b := NewBuffer(2)
	payload := bytes.Repeat([]byte{0xab}, 100)
	for i := 0; i < 10; i++ {
		if err := b.Write(payload); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if b.Len() != 1000 {
		t.Errorf("Len() = %d, want 1000", b.Len())
	}
}

func TestBuffer_ReserveLimit(t *testing.T) {
	b := NewBuffer(0)
	b.SetLimit(8)

	if err := b.Reserve(8); err != nil {
		t.Fatalf("Reserve(8) error = %v", err)
	}
	err := b.Reserve(9)
	if !errors.Is(err, errors.ErrAllocation) {
		t.Errorf("Reserve(9) error = %v, want ErrAllocation", err)
	}
	if err := b.Reserve(-1); !errors.Is(err, errors.ErrInvalidArgument) {
		t.Errorf("Reserve(-1) error = %v, want ErrInvalidArgument", err)
	}

	// Writes past the limit must also fail.
	_ = b.Write(bytes.Repeat([]byte{1}, 8))
	if err := b.WriteBE32(1); !errors.Is(err, errors.ErrAllocation) {
		t.Errorf("WriteBE32 over limit error = %v, want ErrAllocation", err)
	}
}

func TestBuffer_SpareAndAdvance(t *testing.T) {
	b := NewBuffer(16)
	if err := b.Write([]byte("abc")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	spare := b.Spare()
	if len(spare) != 13 {
		t.Fatalf("len(Spare()) = %d, want 13", len(spare))
	}
	copy(spare, "def")
	if err := b.Advance(3); err != nil {
		t.Fatalf("Advance(3) error = %v", err)
	}
	if got := string(b.Bytes()); got != "abcdef" {
		t.Errorf("Bytes() = %q, want %q", got, "abcdef")
	}

	if err := b.Advance(100); !errors.Is(err, errors.ErrInvalidArgument) {
		t.Errorf("Advance(100) beyond capacity error = %v, want ErrInvalidArgument", err)
	}
	if err := b.Advance(-1); !errors.Is(err, errors.ErrInvalidArgument) {
		t.Errorf("Advance(-1) error = %v, want ErrInvalidArgument", err)
	}
}

func TestBuffer_Reset(t *testing.T) {
	b := NewBuffer(4)
	_ = b.Write([]byte("abcd"))
	b.Reset()
	if b.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", b.Len())
	}
	if b.Cap() < 4 {
		t.Errorf("Cap() after Reset = %d, want >= 4", b.Cap())
	}
}

func TestBufferPool_Reuse(t *testing.T) {
	b := GetBuffer()
	_ = b.Write([]byte("leftover"))
	PutBuffer(b)

	got := GetBuffer()
	defer PutBuffer(got)
	if got.Len() != 0 {
		t.Errorf("pooled buffer not reset: Len() = %d", got.Len())
	}
}
