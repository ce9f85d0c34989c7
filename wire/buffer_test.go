package wire

import (
	"bytes"
	"testing"
)

func TestPacketBufferConsume(t *testing.T) {
	pb := NewFromBytes([]byte{1, 2, 3, 4, 5}, 5)

	b, err := pb.Consume(2)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if !bytes.Equal(b, []byte{1, 2}) {
		t.Fatalf("got %v", b)
	}
	if pb.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", pb.Len())
	}

	rest := pb.Remaining()
	if !bytes.Equal(rest, []byte{3, 4, 5}) {
		t.Fatalf("Remaining() = %v", rest)
	}
}

func TestPacketBufferConsumeShort(t *testing.T) {
	pb := New(4)
	if _, err := pb.Consume(5); err == nil {
		t.Fatal("expected error consuming past capacity")
	}
}

func TestPacketBufferReservePrepends(t *testing.T) {
	pb := New(16)

	inner, err := pb.Reserve(4)
	if err != nil {
		t.Fatalf("Reserve inner: %v", err)
	}
	copy(inner, []byte{0xaa, 0xbb, 0xcc, 0xdd})

	outer, err := pb.Reserve(2)
	if err != nil {
		t.Fatalf("Reserve outer: %v", err)
	}
	copy(outer, []byte{0x11, 0x22})

	want := []byte{0x11, 0x22, 0xaa, 0xbb, 0xcc, 0xdd}
	if got := pb.Bytes(); !bytes.Equal(got, want) {
		t.Fatalf("Bytes() = %v, want %v", got, want)
	}
}

func TestPacketBufferReserveOverCapacity(t *testing.T) {
	pb := New(4)
	if _, err := pb.Reserve(3); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if _, err := pb.Reserve(2); err == nil {
		t.Fatal("expected error reserving past capacity")
	}
}
