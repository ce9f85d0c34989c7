package wire

import "testing"

func TestUdpRoundTrip(t *testing.T) {
	d := UdpDatagram{
		SourcePort:      53,
		DestinationPort: 12345,
		Payload:         []byte("hello"),
	}

	out := New(DefaultCapacity)
	if err := d.Serialize(out); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	in := NewFromBytes(out.Bytes(), len(out.Bytes()))
	got, err := ParseUdp(in)
	if err != nil {
		t.Fatalf("ParseUdp: %v", err)
	}

	if got.SourcePort != d.SourcePort || got.DestinationPort != d.DestinationPort {
		t.Fatalf("port mismatch: got %+v, want %+v", got, d)
	}
	if string(got.Payload) != string(d.Payload) {
		t.Fatalf("payload mismatch: got %q, want %q", got.Payload, d.Payload)
	}
	if got.Checksum != 0 {
		t.Fatalf("Checksum = %d, want 0 (checksum disabled)", got.Checksum)
	}
}

func TestUdpParseAcceptsNonZeroChecksum(t *testing.T) {
	d := UdpDatagram{SourcePort: 1, DestinationPort: 2, Payload: []byte("x")}

	out := New(DefaultCapacity)
	if err := d.Serialize(out); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	b := out.Bytes()
	b[6], b[7] = 0xab, 0xcd // forge a non-zero checksum, must still parse

	in := NewFromBytes(b, len(b))
	got, err := ParseUdp(in)
	if err != nil {
		t.Fatalf("ParseUdp: %v", err)
	}
	if got.Checksum != 0xabcd {
		t.Fatalf("Checksum = 0x%04x, want 0xabcd", got.Checksum)
	}
}
