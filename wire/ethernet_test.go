package wire

import "testing"

func TestEthernetRoundTrip(t *testing.T) {
	cases := []EthernetHeader{
		{
			Destination: EthernetAddress{0x00, 0x1b, 0x21, 0x3a, 0x5c, 0x01},
			Source:      EthernetAddress{0x52, 0x54, 0x00, 0x12, 0x34, 0x56},
			Ethertype:   EthertypeIPv4,
		},
		{
			Destination: BroadcastAddress,
			Source:      EthernetAddress{0x52, 0x54, 0x00, 0x12, 0x34, 0x56},
			Ethertype:   EthertypeARP,
		},
		{
			Destination: BroadcastAddress,
			Source:      EthernetAddress{0x52, 0x54, 0x00, 0x12, 0x34, 0x56},
			Ethertype:   0x1234, // unrecognized, must still round-trip bit-exact
		},
	}

	for _, h := range cases {
		out := New(DefaultCapacity)
		if err := h.Serialize(out); err != nil {
			t.Fatalf("Serialize: %v", err)
		}

		in := NewFromBytes(out.Bytes(), len(out.Bytes()))
		got, err := ParseEthernet(in)
		if err != nil {
			t.Fatalf("ParseEthernet: %v", err)
		}

		if got != h {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
		}
	}
}

func TestEthernetParseShort(t *testing.T) {
	in := NewFromBytes([]byte{1, 2, 3}, 3)
	if _, err := ParseEthernet(in); err == nil {
		t.Fatal("expected error on short Ethernet header")
	}
}
