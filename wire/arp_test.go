package wire

import "testing"

func TestArpRoundTrip(t *testing.T) {
	ourMAC := EthernetAddress{0x52, 0x54, 0x00, 0x12, 0x34, 0x56}
	ourIP := NewIpv4Addr(10, 0, 0, 1)
	targetIP := NewIpv4Addr(10, 0, 0, 2)

	req := NewArpRequest(ourMAC, ourIP, targetIP)

	out := New(DefaultCapacity)
	if err := req.Serialize(out); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if len(out.Bytes()) != ArpPacketSize {
		t.Fatalf("serialized size = %d, want %d", len(out.Bytes()), ArpPacketSize)
	}

	in := NewFromBytes(out.Bytes(), len(out.Bytes()))
	got, err := ParseArp(in)
	if err != nil {
		t.Fatalf("ParseArp: %v", err)
	}
	if got != req {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, req)
	}
}

func TestArpReplyFromRequest(t *testing.T) {
	requesterMAC := EthernetAddress{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01}
	requesterIP := NewIpv4Addr(10, 0, 0, 5)
	ourMAC := EthernetAddress{0x52, 0x54, 0x00, 0x12, 0x34, 0x56}
	ourIP := NewIpv4Addr(10, 0, 0, 1)

	req := NewArpRequest(requesterMAC, requesterIP, ourIP)
	reply := ArpReplyFromRequest(req, ourMAC)

	if reply.Oper != ArpReply {
		t.Fatalf("Oper = %v, want Reply", reply.Oper)
	}
	if reply.SHA != ourMAC {
		t.Fatalf("SHA = %v, want %v", reply.SHA, ourMAC)
	}
	if reply.SPA != ourIP {
		t.Fatalf("SPA = %v, want %v", reply.SPA, ourIP)
	}
	if reply.THA != requesterMAC {
		t.Fatalf("THA = %v, want %v", reply.THA, requesterMAC)
	}
	if reply.TPA != requesterIP {
		t.Fatalf("TPA = %v, want %v", reply.TPA, requesterIP)
	}
}
