package wire

import "encoding/binary"

// Ipv4HeaderSize is the fixed header size; this kernel never parses or
// emits IPv4 options.
const Ipv4HeaderSize = 20

// Ipv4Version is the only IP version this kernel speaks.
const Ipv4Version = 4

// Ipv4 flags bits, as they sit in the high 3 bits of the combined
// flags+fragment-offset field. The More-Fragments bit lives at bit 13 of
// the 16-bit word (bit 5 of the high byte), not bit 14 — an off-by-one
// that existed in an earlier revision of this code and corrupted the
// Don't-Fragment bit's position instead.
const (
	ipv4FlagDF = 1 << 14
	ipv4FlagMF = 1 << 13
)

// Ipv4Header is a parsed IPv4 header (RFC 791, no options).
type Ipv4Header struct {
	DSCP           uint8
	ECN            uint8
	TotalLength    uint16
	Identification uint16
	DontFragment   bool
	MoreFragments  bool
	FragmentOffset uint16 // in 8-byte units
	TTL            uint8
	Protocol       IPProtocol
	Checksum       uint16
	Source         Ipv4Addr
	Destination    Ipv4Addr
}

func (Ipv4Header) Size() int { return Ipv4HeaderSize }

// ParseIpv4 consumes a 20-byte IPv4 header from the front of buf. A
// non-zero IHL (header length) beyond 5 words, indicating options this
// kernel doesn't support, is reported as a ParseError.
func ParseIpv4(buf *PacketBuffer) (Ipv4Header, error) {
	var h Ipv4Header

	b, err := buf.Consume(Ipv4HeaderSize)
	if err != nil {
		return h, err
	}

	ihl := b[0] & 0x0f
	if ihl != 5 {
		return h, kerrParse("ipv4.parse", errIpv4Options)
	}

	h.DSCP = b[1] >> 2
	h.ECN = b[1] & 0x3
	h.TotalLength = binary.BigEndian.Uint16(b[2:4])
	h.Identification = binary.BigEndian.Uint16(b[4:6])

	flagsFrag := binary.BigEndian.Uint16(b[6:8])
	h.DontFragment = flagsFrag&ipv4FlagDF != 0
	h.MoreFragments = flagsFrag&ipv4FlagMF != 0
	h.FragmentOffset = flagsFrag & 0x1fff

	h.TTL = b[8]
	h.Protocol = IPProtocol(b[9])
	h.Checksum = binary.BigEndian.Uint16(b[10:12])
	copy(h.Source[:], b[12:16])
	copy(h.Destination[:], b[16:20])

	return h, nil
}

// Serialize writes the header into buf with a freshly computed checksum.
func (h Ipv4Header) Serialize(buf *PacketBuffer) error {
	b, err := buf.Reserve(Ipv4HeaderSize)
	if err != nil {
		return err
	}

	b[0] = Ipv4Version<<4 | 5
	b[1] = h.DSCP<<2 | h.ECN&0x3
	binary.BigEndian.PutUint16(b[2:4], h.TotalLength)
	binary.BigEndian.PutUint16(b[4:6], h.Identification)

	var flagsFrag uint16
	if h.DontFragment {
		flagsFrag |= ipv4FlagDF
	}
	if h.MoreFragments {
		flagsFrag |= ipv4FlagMF
	}
	flagsFrag |= h.FragmentOffset & 0x1fff
	binary.BigEndian.PutUint16(b[6:8], flagsFrag)

	b[8] = h.TTL
	b[9] = uint8(h.Protocol)
	binary.BigEndian.PutUint16(b[10:12], 0) // checksum filled in below
	copy(b[12:16], h.Source[:])
	copy(b[16:20], h.Destination[:])

	binary.BigEndian.PutUint16(b[10:12], ipv4Checksum(b))

	return nil
}

// ipv4Checksum computes the RFC 791 ones-complement checksum over a
// 20-byte IPv4 header (the checksum field itself must be zero on entry).
func ipv4Checksum(header []byte) uint16 {
	var sum uint32

	for i := 0; i < len(header); i += 2 {
		sum += uint32(header[i])<<8 | uint32(header[i+1])
	}

	for sum>>16 != 0 {
		sum = sum&0xffff + sum>>16
	}

	return ^uint16(sum)
}
