package wire

import "encoding/binary"

// ArpPacketSize is the fixed size of an ARP packet for 6-byte hardware
// addresses and 4-byte protocol addresses (the only combination this
// kernel speaks).
const ArpPacketSize = 28

// ArpOper is the ARP operation code.
type ArpOper uint16

const (
	ArpRequest ArpOper = 1
	ArpReply   ArpOper = 2
)

func (o ArpOper) String() string {
	switch o {
	case ArpRequest:
		return "Request"
	case ArpReply:
		return "Reply"
	default:
		return "Unknown"
	}
}

// ArpPacket is a parsed Ethernet/IPv4 ARP packet (RFC 826).
type ArpPacket struct {
	HType uint16
	PType uint16
	HLen  uint8
	PLen  uint8
	Oper  ArpOper

	SHA EthernetAddress // sender hardware address
	SPA Ipv4Addr        // sender protocol address
	THA EthernetAddress // target hardware address
	TPA Ipv4Addr        // target protocol address
}

func (ArpPacket) Size() int { return ArpPacketSize }

// ParseArp consumes a 28-byte ARP packet from the front of buf.
func ParseArp(buf *PacketBuffer) (ArpPacket, error) {
	var p ArpPacket

	b, err := buf.Consume(ArpPacketSize)
	if err != nil {
		return p, err
	}

	p.HType = binary.BigEndian.Uint16(b[0:2])
	p.PType = binary.BigEndian.Uint16(b[2:4])
	p.HLen = b[4]
	p.PLen = b[5]
	p.Oper = ArpOper(binary.BigEndian.Uint16(b[6:8]))
	copy(p.SHA[:], b[8:14])
	copy(p.SPA[:], b[14:18])
	copy(p.THA[:], b[18:24])
	copy(p.TPA[:], b[24:28])

	return p, nil
}

// Serialize writes the ARP packet into buf.
func (p ArpPacket) Serialize(buf *PacketBuffer) error {
	b, err := buf.Reserve(ArpPacketSize)
	if err != nil {
		return err
	}

	binary.BigEndian.PutUint16(b[0:2], p.HType)
	binary.BigEndian.PutUint16(b[2:4], p.PType)
	b[4] = p.HLen
	b[5] = p.PLen
	binary.BigEndian.PutUint16(b[6:8], uint16(p.Oper))
	copy(b[8:14], p.SHA[:])
	copy(b[14:18], p.SPA[:])
	copy(b[18:24], p.THA[:])
	copy(b[24:28], p.TPA[:])

	return nil
}

// NewArpRequest builds a broadcast ARP request asking who owns targetIP.
func NewArpRequest(ourMAC EthernetAddress, ourIP Ipv4Addr, targetIP Ipv4Addr) ArpPacket {
	return ArpPacket{
		HType: 1,
		PType: uint16(EthertypeIPv4),
		HLen:  6,
		PLen:  4,
		Oper:  ArpRequest,
		SHA:   ourMAC,
		SPA:   ourIP,
		THA:   EthernetAddress{},
		TPA:   targetIP,
	}
}

// ArpReplyFromRequest builds the reply to req, as if sent by a host with
// address ourMAC: sha/spa become ours, tha/tpa become the requester's.
func ArpReplyFromRequest(req ArpPacket, ourMAC EthernetAddress) ArpPacket {
	reply := req
	reply.Oper = ArpReply
	reply.SHA = ourMAC
	reply.SPA = req.TPA
	reply.THA = req.SHA
	reply.TPA = req.SPA
	return reply
}
