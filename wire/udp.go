package wire

import "encoding/binary"

// UdpHeaderSize is the fixed 8-byte UDP header size.
const UdpHeaderSize = 8

// UdpDatagram is a parsed UDP datagram, including payload.
//
// This kernel never computes or validates the UDP checksum: it emits 0
// (checksum disabled, which RFC 768 permits over IPv4) on send, and
// accepts any value — zero or not — on receive without verifying it.
type UdpDatagram struct {
	SourcePort      uint16
	DestinationPort uint16
	Checksum        uint16
	Payload         []byte
}

func (d UdpDatagram) Size() int { return UdpHeaderSize + len(d.Payload) }

// ParseUdp consumes the remainder of buf as a UDP datagram.
func ParseUdp(buf *PacketBuffer) (UdpDatagram, error) {
	var d UdpDatagram

	rest := buf.Remaining()
	if len(rest) < UdpHeaderSize {
		return d, kerrParse("udp.parse", errShortUDP)
	}

	b, err := buf.Consume(len(rest))
	if err != nil {
		return d, err
	}

	d.SourcePort = binary.BigEndian.Uint16(b[0:2])
	d.DestinationPort = binary.BigEndian.Uint16(b[2:4])
	length := binary.BigEndian.Uint16(b[4:6])
	d.Checksum = binary.BigEndian.Uint16(b[6:8])

	if int(length) < UdpHeaderSize || int(length) > len(b) {
		return d, kerrParse("udp.parse", errUdpLength)
	}

	d.Payload = append([]byte(nil), b[8:length]...)

	return d, nil
}

// Serialize writes the datagram into buf with Checksum forced to 0.
func (d UdpDatagram) Serialize(buf *PacketBuffer) error {
	total := UdpHeaderSize + len(d.Payload)

	b, err := buf.Reserve(total)
	if err != nil {
		return err
	}

	binary.BigEndian.PutUint16(b[0:2], d.SourcePort)
	binary.BigEndian.PutUint16(b[2:4], d.DestinationPort)
	binary.BigEndian.PutUint16(b[4:6], uint16(total))
	binary.BigEndian.PutUint16(b[6:8], 0)
	copy(b[8:], d.Payload)

	return nil
}
