package wire

import "encoding/binary"

// EthernetHeaderSize is the fixed size of an Ethernet II header.
const EthernetHeaderSize = 14

// EthernetMTU is the standard Ethernet II payload MTU, excluding the
// 14-byte header and the 4-byte trailing FCS.
const EthernetMTU = 1500

// EthernetHeader is a parsed Ethernet II frame header.
type EthernetHeader struct {
	Destination EthernetAddress
	Source      EthernetAddress
	Ethertype   Ethertype
}

// Size reports the header's on-wire size.
func (EthernetHeader) Size() int { return EthernetHeaderSize }

// ParseEthernet consumes a 14-byte Ethernet header from the front of buf.
func ParseEthernet(buf *PacketBuffer) (EthernetHeader, error) {
	var h EthernetHeader

	b, err := buf.Consume(EthernetHeaderSize)
	if err != nil {
		return h, err
	}

	copy(h.Destination[:], b[0:6])
	copy(h.Source[:], b[6:12])
	h.Ethertype = Ethertype(binary.BigEndian.Uint16(b[12:14]))

	return h, nil
}

// Serialize writes the header into buf, prepending it in front of any
// payload already serialized.
func (h EthernetHeader) Serialize(buf *PacketBuffer) error {
	b, err := buf.Reserve(EthernetHeaderSize)
	if err != nil {
		return err
	}

	copy(b[0:6], h.Destination[:])
	copy(b[6:12], h.Source[:])
	binary.BigEndian.PutUint16(b[12:14], uint16(h.Ethertype))

	return nil
}
