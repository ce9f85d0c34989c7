package wire

import "fmt"

// EthernetAddress is a 6-byte MAC address.
type EthernetAddress [6]byte

// BroadcastAddress is the all-ones Ethernet broadcast address.
var BroadcastAddress = EthernetAddress{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

func (a EthernetAddress) Equal(b EthernetAddress) bool { return a == b }

// Less provides a total ordering over EthernetAddress, used only for
// deterministic test output and diagnostics.
func (a EthernetAddress) Less(b EthernetAddress) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func (a EthernetAddress) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", a[0], a[1], a[2], a[3], a[4], a[5])
}

// Ipv4Addr is a 4-byte IPv4 address.
type Ipv4Addr [4]byte

// NewIpv4Addr builds an address from its four dotted-decimal octets.
func NewIpv4Addr(a, b, c, d byte) Ipv4Addr {
	return Ipv4Addr{a, b, c, d}
}

// Ipv4AddrFromUint32 builds an address from a big-endian 32-bit integer.
func Ipv4AddrFromUint32(v uint32) Ipv4Addr {
	return Ipv4Addr{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

// Uint32 returns the address as a big-endian 32-bit integer.
func (ip Ipv4Addr) Uint32() uint32 {
	return uint32(ip[0])<<24 | uint32(ip[1])<<16 | uint32(ip[2])<<8 | uint32(ip[3])
}

func (ip Ipv4Addr) Equal(other Ipv4Addr) bool { return ip == other }

func (ip Ipv4Addr) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", ip[0], ip[1], ip[2], ip[3])
}

// Ethertype is the 16-bit Ethernet header discriminator. The raw value is
// always preserved (round-trip is bit-exact); the named constants below
// are the closed set of values this kernel recognizes for dispatch —
// anything else is still carried faithfully but treated as Unknown by the
// ingress pipeline.
type Ethertype uint16

const (
	EthertypeIPv4      Ethertype = 0x0800
	EthertypeARP       Ethertype = 0x0806
	EthertypeWakeOnLAN Ethertype = 0x0842
	EthertypeRARP      Ethertype = 0x8035
	EthertypeSLPP      Ethertype = 0x8103
	EthertypeIPv6      Ethertype = 0x86dd
)

// Known reports whether e is one of the named constants above.
func (e Ethertype) Known() bool {
	switch e {
	case EthertypeIPv4, EthertypeARP, EthertypeWakeOnLAN, EthertypeRARP, EthertypeSLPP, EthertypeIPv6:
		return true
	}
	return false
}

func (e Ethertype) String() string {
	switch e {
	case EthertypeIPv4:
		return "IPv4"
	case EthertypeARP:
		return "ARP"
	case EthertypeWakeOnLAN:
		return "WakeOnLAN"
	case EthertypeRARP:
		return "RARP"
	case EthertypeSLPP:
		return "SLPP"
	case EthertypeIPv6:
		return "IPv6"
	default:
		return fmt.Sprintf("Unknown(0x%04x)", uint16(e))
	}
}

// IPProtocol is the IPv4 header's protocol field.
type IPProtocol uint8

const (
	IPProtocolICMP    IPProtocol = 1
	IPProtocolTCP     IPProtocol = 6
	IPProtocolUDP     IPProtocol = 17
	IPProtocolUnknown IPProtocol = 0xff
)

func (p IPProtocol) String() string {
	switch p {
	case IPProtocolICMP:
		return "ICMP"
	case IPProtocolTCP:
		return "TCP"
	case IPProtocolUDP:
		return "UDP"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(p))
	}
}
