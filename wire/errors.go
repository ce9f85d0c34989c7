package wire

import (
	"errors"

	"github.com/usbarmory/netkernel/kerr"
)

var (
	errIpv4Options = errors.New("ipv4: options not supported")
	errIcmpType    = errors.New("icmp: unsupported type")
	errShortICMP   = errors.New("icmp: short packet")
	errShortUDP    = errors.New("udp: short packet")
	errUdpLength   = errors.New("udp: invalid length field")
)

func kerrParse(op string, cause error) error {
	return kerr.New(kerr.ParseError, op, cause)
}
